// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backing provides the single contiguous byte region that every
// file in a memshell session lives in.
//
// A [Store] owns one region of exactly [Store.Capacity] bytes. On Linux
// and Darwin the region is an anonymous private memory map, so a large
// initial capacity costs address space rather than resident memory until
// pages are touched, and an allocation failure surfaces as ENOMEM instead
// of killing the process. Other platforms fall back to a heap slice.
//
// [Store.Resize] replaces the region: it maps a new zero-filled region,
// copies the preserved prefix, and only then swaps it in and releases the
// old one. A failed resize leaves the store exactly as it was. The store
// never inspects the namespace; callers decide whether a shrink is safe.
//
// Every access is bounds-checked against the current capacity and fails
// with [ErrOutOfRange] rather than touching memory outside the region.
package backing
