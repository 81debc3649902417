// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for memshell packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that tests waiting on a
// goroutine, such as a console loop reading from a pipe, fail instead
// of hanging when the goroutine never finishes.
package testutil
