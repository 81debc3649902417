// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package namespace is memshell's file table: a rooted tree of
// directory and file entries that gives byte ranges in the backing
// store hierarchical names.
//
// Entries live in a slot array and are addressed by [EntryID], a slot
// index paired with the slot's generation. Removing an entry bumps the
// generation of its slot and returns the slot to a free list, so a
// handle held across a removal (a session's working directory, for
// instance) resolves to [ErrNotFound] instead of silently aliasing
// whatever entry reuses the slot. Listing order is creation order and
// is tracked separately from slot indices, so reuse never reorders
// listings.
//
// Slot 0 is the root directory. Its name is empty, its parent is
// itself, and it can never be removed.
//
// Name lookups scan the live entries linearly. The table holds at most
// a few thousand entries in practice, and a linear scan keeps creation
// order the natural iteration order without maintaining a second index.
//
// A Table is not safe for concurrent use.
package namespace
