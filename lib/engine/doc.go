// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine composes the backing store, the allocator, and the
// namespace into memshell's storage engine.
//
// The backing store is divided into two regions. [0, DataStart) is
// reserved: the engine writes a CBOR snapshot of the file table there
// after every namespace mutation (see [Engine.Metadata]). File content
// is placed only in [DataStart, Capacity).
//
// Every operation validates its preconditions before touching either
// the store or the table, so a failed operation leaves both unchanged.
//
// Placement is first-fit and never reuses a file's previous region in
// place. A rewrite allocates the new copy while the old region still
// counts as occupied and then repoints the entry, abandoning the old
// bytes. The abandoned range becomes free space the next time the
// allocator scans, since free space is derived only from live entries.
//
// The engine refuses to shrink the store below the end of any live
// file's range ([ErrWouldTruncate]), so an entry never points past the
// end of the store. Reads still bounds-check every range.
package engine
