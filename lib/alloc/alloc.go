// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package alloc places variable-length byte ranges inside the data
// region of a backing store.
//
// The allocator keeps no state of its own. Every call receives the
// extents currently referenced by live files, sorts them, and scans the
// gaps between them in ascending offset order. [FindFreeSpace] returns
// the first gap wide enough for the request (first-fit). Nothing is ever
// coalesced or compacted: a region stops being occupied only when no
// file references it any more.
package alloc

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoSpace is returned when no gap in the data region can hold the
// requested length.
var ErrNoSpace = errors.New("no space left in data region")

// Extent is a half-open byte range [Offset, Offset+Length).
type Extent struct {
	Offset int64
	Length int64
}

// End returns one past the last byte of the extent.
func (e Extent) End() int64 { return e.Offset + e.Length }

// Overlaps reports whether two non-empty extents share any byte.
func (e Extent) Overlaps(other Extent) bool {
	if e.Length <= 0 || other.Length <= 0 {
		return false
	}
	return e.Offset < other.End() && other.Offset < e.End()
}

// FindFreeSpace returns the offset of the first gap in
// [dataStart, capacity) that is at least length bytes wide.
// occupied is not modified.
func FindFreeSpace(occupied []Extent, dataStart, capacity, length int64) (int64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("allocation length must be positive, got %d", length)
	}
	for _, gap := range Gaps(occupied, dataStart, capacity) {
		if gap.Length >= length {
			return gap.Offset, nil
		}
	}
	return 0, fmt.Errorf("%w: %d bytes requested", ErrNoSpace, length)
}

// Gaps returns the free ranges of [dataStart, capacity) in ascending
// offset order. Empty extents in occupied are ignored. Occupied ranges
// that start below dataStart or extend past capacity only clip the
// gaps; they are never reported as an error here.
func Gaps(occupied []Extent, dataStart, capacity int64) []Extent {
	if dataStart < 0 {
		dataStart = 0
	}
	if dataStart >= capacity {
		return nil
	}

	sorted := make([]Extent, 0, len(occupied))
	for _, extent := range occupied {
		if extent.Length > 0 {
			sorted = append(sorted, extent)
		}
	}
	slices.SortFunc(sorted, func(a, b Extent) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})

	var gaps []Extent
	cursor := dataStart
	for _, extent := range sorted {
		if cursor >= capacity {
			break
		}
		if extent.Offset > cursor {
			gapEnd := min(extent.Offset, capacity)
			gaps = append(gaps, Extent{Offset: cursor, Length: gapEnd - cursor})
		}
		cursor = max(cursor, extent.End())
	}
	if cursor < capacity {
		gaps = append(gaps, Extent{Offset: cursor, Length: capacity - cursor})
	}
	return gaps
}

// Largest returns the widest extent in gaps, or a zero Extent when gaps
// is empty. Ties resolve to the lowest offset.
func Largest(gaps []Extent) Extent {
	var largest Extent
	for _, gap := range gaps {
		if gap.Length > largest.Length {
			largest = gap
		}
	}
	return largest
}
