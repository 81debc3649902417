// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backing

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when an access falls outside
	// [0, capacity).
	ErrOutOfRange = errors.New("offset out of range")

	// ErrOutOfMemory is returned when a region cannot be allocated,
	// either because the platform refused or because the request
	// exceeds the configured limit.
	ErrOutOfMemory = errors.New("out of memory")
)

// Store is a resizable, bounds-checked byte region.
//
// Store is not safe for concurrent use. A memshell session owns exactly
// one Store and drives it from a single goroutine.
type Store struct {
	region []byte

	// limit is the largest capacity Resize will attempt. Zero means
	// no limit beyond what the platform can provide.
	limit int64

	// dirty is one past the highest byte ever written. Bytes at or
	// beyond dirty are known to be zero, so Resize copies only
	// [0, min(dirty, newCapacity)) and leaves untouched pages
	// unmaterialized.
	dirty int64
}

// New allocates a store with the given initial capacity. limit bounds
// the capacity of this and every later allocation; pass 0 for no limit.
func New(capacity, limit int64) (*Store, error) {
	if limit < 0 {
		return nil, fmt.Errorf("memory limit must not be negative, got %d", limit)
	}
	store := &Store{limit: limit}
	region, err := store.allocate(capacity)
	if err != nil {
		return nil, err
	}
	store.region = region
	return store, nil
}

// Capacity returns the current region length in bytes.
func (s *Store) Capacity() int64 {
	return int64(len(s.region))
}

// Limit returns the configured capacity limit (0 when unlimited).
func (s *Store) Limit() int64 {
	return s.limit
}

// Resize replaces the region with one of newCapacity bytes. The first
// min(Capacity(), newCapacity) bytes are preserved and everything beyond
// them reads as zero. On error the store is unchanged.
func (s *Store) Resize(newCapacity int64) error {
	region, err := s.allocate(newCapacity)
	if err != nil {
		return err
	}

	preserved := min(s.dirty, newCapacity, s.Capacity())
	copy(region[:preserved], s.region[:preserved])

	old := s.region
	s.region = region
	s.dirty = preserved
	// The new region is already live; a failed unmap only leaks the
	// old mapping's address space.
	_ = unmapRegion(old)
	return nil
}

// ByteAt returns the byte at offset.
func (s *Store) ByteAt(offset int64) (byte, error) {
	if offset < 0 || offset >= s.Capacity() {
		return 0, fmt.Errorf("%w: byte %d of %d", ErrOutOfRange, offset, s.Capacity())
	}
	return s.region[offset], nil
}

// SetByte stores value at offset.
func (s *Store) SetByte(offset int64, value byte) error {
	if offset < 0 || offset >= s.Capacity() {
		return fmt.Errorf("%w: byte %d of %d", ErrOutOfRange, offset, s.Capacity())
	}
	s.region[offset] = value
	s.dirty = max(s.dirty, offset+1)
	return nil
}

// ReadAt fills p from [offset, offset+len(p)). Unlike io.ReaderAt, a
// range that crosses the end of the region is rejected as a whole and
// nothing is copied.
func (s *Store) ReadAt(p []byte, offset int64) (int, error) {
	if err := s.checkRange(offset, int64(len(p))); err != nil {
		return 0, err
	}
	return copy(p, s.region[offset:]), nil
}

// WriteAt copies p into [offset, offset+len(p)). A range that crosses
// the end of the region is rejected before any byte is written.
func (s *Store) WriteAt(p []byte, offset int64) (int, error) {
	if err := s.checkRange(offset, int64(len(p))); err != nil {
		return 0, err
	}
	written := copy(s.region[offset:], p)
	s.dirty = max(s.dirty, offset+int64(written))
	return written, nil
}

// Close releases the region. The store has zero capacity afterwards.
func (s *Store) Close() error {
	region := s.region
	s.region = nil
	s.dirty = 0
	return unmapRegion(region)
}

func (s *Store) checkRange(offset, length int64) error {
	capacity := s.Capacity()
	if offset < 0 || length < 0 || offset > capacity || length > capacity-offset {
		return fmt.Errorf("%w: range [%d, %d) exceeds capacity %d",
			ErrOutOfRange, offset, offset+length, capacity)
	}
	return nil
}

func (s *Store) allocate(capacity int64) ([]byte, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative, got %d", capacity)
	}
	if s.limit > 0 && capacity > s.limit {
		return nil, fmt.Errorf("%w: %d bytes requested, limit is %d", ErrOutOfMemory, capacity, s.limit)
	}
	if capacity == 0 {
		return nil, nil
	}
	if int64(int(capacity)) != capacity {
		return nil, fmt.Errorf("%w: %d bytes exceeds the address space", ErrOutOfMemory, capacity)
	}
	return mapRegion(int(capacity))
}
