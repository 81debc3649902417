// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package backing

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapRegion maps size bytes of anonymous, private, zero-filled memory.
// The kernel commits pages lazily, so only bytes that are written (or
// copied during resize) become resident.
func mapRegion(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mapping %d bytes: %w", ErrOutOfMemory, size, err)
	}
	return data, nil
}

func unmapRegion(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("unmapping %d bytes: %w", len(region), err)
	}
	return nil
}
