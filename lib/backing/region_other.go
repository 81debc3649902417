// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(darwin || linux)

package backing

import "fmt"

// mapRegion allocates size bytes on the Go heap. make panics (rather
// than returning an error) when the length is unrepresentable; that
// panic is converted to ErrOutOfMemory. Exhausting the heap itself is
// fatal to the runtime and cannot be recovered here.
func mapRegion(size int) (region []byte, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			region = nil
			err = fmt.Errorf("%w: allocating %d bytes: %v", ErrOutOfMemory, size, recovered)
		}
	}()
	return make([]byte, size), nil
}

func unmapRegion([]byte) error { return nil }
