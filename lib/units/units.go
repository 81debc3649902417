// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package units parses and formats memory sizes.
//
// Sizes are always binary: "1K", "1KB", and "1KiB" all mean 1024
// bytes, the way memory is sized rather than the way disks are
// marketed. Suffixes are case-insensitive, the value may be fractional
// ("1.5G"), and one space between value and suffix is allowed. A bare
// number is bytes.
package units

import (
	"fmt"
	"math"
	"strings"

	gounits "github.com/docker/go-units"
	"github.com/dustin/go-humanize"
)

const (
	KiB int64 = gounits.KiB
	MiB int64 = gounits.MiB
	GiB int64 = gounits.GiB
	TiB int64 = gounits.TiB
)

// ParseSize converts a size string such as "512MB", "1g", "1.5 G", or
// "4096" to a byte count. Fractional results are truncated.
func ParseSize(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size")
	}
	size, err := gounits.RAMInBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", text, err)
	}
	// Float to int64 conversion of an out-of-range product wraps
	// negative or saturates, depending on the platform.
	if size < 0 || size == math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q: overflows 64 bits", text)
	}
	return size, nil
}

// Format renders a byte count with binary units, e.g. "2.0 GiB".
func Format(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatExact renders a byte count with binary units followed by the
// exact count, e.g. "1.0 MiB (1,048,576 bytes)".
func FormatExact(bytes int64) string {
	return fmt.Sprintf("%s (%s bytes)", Format(bytes), humanize.Comma(bytes))
}
