// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress encodes file content before it is placed in the
// backing store. A compressed file occupies fewer bytes of the data
// region; its namespace entry records the [Tag] and the decoded length
// so reads can restore the original bytes.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the encoding of stored file content.
type Tag uint8

const (
	// None stores content as-is.
	None Tag = 0

	// LZ4 is LZ4 block compression. Fast, modest ratio.
	LZ4 Tag = 1

	// Zstd is zstd at the default level. Better ratio for text.
	Zstd Tag = 2
)

// String returns the name accepted by [ParseTag].
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses a compression name. The empty string means None.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, or zstd)", name)
	}
}

// errIncompressible is returned when the encoded form would not be
// smaller than the input.
var errIncompressible = errors.New("data is incompressible")

// IsIncompressible reports whether err means the caller should store
// the content uncompressed.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}

// Compress encodes data with tag. For None the input is returned
// unchanged (no copy).
func Compress(data []byte, tag Tag) ([]byte, error) {
	switch tag {
	case None:
		return data, nil
	case LZ4:
		return compressLZ4(data)
	case Zstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress decodes data that was encoded with tag. length must be the
// exact decoded size; a mismatch is an error.
func Decompress(data []byte, tag Tag, length int) ([]byte, error) {
	switch tag {
	case None:
		if len(data) != length {
			return nil, fmt.Errorf("uncompressed content: size %d does not match expected %d", len(data), length)
		}
		return data, nil
	case LZ4:
		return decompressLZ4(data, length)
	case Zstd:
		return decompressZstd(data, length)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(data []byte, length int) ([]byte, error) {
	destination := make([]byte, length)
	read, err := lz4.UncompressBlock(data, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != length {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, length)
	}
	return destination, nil
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use and costly
// to construct, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(data []byte, length int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(data, make([]byte, 0, length))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != length {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), length)
	}
	return result, nil
}
