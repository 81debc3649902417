// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bureau-foundation/memshell/lib/codec"
	"github.com/bureau-foundation/memshell/lib/namespace"
)

// ErrNoMetadata is returned by [Engine.Metadata] when the reserved
// region holds no valid image: it is too small, the table outgrew it,
// or its header was overwritten with poke.
var ErrNoMetadata = errors.New("no metadata image in reserved region")

// imageMagic marks the start of a metadata image.
var imageMagic = [4]byte{'M', 'S', 'H', 'T'}

// imageHeaderSize is the magic plus a little-endian uint32 payload
// length.
const imageHeaderSize = 8

// imageVersion is bumped whenever Image changes incompatibly.
const imageVersion = 2

// Image is the snapshot of the file table written to the reserved
// region. It holds nothing that changes on resize, so only namespace
// mutations rewrite it.
type Image struct {
	Version   int          `cbor:"version"`
	DataStart int64        `cbor:"data_start"`
	Entries   []ImageEntry `cbor:"entries"`
}

// ImageEntry is one file table entry inside an [Image].
type ImageEntry struct {
	Index       uint32 `cbor:"index"`
	Generation  uint32 `cbor:"generation"`
	Name        string `cbor:"name,omitempty"`
	Kind        string `cbor:"kind"`
	Parent      uint32 `cbor:"parent"`
	Offset      int64  `cbor:"offset,omitempty"`
	Size        int64  `cbor:"size,omitempty"`
	Length      int64  `cbor:"length,omitempty"`
	Compression string `cbor:"compression,omitempty"`
	Modified    int64  `cbor:"modified"`
}

func (e *Engine) image() Image {
	entries := e.table.Entries()
	image := Image{
		Version:   imageVersion,
		DataStart: e.dataStart,
		Entries:   make([]ImageEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		imageEntry := ImageEntry{
			Index:      entry.ID.Index,
			Generation: entry.ID.Generation,
			Name:       entry.Name,
			Kind:       entry.Kind.String(),
			Parent:     entry.Parent.Index,
			Offset:     entry.Offset,
			Size:       entry.Size,
			Length:     entry.Length,
			Modified:   entry.Modified.UnixNano(),
		}
		if entry.Kind == namespace.KindFile && entry.Size > 0 {
			imageEntry.Compression = entry.Compression.String()
		}
		image.Entries = append(image.Entries, imageEntry)
	}
	return image
}

// syncMetadata rewrites the image in the reserved region. The image is
// volatile and best-effort: when it does not fit, the header is
// cleared so a stale image is never mistaken for the current table.
func (e *Engine) syncMetadata() {
	reserved := min(e.dataStart, e.store.Capacity())
	if reserved < imageHeaderSize {
		return
	}

	payload, err := codec.Marshal(e.image())
	if err != nil {
		e.logger.Debug("encoding metadata image failed", "error", err)
		e.clearMetadata()
		return
	}
	if int64(len(payload)) > reserved-imageHeaderSize {
		e.logger.Debug("metadata image exceeds reserved region",
			"image_bytes", len(payload), "reserved_bytes", reserved)
		e.clearMetadata()
		return
	}

	var header [imageHeaderSize]byte
	copy(header[:4], imageMagic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))
	if _, err := e.store.WriteAt(payload, imageHeaderSize); err != nil {
		e.logger.Debug("writing metadata image failed", "error", err)
		return
	}
	if _, err := e.store.WriteAt(header[:], 0); err != nil {
		e.logger.Debug("writing metadata header failed", "error", err)
	}
}

func (e *Engine) clearMetadata() {
	var zero [imageHeaderSize]byte
	_, _ = e.store.WriteAt(zero[:], 0)
}

// MetadataBytes returns the raw CBOR image stored in the reserved
// region.
func (e *Engine) MetadataBytes() ([]byte, error) {
	reserved := min(e.dataStart, e.store.Capacity())
	if reserved < imageHeaderSize {
		return nil, ErrNoMetadata
	}
	var header [imageHeaderSize]byte
	if _, err := e.store.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMetadata, err)
	}
	if [4]byte(header[:4]) != imageMagic {
		return nil, ErrNoMetadata
	}
	length := int64(binary.LittleEndian.Uint32(header[4:]))
	if length > reserved-imageHeaderSize {
		return nil, fmt.Errorf("%w: header claims %d bytes, reserved region holds %d",
			ErrNoMetadata, length, reserved-imageHeaderSize)
	}
	payload := make([]byte, length)
	if _, err := e.store.ReadAt(payload, imageHeaderSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMetadata, err)
	}
	return payload, nil
}

// Metadata decodes the image stored in the reserved region.
func (e *Engine) Metadata() (Image, error) {
	payload, err := e.MetadataBytes()
	if err != nil {
		return Image{}, err
	}
	var image Image
	if err := codec.Unmarshal(payload, &image); err != nil {
		return Image{}, fmt.Errorf("%w: decoding: %v", ErrNoMetadata, err)
	}
	return image, nil
}
