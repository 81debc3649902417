// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides memshell's CBOR encoding configuration.
//
// The engine snapshots its file table into the reserved low region of
// the backing store after every namespace mutation, and the meta
// command renders that snapshot back as CBOR diagnostic notation. Both
// sides go through this package so the image bytes are identical for
// identical tables: the encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2), which sorts map keys, picks the smallest integer
// encoding, and never emits indefinite-length items.
//
//	data, err := codec.Marshal(image)
//	err = codec.Unmarshal(data, &image)
//	text, err := codec.Diagnose(data)
//
// Types serialized here carry `cbor` struct tags. They are never
// marshaled as JSON.
package codec
