// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes content digests for files held in the
// backing store. The sum command prints them so two files (or one file
// before and after a resize) can be compared without dumping content.
package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash.
type Digest [32]byte

// contentDomainKey separates memshell content digests from plain
// BLAKE3 hashes of the same bytes. ASCII so it reads in hex dumps.
var contentDomainKey = [32]byte{
	'm', 'e', 'm', 's', 'h', 'e', 'l', 'l', '.', 'c', 'o', 'n', 't', 'e', 'n', 't',
}

// Content returns the digest of a file's decoded content. Compression
// never changes the digest.
func Content(data []byte) Digest {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var result Digest
	copy(result[:], hasher.Sum(nil))
	return result
}

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, enough to tell files
// apart in listings.
func (d Digest) Short() string {
	return d.String()[:12]
}

// Parse decodes a 64-character hex digest.
func Parse(text string) (Digest, error) {
	var result Digest
	if len(text) != hex.EncodedLen(len(result)) {
		return result, fmt.Errorf("digest must be %d hex characters, got %d", hex.EncodedLen(len(result)), len(text))
	}
	if _, err := hex.Decode(result[:], []byte(text)); err != nil {
		return result, fmt.Errorf("invalid digest %q: %w", text, err)
	}
	return result, nil
}
