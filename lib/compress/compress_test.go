// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestCompressDecompress(t *testing.T) {
	text := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 64))

	for _, tag := range []Tag{LZ4, Zstd} {
		t.Run(tag.String(), func(t *testing.T) {
			compressed, err := Compress(text, tag)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if len(compressed) >= len(text) {
				t.Errorf("compressed size %d not smaller than input %d", len(compressed), len(text))
			}
			decoded, err := Decompress(compressed, tag, len(text))
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(decoded, text) {
				t.Error("decoded content differs from input")
			}
		})
	}
}

func TestCompressIncompressible(t *testing.T) {
	random := make([]byte, 512)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	for _, tag := range []Tag{LZ4, Zstd} {
		_, err := Compress(random, tag)
		if !IsIncompressible(err) {
			t.Errorf("Compress(random, %s): err = %v, want incompressible", tag, err)
		}
	}
}

func TestNonePassesThrough(t *testing.T) {
	data := []byte("hello")
	compressed, err := Compress(data, None)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if &compressed[0] != &data[0] {
		t.Error("Compress(None) copied the input")
	}
	if _, err := Decompress(data, None, 4); err == nil {
		t.Error("Decompress(None) with wrong length succeeded")
	}
}

func TestDecompressLengthMismatch(t *testing.T) {
	text := []byte(strings.Repeat("abcd", 100))
	compressed, err := Compress(text, Zstd)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if _, err := Decompress(compressed, Zstd, len(text)+1); err == nil {
		t.Error("Decompress with wrong length succeeded")
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input   string
		want    Tag
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"lz4", LZ4, false},
		{"zstd", Zstd, false},
		{"gzip", 0, true},
	}
	for _, test := range tests {
		got, err := ParseTag(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseTag(%q) err = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseTag(%q) = %v, want %v", test.input, got, test.want)
		}
	}
	if got := Tag(9).String(); got != "unknown(9)" {
		t.Errorf("Tag(9).String() = %q", got)
	}
}
