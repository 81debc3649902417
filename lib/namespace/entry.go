// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/compress"
)

// Kind distinguishes directories from files.
type Kind uint8

const (
	KindFile      Kind = 1
	KindDirectory Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EntryID is a stable handle to a namespace entry. The zero value is
// never valid: live generations start at 1.
type EntryID struct {
	Index      uint32
	Generation uint32
}

// Root is the handle of the root directory. It is valid for the life
// of every Table.
var Root = EntryID{Index: 0, Generation: 1}

// IsZero reports whether id is the zero handle.
func (id EntryID) IsZero() bool {
	return id == EntryID{}
}

// String renders the handle as index.generation.
func (id EntryID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Generation)
}

// Entry is a snapshot of one namespace entry. Entries returned by a
// Table are copies; mutating them has no effect on the table.
type Entry struct {
	ID     EntryID
	Name   string
	Kind   Kind
	Parent EntryID

	// Offset and Size locate the stored bytes in the backing store.
	// Both are zero for directories and for files never written.
	Offset int64
	Size   int64

	// Length is the decoded content length. It differs from Size only
	// when Compression is not None.
	Length      int64
	Compression compress.Tag

	Modified time.Time
}

// IsDirectory reports whether the entry is a directory.
func (e Entry) IsDirectory() bool { return e.Kind == KindDirectory }

// Extent returns the byte range the entry occupies in the backing
// store. Directories and empty files have a zero-length extent.
func (e Entry) Extent() alloc.Extent {
	return alloc.Extent{Offset: e.Offset, Length: e.Size}
}

// Content describes the stored form of a file's bytes.
type Content struct {
	Offset      int64
	Size        int64
	Length      int64
	Compression compress.Tag
}

// ValidateName checks that name can be used for an entry: non-empty,
// free of '/', and not one of the special names "." and "..".
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains '/'", ErrInvalidName, name)
	}
	return nil
}
