// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"fmt"
	"strings"
)

// Walk resolves path relative to from and returns the entry it names.
// An absolute path starts at the root. "." stays put, ".." moves to the
// parent (a no-op at the root), and empty segments from repeated
// slashes are ignored. Every segment but the last must name a
// directory; the last may name a file.
func (t *Table) Walk(path string, from EntryID) (EntryID, error) {
	if path == "" {
		return EntryID{}, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	current := from
	if strings.HasPrefix(path, "/") {
		current = Root
	}
	if _, err := t.Lookup(current); err != nil {
		return EntryID{}, err
	}

	for segment := range strings.SplitSeq(path, "/") {
		entry, err := t.Lookup(current)
		if err != nil {
			return EntryID{}, err
		}
		if segment == "" || segment == "." {
			if !entry.IsDirectory() {
				return EntryID{}, fmt.Errorf("%q: %w", entry.Name, ErrNotADirectory)
			}
			continue
		}
		if !entry.IsDirectory() {
			return EntryID{}, fmt.Errorf("%q: %w", entry.Name, ErrNotADirectory)
		}
		if segment == ".." {
			current = entry.Parent
			continue
		}
		next, err := t.Resolve(segment, current)
		if err != nil {
			return EntryID{}, fmt.Errorf("resolve %q: %w", path, err)
		}
		current = next
	}
	return current, nil
}

// Split separates path into the directory that will hold a new entry
// and the entry's name. "notes" yields (from, "notes") and
// "/docs/notes" yields (the /docs directory, "notes"). The leaf name is
// validated; the parent must already exist and be a directory.
func (t *Table) Split(path string, from EntryID) (EntryID, string, error) {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return EntryID{}, "", fmt.Errorf("%w: %q has no final name", ErrInvalidName, path)
	}

	parent, leaf := from, trimmed
	if slash := strings.LastIndex(trimmed, "/"); slash >= 0 {
		leaf = trimmed[slash+1:]
		directory := trimmed[:slash]
		if directory == "" {
			directory = "/"
		}
		var err error
		parent, err = t.Walk(directory, from)
		if err != nil {
			return EntryID{}, "", err
		}
	}

	if err := ValidateName(leaf); err != nil {
		return EntryID{}, "", err
	}
	entry, err := t.Lookup(parent)
	if err != nil {
		return EntryID{}, "", err
	}
	if !entry.IsDirectory() {
		return EntryID{}, "", fmt.Errorf("%q: %w", entry.Name, ErrNotADirectory)
	}
	return parent, leaf, nil
}
