// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/clock"
)

var (
	// ErrNotFound is returned when a name does not resolve or a handle
	// is stale.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a name that is taken
	// under the same parent.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotEmpty is returned when removing a directory with children.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNotADirectory is returned when a file is used where a
	// directory is required.
	ErrNotADirectory = errors.New("not a directory")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid name")

	// ErrRootRemoval is returned when removing the root directory.
	ErrRootRemoval = errors.New("cannot remove the root directory")
)

type slot struct {
	entry      Entry
	generation uint32
	live       bool
}

// Table is the file table.
type Table struct {
	slots []slot

	// free holds indices of dead slots available for reuse.
	free []uint32

	// order holds live slot indices in creation order. Root is always
	// order[0].
	order []uint32

	clock clock.Clock
}

// New returns a table holding only the root directory.
func New(clk clock.Clock) *Table {
	if clk == nil {
		clk = clock.Real()
	}
	root := Entry{
		ID:       Root,
		Kind:     KindDirectory,
		Parent:   Root,
		Modified: clk.Now(),
	}
	return &Table{
		slots: []slot{{entry: root, generation: Root.Generation, live: true}},
		order: []uint32{Root.Index},
		clock: clk,
	}
}

// Len returns the number of live entries, root included.
func (t *Table) Len() int {
	return len(t.order)
}

// Lookup returns the entry for id, or ErrNotFound when id is stale or
// was never issued.
func (t *Table) Lookup(id EntryID) (Entry, error) {
	s, err := t.slot(id)
	if err != nil {
		return Entry{}, err
	}
	return s.entry, nil
}

// Resolve finds the entry named name directly under parent.
func (t *Table) Resolve(name string, parent EntryID) (EntryID, error) {
	for _, index := range t.order {
		entry := &t.slots[index].entry
		if entry.ID == Root {
			continue
		}
		if entry.Parent == parent && entry.Name == name {
			return entry.ID, nil
		}
	}
	return EntryID{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Create adds an entry named name under parent. The parent must be a
// live directory and the name must be unused among its children.
func (t *Table) Create(kind Kind, name string, parent EntryID) (EntryID, error) {
	if kind != KindFile && kind != KindDirectory {
		return EntryID{}, fmt.Errorf("create %q: unknown kind %d", name, kind)
	}
	if err := ValidateName(name); err != nil {
		return EntryID{}, err
	}
	parentEntry, err := t.Lookup(parent)
	if err != nil {
		return EntryID{}, fmt.Errorf("parent of %q: %w", name, err)
	}
	if !parentEntry.IsDirectory() {
		return EntryID{}, fmt.Errorf("parent of %q: %w", name, ErrNotADirectory)
	}
	if _, err := t.Resolve(name, parent); err == nil {
		return EntryID{}, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	var index uint32
	if count := len(t.free); count > 0 {
		index = t.free[count-1]
		t.free = t.free[:count-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{generation: 1})
	}

	s := &t.slots[index]
	id := EntryID{Index: index, Generation: s.generation}
	s.entry = Entry{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Parent:   parent,
		Modified: t.clock.Now(),
	}
	s.live = true
	t.order = append(t.order, index)
	return id, nil
}

// Remove deletes the entry for id. Files are always removable;
// directories only when they have no children. The handle, and every
// copy of it, is stale afterwards.
func (t *Table) Remove(id EntryID) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	if id == Root {
		return ErrRootRemoval
	}
	if s.entry.IsDirectory() && t.hasChildren(id) {
		return fmt.Errorf("%w: %q", ErrNotEmpty, s.entry.Name)
	}

	s.live = false
	s.entry = Entry{}
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	t.free = append(t.free, id.Index)
	if position := slices.Index(t.order, id.Index); position >= 0 {
		t.order = slices.Delete(t.order, position, position+1)
	}
	return nil
}

// Children returns the live children of parent in creation order.
func (t *Table) Children(parent EntryID) ([]Entry, error) {
	parentEntry, err := t.Lookup(parent)
	if err != nil {
		return nil, err
	}
	if !parentEntry.IsDirectory() {
		return nil, fmt.Errorf("%q: %w", parentEntry.Name, ErrNotADirectory)
	}
	var children []Entry
	for _, index := range t.order {
		entry := t.slots[index].entry
		if entry.ID != Root && entry.Parent == parent {
			children = append(children, entry)
		}
	}
	return children, nil
}

// FullPath renders the absolute path of id, "/" for the root.
func (t *Table) FullPath(id EntryID) (string, error) {
	var segments []string
	current := id
	for current != Root {
		entry, err := t.Lookup(current)
		if err != nil {
			return "", err
		}
		segments = append(segments, entry.Name)
		current = entry.Parent
	}
	slices.Reverse(segments)
	return "/" + strings.Join(segments, "/"), nil
}

// SetContent records where a file's bytes are stored and stamps its
// modification time.
func (t *Table) SetContent(id EntryID, content Content) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	if s.entry.IsDirectory() {
		return fmt.Errorf("set content of directory %q", s.entry.Name)
	}
	if content.Size < 0 || content.Length < 0 || content.Offset < 0 {
		return fmt.Errorf("set content of %q: negative offset or size", s.entry.Name)
	}
	s.entry.Offset = content.Offset
	s.entry.Size = content.Size
	s.entry.Length = content.Length
	s.entry.Compression = content.Compression
	s.entry.Modified = t.clock.Now()
	return nil
}

// Entries returns every live entry in creation order, root first.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, index := range t.order {
		entries = append(entries, t.slots[index].entry)
	}
	return entries
}

// Extents returns the non-empty byte ranges of all live files.
func (t *Table) Extents() []alloc.Extent {
	var extents []alloc.Extent
	for _, index := range t.order {
		entry := &t.slots[index].entry
		if !entry.IsDirectory() && entry.Size > 0 {
			extents = append(extents, entry.Extent())
		}
	}
	return extents
}

func (t *Table) slot(id EntryID) (*slot, error) {
	if id.IsZero() || int(id.Index) >= len(t.slots) {
		return nil, fmt.Errorf("%w: entry %s", ErrNotFound, id)
	}
	s := &t.slots[id.Index]
	if !s.live || s.generation != id.Generation {
		return nil, fmt.Errorf("%w: stale entry %s", ErrNotFound, id)
	}
	return s, nil
}

func (t *Table) hasChildren(id EntryID) bool {
	for _, index := range t.order {
		entry := &t.slots[index].entry
		if entry.ID != Root && entry.Parent == id {
			return true
		}
	}
	return false
}
