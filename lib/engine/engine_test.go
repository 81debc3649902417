// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/backing"
	"github.com/bureau-foundation/memshell/lib/clock"
	"github.com/bureau-foundation/memshell/lib/compress"
	"github.com/bureau-foundation/memshell/lib/digest"
	"github.com/bureau-foundation/memshell/lib/namespace"
	"github.com/bureau-foundation/memshell/lib/units"
)

const (
	testDataStart = 4096
	testCapacity  = 64 * 1024
)

func newEngine(t *testing.T, config Config) *Engine {
	t.Helper()
	if config.Capacity == 0 {
		config.Capacity = testCapacity
	}
	if config.DataStart == 0 {
		config.DataStart = testDataStart
	}
	if config.Clock == nil {
		config.Clock = clock.Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	}
	engine, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := engine.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return engine
}

func mustTouch(t *testing.T, engine *Engine, dir namespace.EntryID, path string) namespace.EntryID {
	t.Helper()
	id, err := engine.Touch(dir, path)
	if err != nil {
		t.Fatalf("Touch(%q): %v", path, err)
	}
	return id
}

func mustWrite(t *testing.T, engine *Engine, path, content string) namespace.Entry {
	t.Helper()
	entry, err := engine.Write(namespace.Root, path, []byte(content), WriteOptions{})
	if err != nil {
		t.Fatalf("Write(%q): %v", path, err)
	}
	return entry
}

func TestWriteCatRemoveScenario(t *testing.T) {
	engine := newEngine(t, Config{Capacity: units.MiB + 64*units.KiB, DataStart: units.MiB})

	mustTouch(t, engine, namespace.Root, "f")
	entry := mustWrite(t, engine, "f", "hello")
	if entry.Offset != units.MiB {
		t.Errorf("first write placed at %d, want data start %d", entry.Offset, units.MiB)
	}

	content, err := engine.Read(namespace.Root, "f")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(content) != "hello" {
		t.Fatalf("Read = %q, want %q", content, "hello")
	}

	if err := engine.Remove(namespace.Root, "f"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := engine.Read(namespace.Root, "f"); !errors.Is(err, namespace.ErrNotFound) {
		t.Errorf("Read after Remove: err = %v, want ErrNotFound", err)
	}
}

func TestNewOverLimit(t *testing.T) {
	_, err := New(Config{Capacity: 8192, Limit: 4096})
	if !errors.Is(err, backing.ErrOutOfMemory) {
		t.Fatalf("New over limit: err = %v, want ErrOutOfMemory", err)
	}
}

func TestNewDefaultsDataStart(t *testing.T) {
	engine, err := New(Config{Capacity: 2 * units.MiB})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer engine.Close()
	if engine.DataStart() != DefaultDataStart {
		t.Errorf("DataStart() = %d, want %d", engine.DataStart(), DefaultDataStart)
	}
}

func TestMkdirDuplicate(t *testing.T) {
	engine := newEngine(t, Config{})

	first, err := engine.Mkdir(namespace.Root, "a")
	if err != nil {
		t.Fatalf("Mkdir(a): %v", err)
	}
	if _, err := engine.Mkdir(namespace.Root, "a"); !errors.Is(err, namespace.ErrAlreadyExists) {
		t.Errorf("second Mkdir(a): err = %v, want ErrAlreadyExists", err)
	}
	if _, err := engine.Touch(namespace.Root, "a"); !errors.Is(err, namespace.ErrAlreadyExists) {
		t.Errorf("Touch(a) over directory: err = %v, want ErrAlreadyExists", err)
	}
	if _, err := engine.Mkdir(first, "a"); err != nil {
		t.Errorf("Mkdir(a) under /a: %v", err)
	}
	if _, err := engine.Mkdir(namespace.Root, "a/a"); !errors.Is(err, namespace.ErrAlreadyExists) {
		t.Errorf("Mkdir(a/a): err = %v, want ErrAlreadyExists", err)
	}
}

func TestKindMismatch(t *testing.T) {
	engine := newEngine(t, Config{})
	if _, err := engine.Mkdir(namespace.Root, "d"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if _, err := engine.Write(namespace.Root, "d", []byte("x"), WriteOptions{}); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("Write(dir): err = %v, want ErrIsDirectory", err)
	}
	if _, err := engine.Read(namespace.Root, "d"); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("Read(dir): err = %v, want ErrIsDirectory", err)
	}
	if _, err := engine.Write(namespace.Root, "missing", []byte("x"), WriteOptions{}); !errors.Is(err, namespace.ErrNotFound) {
		t.Errorf("Write(missing): err = %v, want ErrNotFound", err)
	}
	if _, err := engine.List(namespace.Root, "missing"); !errors.Is(err, namespace.ErrNotFound) {
		t.Errorf("List(missing): err = %v, want ErrNotFound", err)
	}
}

func TestRemoveRules(t *testing.T) {
	engine := newEngine(t, Config{})
	dir, err := engine.Mkdir(namespace.Root, "d")
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	mustTouch(t, engine, dir, "f")

	if err := engine.Remove(namespace.Root, "d"); !errors.Is(err, namespace.ErrNotEmpty) {
		t.Errorf("Remove(non-empty): err = %v, want ErrNotEmpty", err)
	}
	if err := engine.Remove(namespace.Root, "/"); !errors.Is(err, namespace.ErrRootRemoval) {
		t.Errorf("Remove(/): err = %v, want ErrRootRemoval", err)
	}
	if err := engine.Remove(namespace.Root, "///"); !errors.Is(err, namespace.ErrRootRemoval) {
		t.Errorf("Remove(///): err = %v, want ErrRootRemoval", err)
	}
	for _, path := range []string{".", "..", "d/.", "d/..", "./"} {
		if err := engine.Remove(dir, path); !errors.Is(err, namespace.ErrInvalidName) {
			t.Errorf("Remove(%q) from /d: err = %v, want ErrInvalidName", path, err)
		}
	}
	if err := engine.Remove(namespace.Root, "d/f"); err != nil {
		t.Fatalf("Remove(d/f): %v", err)
	}
	if err := engine.Remove(namespace.Root, "d"); err != nil {
		t.Fatalf("Remove(empty d): %v", err)
	}
	if err := engine.Remove(namespace.Root, "d"); !errors.Is(err, namespace.ErrNotFound) {
		t.Errorf("Remove(removed): err = %v, want ErrNotFound", err)
	}
}

func TestRemoveDotLeavesDirectories(t *testing.T) {
	engine := newEngine(t, Config{})
	outer, err := engine.Mkdir(namespace.Root, "d")
	if err != nil {
		t.Fatalf("Mkdir(d): %v", err)
	}
	inner, err := engine.Mkdir(outer, "e")
	if err != nil {
		t.Fatalf("Mkdir(e): %v", err)
	}

	for _, path := range []string{".", ".."} {
		if err := engine.Remove(inner, path); !errors.Is(err, namespace.ErrInvalidName) {
			t.Errorf("Remove(%q) in /d/e: err = %v, want ErrInvalidName", path, err)
		}
	}
	for _, id := range []namespace.EntryID{outer, inner} {
		if _, err := engine.Lookup(id); err != nil {
			t.Errorf("Lookup(%v) after rejected removals: %v", id, err)
		}
	}
	if err := engine.Remove(outer, "e/"); err != nil {
		t.Errorf("Remove(e/): %v", err)
	}
}

func TestWriteNoSpaceLeavesEntryUnchanged(t *testing.T) {
	engine := newEngine(t, Config{Capacity: testDataStart + 16})
	mustTouch(t, engine, namespace.Root, "f")
	before := mustWrite(t, engine, "f", "0123456789")

	_, err := engine.Write(namespace.Root, "f", []byte("this does not fit"), WriteOptions{})
	if !errors.Is(err, alloc.ErrNoSpace) {
		t.Fatalf("Write: err = %v, want ErrNoSpace", err)
	}
	after, _ := engine.Lookup(before.ID)
	if after != before {
		t.Errorf("entry changed by failed write: %+v -> %+v", before, after)
	}
	content, _ := engine.Read(namespace.Root, "f")
	if string(content) != "0123456789" {
		t.Errorf("content after failed write = %q", content)
	}
}

// TestRewriteAbandonsOldRegion checks that a rewrite places the new
// copy beyond the old region, which stays physically intact and is
// reused by the next allocation.
func TestRewriteAbandonsOldRegion(t *testing.T) {
	engine := newEngine(t, Config{})
	mustTouch(t, engine, namespace.Root, "f")
	mustTouch(t, engine, namespace.Root, "g")

	first := mustWrite(t, engine, "f", "aaaa")
	second := mustWrite(t, engine, "f", "bbbb")
	if first.Offset != testDataStart {
		t.Fatalf("first write at %d, want %d", first.Offset, testDataStart)
	}
	if second.Offset != testDataStart+4 {
		t.Fatalf("rewrite at %d, want %d (old region must stay occupied during placement)",
			second.Offset, testDataStart+4)
	}

	for offset := first.Offset; offset < first.Extent().End(); offset++ {
		value, err := engine.Peek(offset)
		if err != nil || value != 'a' {
			t.Fatalf("abandoned byte %d = %q, %v; want 'a'", offset, value, err)
		}
	}

	third := mustWrite(t, engine, "g", "cccc")
	if third.Offset != testDataStart {
		t.Errorf("next write at %d, want reuse of abandoned region at %d", third.Offset, testDataStart)
	}
	if usage := engine.Usage(); usage.Used != 8 {
		t.Errorf("Usage().Used = %d, want 8", usage.Used)
	}
}

func TestZeroLengthWrite(t *testing.T) {
	engine := newEngine(t, Config{})
	mustTouch(t, engine, namespace.Root, "f")
	mustWrite(t, engine, "f", "data")

	entry := mustWrite(t, engine, "f", "")
	if entry.Size != 0 || entry.Offset != 0 {
		t.Errorf("empty write left range offset %d size %d", entry.Offset, entry.Size)
	}
	content, err := engine.Read(namespace.Root, "f")
	if err != nil || len(content) != 0 {
		t.Errorf("Read = %q, %v; want empty", content, err)
	}
	if len(engine.Gaps()) != 1 {
		t.Errorf("Gaps() = %v, want the whole data region", engine.Gaps())
	}
}

func TestCompressedWriteRoundTrip(t *testing.T) {
	engine := newEngine(t, Config{})
	text := strings.Repeat("memshell keeps files in one buffer. ", 50)

	for _, tag := range []compress.Tag{compress.LZ4, compress.Zstd} {
		t.Run(tag.String(), func(t *testing.T) {
			name := "text." + tag.String()
			mustTouch(t, engine, namespace.Root, name)
			entry, err := engine.Write(namespace.Root, name, []byte(text), WriteOptions{Compression: tag})
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if entry.Compression != tag {
				t.Errorf("Compression = %s, want %s", entry.Compression, tag)
			}
			if entry.Length != int64(len(text)) || entry.Size >= entry.Length {
				t.Errorf("Length %d Size %d, want Length %d and smaller Size", entry.Length, entry.Size, len(text))
			}

			content, err := engine.Read(namespace.Root, name)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(content) != text {
				t.Error("compressed content did not round-trip")
			}
			sum, err := engine.Sum(namespace.Root, name)
			if err != nil {
				t.Fatalf("Sum: %v", err)
			}
			if sum != digest.Content([]byte(text)) {
				t.Error("Sum differs from digest of decoded content")
			}
		})
	}
}

func TestCompressedWriteFallsBackWhenIncompressible(t *testing.T) {
	engine := newEngine(t, Config{})
	mustTouch(t, engine, namespace.Root, "tiny")
	entry, err := engine.Write(namespace.Root, "tiny", []byte("ab"), WriteOptions{Compression: compress.Zstd})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if entry.Compression != compress.None || entry.Size != 2 {
		t.Errorf("entry = %+v, want raw 2-byte content", entry)
	}
}

func TestPeekPoke(t *testing.T) {
	engine := newEngine(t, Config{})

	tests := []struct {
		offset int64
		value  int64
		want   byte
	}{
		{0, 7, 7},
		{100, 255, 255},
		{101, 256, 0},
		{102, 300, 44},
		{testCapacity - 1, -1, 255},
	}
	for _, test := range tests {
		stored, err := engine.Poke(test.offset, test.value)
		if err != nil {
			t.Fatalf("Poke(%d, %d): %v", test.offset, test.value, err)
		}
		got, err := engine.Peek(test.offset)
		if err != nil {
			t.Fatalf("Peek(%d): %v", test.offset, err)
		}
		if got != test.want || stored != test.want {
			t.Errorf("Poke(%d, %d) then Peek = %d (stored %d), want %d",
				test.offset, test.value, got, stored, test.want)
		}
	}

	if _, err := engine.Peek(testCapacity); !errors.Is(err, backing.ErrOutOfRange) {
		t.Errorf("Peek(capacity): err = %v, want ErrOutOfRange", err)
	}
	if _, err := engine.Poke(testCapacity, 1); !errors.Is(err, backing.ErrOutOfRange) {
		t.Errorf("Poke(capacity): err = %v, want ErrOutOfRange", err)
	}
}

func TestResizePreservesPrefix(t *testing.T) {
	engine := newEngine(t, Config{})
	mustTouch(t, engine, namespace.Root, "f")
	mustWrite(t, engine, "f", "survives")

	if err := engine.Resize(4 * testCapacity); err != nil {
		t.Fatalf("Resize grow: %v", err)
	}
	if engine.Capacity() != 4*testCapacity {
		t.Fatalf("Capacity() = %d, want %d", engine.Capacity(), 4*testCapacity)
	}
	content, err := engine.Read(namespace.Root, "f")
	if err != nil || string(content) != "survives" {
		t.Errorf("Read after grow = %q, %v", content, err)
	}
	if value, _ := engine.Peek(3 * testCapacity); value != 0 {
		t.Errorf("grown region byte = %d, want 0", value)
	}

	if err := engine.Resize(testDataStart + 8); err != nil {
		t.Fatalf("Resize to live high water: %v", err)
	}
	content, err = engine.Read(namespace.Root, "f")
	if err != nil || string(content) != "survives" {
		t.Errorf("Read after shrink = %q, %v", content, err)
	}
}

func TestResizePreservesReservedRegion(t *testing.T) {
	engine := newEngine(t, Config{})

	tests := []struct {
		name     string
		capacity int64
	}{
		{"grow", 5 * testCapacity},
		{"shrink", 2 * testCapacity},
		{"shrink into reserved region", testDataStart / 2},
		{"grow again", testCapacity},
	}
	for _, offset := range []int64{0, 1, 7, 100} {
		if _, err := engine.Poke(offset, 42); err != nil {
			t.Fatalf("Poke(%d): %v", offset, err)
		}
	}

	for _, test := range tests {
		if err := engine.Resize(test.capacity); err != nil {
			t.Fatalf("%s: Resize(%d): %v", test.name, test.capacity, err)
		}
		for _, offset := range []int64{0, 1, 7, 100} {
			value, err := engine.Peek(offset)
			if err != nil {
				t.Fatalf("%s: Peek(%d): %v", test.name, offset, err)
			}
			if value != 42 {
				t.Errorf("%s: Peek(%d) = %d, want 42", test.name, offset, value)
			}
		}
	}
}

func TestResizeRefusesTruncation(t *testing.T) {
	engine := newEngine(t, Config{})
	mustTouch(t, engine, namespace.Root, "f")
	mustWrite(t, engine, "f", "0123456789")

	err := engine.Resize(testDataStart + 9)
	if !errors.Is(err, ErrWouldTruncate) {
		t.Fatalf("Resize below live data: err = %v, want ErrWouldTruncate", err)
	}
	if engine.Capacity() != testCapacity {
		t.Errorf("Capacity() = %d after refused resize, want %d", engine.Capacity(), testCapacity)
	}

	// Removing the file lifts the restriction.
	if err := engine.Remove(namespace.Root, "f"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := engine.Resize(testDataStart); err != nil {
		t.Errorf("Resize after Remove: %v", err)
	}
}

func TestResizeOverLimitKeepsCapacity(t *testing.T) {
	engine := newEngine(t, Config{Limit: 128 * 1024})
	err := engine.Resize(1 << 40)
	if !errors.Is(err, backing.ErrOutOfMemory) {
		t.Fatalf("Resize over limit: err = %v, want ErrOutOfMemory", err)
	}
	if engine.Capacity() != testCapacity {
		t.Errorf("Capacity() = %d, want unchanged %d", engine.Capacity(), testCapacity)
	}
}

func TestUsageAndListing(t *testing.T) {
	engine := newEngine(t, Config{})
	dir, err := engine.Mkdir(namespace.Root, "docs")
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	mustTouch(t, engine, namespace.Root, "b")
	mustTouch(t, engine, namespace.Root, "a")
	mustTouch(t, engine, dir, "inner")
	mustWrite(t, engine, "b", "12345")
	mustWrite(t, engine, "a", "123")
	mustWrite(t, engine, "docs/inner", "1234567")
	mustWrite(t, engine, "b", "12")

	usage := engine.Usage()
	if usage.Used != 2+3+7 {
		t.Errorf("Used = %d, want 12", usage.Used)
	}
	if usage.Free != testCapacity-usage.Used || usage.Capacity != testCapacity {
		t.Errorf("Usage = %+v", usage)
	}

	listing, err := engine.List(namespace.Root, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, entry := range listing {
		got = append(got, entry.Name)
	}
	if want := []string{"docs", "b", "a"}; !slices.Equal(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}

	stat, err := engine.Stat(namespace.Root, "docs/inner")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stat.Path != "/docs/inner" || stat.Size != 7 || stat.IsDirectory() {
		t.Errorf("Stat = %+v", stat)
	}
}

// TestRandomFilesNeverOverlap fills the store with random-length files,
// rewriting and removing some along the way, and checks the live
// ranges stay pairwise disjoint and fully accounted for.
func TestRandomFilesNeverOverlap(t *testing.T) {
	random := rand.New(rand.NewPCG(7, 11))
	engine := newEngine(t, Config{})

	var live []string
	for step := range 400 {
		switch {
		case len(live) > 0 && random.IntN(5) == 0:
			victim := random.IntN(len(live))
			if err := engine.Remove(namespace.Root, live[victim]); err != nil {
				t.Fatalf("step %d: Remove: %v", step, err)
			}
			live = slices.Delete(live, victim, victim+1)
		default:
			var name string
			if len(live) > 0 && random.IntN(3) == 0 {
				name = live[random.IntN(len(live))]
			} else {
				name = "f" + string(rune('a'+step%26)) + strings.Repeat("x", step/26)
				mustTouch(t, engine, namespace.Root, name)
				live = append(live, name)
			}
			content := bytes.Repeat([]byte{byte(step)}, random.IntN(900)+1)
			_, err := engine.Write(namespace.Root, name, content, WriteOptions{})
			if err != nil && !errors.Is(err, alloc.ErrNoSpace) {
				t.Fatalf("step %d: Write: %v", step, err)
			}
		}

		entries, err := engine.List(namespace.Root, "")
		if err != nil {
			t.Fatalf("step %d: List: %v", step, err)
		}
		var sum int64
		for i, entry := range entries {
			sum += entry.Size
			if entry.Size > 0 && (entry.Offset < testDataStart || entry.Extent().End() > testCapacity) {
				t.Fatalf("step %d: %q range [%d, %d) outside data region", step, entry.Name, entry.Offset, entry.Extent().End())
			}
			for _, other := range entries[i+1:] {
				if entry.Extent().Overlaps(other.Extent()) {
					t.Fatalf("step %d: %q %v overlaps %q %v", step, entry.Name, entry.Extent(), other.Name, other.Extent())
				}
			}
		}
		if used := engine.Usage().Used; used != sum {
			t.Fatalf("step %d: Used = %d, sum of sizes = %d", step, used, sum)
		}
	}
}
