// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/memshell/lib/alloc"
	"github.com/bureau-foundation/memshell/lib/backing"
	"github.com/bureau-foundation/memshell/lib/clock"
	"github.com/bureau-foundation/memshell/lib/compress"
	"github.com/bureau-foundation/memshell/lib/digest"
	"github.com/bureau-foundation/memshell/lib/namespace"
	"github.com/bureau-foundation/memshell/lib/units"
)

// DefaultDataStart is the size of the reserved region when Config
// leaves DataStart unset.
const DefaultDataStart = units.MiB

var (
	// ErrIsDirectory is returned when a file operation names a
	// directory.
	ErrIsDirectory = errors.New("is a directory")

	// ErrWouldTruncate is returned when a resize would cut into a live
	// file's byte range.
	ErrWouldTruncate = errors.New("resize would truncate live file data")
)

// Config holds the parameters for [New].
type Config struct {
	// Capacity is the initial size of the backing store in bytes.
	Capacity int64

	// Limit caps every allocation of the backing store. Zero means no
	// limit beyond what the platform provides.
	Limit int64

	// DataStart is the size of the reserved region. Zero selects
	// DefaultDataStart.
	DataStart int64

	// Clock stamps entry modification times. Nil selects the real
	// clock.
	Clock clock.Clock

	// Logger receives debug and info records. Nil discards them.
	Logger *slog.Logger
}

// Engine is the storage engine. It is not safe for concurrent use.
type Engine struct {
	store     *backing.Store
	table     *namespace.Table
	dataStart int64
	logger    *slog.Logger
}

// New allocates the backing store and creates an empty namespace.
// Allocation failure is reported as backing.ErrOutOfMemory.
func New(config Config) (*Engine, error) {
	if config.DataStart < 0 {
		return nil, fmt.Errorf("reserved region size must not be negative, got %d", config.DataStart)
	}
	if config.DataStart == 0 {
		config.DataStart = DefaultDataStart
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	store, err := backing.New(config.Capacity, config.Limit)
	if err != nil {
		return nil, fmt.Errorf("allocating initial memory: %w", err)
	}

	engine := &Engine{
		store:     store,
		table:     namespace.New(config.Clock),
		dataStart: config.DataStart,
		logger:    config.Logger,
	}
	engine.syncMetadata()
	engine.logger.Info("storage engine ready",
		"capacity", store.Capacity(),
		"limit", store.Limit(),
		"data_start", engine.dataStart,
	)
	return engine, nil
}

// Close releases the backing store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Capacity returns the current size of the backing store.
func (e *Engine) Capacity() int64 { return e.store.Capacity() }

// Limit returns the configured capacity limit (0 when unlimited).
func (e *Engine) Limit() int64 { return e.store.Limit() }

// DataStart returns the first offset available for file content.
func (e *Engine) DataStart() int64 { return e.dataStart }

// Lookup returns the entry for id.
func (e *Engine) Lookup(id namespace.EntryID) (namespace.Entry, error) {
	return e.table.Lookup(id)
}

// Path returns the absolute path of id.
func (e *Engine) Path(id namespace.EntryID) (string, error) {
	return e.table.FullPath(id)
}

// Resolve walks path from dir and returns the entry it names.
func (e *Engine) Resolve(dir namespace.EntryID, path string) (namespace.Entry, error) {
	id, err := e.table.Walk(path, dir)
	if err != nil {
		return namespace.Entry{}, err
	}
	return e.table.Lookup(id)
}

// Mkdir creates a directory at path relative to dir.
func (e *Engine) Mkdir(dir namespace.EntryID, path string) (namespace.EntryID, error) {
	return e.create(namespace.KindDirectory, dir, path)
}

// Touch creates an empty file at path relative to dir.
func (e *Engine) Touch(dir namespace.EntryID, path string) (namespace.EntryID, error) {
	return e.create(namespace.KindFile, dir, path)
}

func (e *Engine) create(kind namespace.Kind, dir namespace.EntryID, path string) (namespace.EntryID, error) {
	parent, name, err := e.table.Split(path, dir)
	if err != nil {
		return namespace.EntryID{}, err
	}
	id, err := e.table.Create(kind, name, parent)
	if err != nil {
		return namespace.EntryID{}, err
	}
	e.syncMetadata()
	return id, nil
}

// WriteOptions controls how [Engine.Write] stores content.
type WriteOptions struct {
	// Compression encodes the content before placement. Content that
	// does not shrink is stored uncompressed.
	Compression compress.Tag
}

// Write replaces the content of the existing file at path. The new
// bytes are placed in the first free gap large enough to hold them;
// the file's previous region is abandoned.
func (e *Engine) Write(dir namespace.EntryID, path string, content []byte, options WriteOptions) (namespace.Entry, error) {
	entry, err := e.file(dir, path)
	if err != nil {
		return namespace.Entry{}, err
	}

	stored, tag := content, options.Compression
	if tag != compress.None {
		stored, err = compress.Compress(content, tag)
		if compress.IsIncompressible(err) {
			e.logger.Debug("content incompressible, storing raw",
				"path", path, "compression", tag.String(), "length", len(content))
			stored, tag, err = content, compress.None, nil
		}
		if err != nil {
			return namespace.Entry{}, fmt.Errorf("write %q: %w", path, err)
		}
	}

	placement := namespace.Content{Length: int64(len(content)), Compression: tag}
	if len(stored) > 0 {
		// The entry still references its old region here, so the new
		// copy never lands on top of the bytes it replaces.
		offset, err := alloc.FindFreeSpace(e.table.Extents(), e.dataStart, e.store.Capacity(), int64(len(stored)))
		if err != nil {
			e.logger.Debug("allocation failed",
				"path", path, "length", len(stored), "capacity", e.store.Capacity(), "error", err)
			return namespace.Entry{}, fmt.Errorf("write %q: %w", path, err)
		}
		if _, err := e.store.WriteAt(stored, offset); err != nil {
			return namespace.Entry{}, fmt.Errorf("write %q: %w", path, err)
		}
		placement.Offset = offset
		placement.Size = int64(len(stored))
	} else {
		placement.Compression = compress.None
	}

	if err := e.table.SetContent(entry.ID, placement); err != nil {
		return namespace.Entry{}, err
	}
	e.syncMetadata()
	return e.table.Lookup(entry.ID)
}

// Read returns the decoded content of the file at path.
func (e *Engine) Read(dir namespace.EntryID, path string) ([]byte, error) {
	entry, err := e.file(dir, path)
	if err != nil {
		return nil, err
	}
	if entry.Size == 0 {
		return []byte{}, nil
	}

	stored := make([]byte, entry.Size)
	if _, err := e.store.ReadAt(stored, entry.Offset); err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	content, err := compress.Decompress(stored, entry.Compression, int(entry.Length))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return content, nil
}

// Remove deletes the file or empty directory at path. The final
// segment must be a real entry name, so "." and ".." are rejected with
// namespace.ErrInvalidName; a path of only slashes names the root.
func (e *Engine) Remove(dir namespace.EntryID, path string) error {
	if path != "" && strings.Trim(path, "/") == "" {
		return fmt.Errorf("%q: %w", path, namespace.ErrRootRemoval)
	}
	parent, leaf, err := e.table.Split(path, dir)
	if err != nil {
		return err
	}
	id, err := e.table.Resolve(leaf, parent)
	if err != nil {
		return err
	}
	if err := e.table.Remove(id); err != nil {
		return err
	}
	e.syncMetadata()
	return nil
}

// List returns the children of the directory at path, in creation
// order. An empty path lists dir itself.
func (e *Engine) List(dir namespace.EntryID, path string) ([]namespace.Entry, error) {
	target := dir
	if path != "" {
		var err error
		target, err = e.table.Walk(path, dir)
		if err != nil {
			return nil, err
		}
	}
	return e.table.Children(target)
}

// Stat describes one entry.
type Stat struct {
	namespace.Entry
	Path string
}

// Stat returns the entry at path with its absolute path.
func (e *Engine) Stat(dir namespace.EntryID, path string) (Stat, error) {
	entry, err := e.Resolve(dir, path)
	if err != nil {
		return Stat{}, err
	}
	fullPath, err := e.table.FullPath(entry.ID)
	if err != nil {
		return Stat{}, err
	}
	return Stat{Entry: entry, Path: fullPath}, nil
}

// Sum returns the digest of the decoded content of the file at path.
func (e *Engine) Sum(dir namespace.EntryID, path string) (digest.Digest, error) {
	content, err := e.Read(dir, path)
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Content(content), nil
}

// Usage is the free-space report.
type Usage struct {
	Capacity int64

	// Used is the sum of stored sizes over live files. It ignores the
	// reserved region and fragmentation.
	Used int64

	// Free is Capacity minus Used. It is an accounting figure, not the
	// largest contiguous gap.
	Free int64
}

// Usage computes the free-space report.
func (e *Engine) Usage() Usage {
	var used int64
	for _, extent := range e.table.Extents() {
		used += extent.Length
	}
	capacity := e.store.Capacity()
	return Usage{Capacity: capacity, Used: used, Free: capacity - used}
}

// Gaps returns the free ranges of the data region in offset order.
func (e *Engine) Gaps() []alloc.Extent {
	return alloc.Gaps(e.table.Extents(), e.dataStart, e.store.Capacity())
}

// Peek returns the byte at offset.
func (e *Engine) Peek(offset int64) (byte, error) {
	return e.store.ByteAt(offset)
}

// Poke stores value mod 256 at offset and returns the stored byte.
// Poke bypasses the namespace: it may overwrite file content or the
// metadata image.
func (e *Engine) Poke(offset int64, value int64) (byte, error) {
	stored := byte(value)
	if err := e.store.SetByte(offset, stored); err != nil {
		return 0, err
	}
	return stored, nil
}

// Resize reallocates the backing store, preserving its first
// min(Capacity(), newCapacity) bytes, the reserved region included. It
// never rewrites the metadata image. It refuses to cut into any live
// file's range. On error the store is unchanged.
func (e *Engine) Resize(newCapacity int64) error {
	oldCapacity := e.store.Capacity()
	var highWater int64
	for _, extent := range e.table.Extents() {
		highWater = max(highWater, extent.End())
	}
	if newCapacity < highWater {
		return fmt.Errorf("%w: live data extends to byte %d, requested capacity %d",
			ErrWouldTruncate, highWater, newCapacity)
	}

	if err := e.store.Resize(newCapacity); err != nil {
		e.logger.Info("resize failed",
			"from", oldCapacity, "to", newCapacity, "error", err)
		return err
	}
	e.logger.Info("resized backing store", "from", oldCapacity, "to", newCapacity)
	return nil
}

// file resolves path and requires a file.
func (e *Engine) file(dir namespace.EntryID, path string) (namespace.Entry, error) {
	entry, err := e.Resolve(dir, path)
	if err != nil {
		return namespace.Entry{}, err
	}
	if entry.IsDirectory() {
		return namespace.Entry{}, fmt.Errorf("%q: %w", path, ErrIsDirectory)
	}
	return entry, nil
}
