// Copyright 2024 The Synapse Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diskcache implements a bounded-capacity registry that maps
// on-disk file paths to open backing files and, where the build's pointer
// width permits, to writable memory-mapped regions over them. It mediates
// all random-access reads and writes to torrent data files on behalf of a
// single owner; see internal/disk for that owner.
//
// The cache is not a page cache with its own buffer pool: it delegates
// buffering to the operating system, via mmap where possible and direct
// file I/O otherwise. It provides no cross-process coordination and no
// internal locking — every FileCache method requires exclusive access,
// and callers sharing one across goroutines must serialize externally.
package diskcache

import (
	"fmt"
	"os"
	"path/filepath"

	fallocate "github.com/detailyang/go-fallocate"
	"github.com/edsrzf/mmap-go"
)

// FileCache is a bounded, unordered mapping from absolute file path to an
// open entry, plus (on 32-bit builds) one process-wide anonymous scratch
// buffer used for spill reads/writes.
//
// INVARIANT: len(entries) <= maxOpenFiles, except transiently just after an
// admission whose eviction sweep found every existing entry in use (see
// evictOne); the cache admits the new entry anyway rather than refuse it.
// INVARIANT: no two entries share a path.
type FileCache struct {
	entries      map[string]*entry
	maxOpenFiles int
	scratch      mmap.MMap // only ever non-nil on 32-bit builds
}

// New constructs a FileCache bounded to maxOpenFiles concurrently open
// entries.
//
// The source this package is adapted from read max_open_files from a
// process-wide configuration singleton before first use; here it is an
// explicit constructor parameter instead, per the Open Question resolution
// recorded in DESIGN.md.
func New(maxOpenFiles int) *FileCache {
	c := &FileCache{
		entries:      make(map[string]*entry),
		maxOpenFiles: maxOpenFiles,
	}

	scratch, err := newScratch()
	if err != nil {
		// Construction-time failure of the scratch map allocation is a
		// programmer/environment error, not a recoverable I/O failure —
		// spec.md §7 calls this out as one of the two conditions allowed
		// to abort the process.
		panic(fmt.Sprintf("diskcache: failed to allocate scratch buffer: %v", err))
	}
	c.scratch = scratch

	return c
}

// GetFileRange ensures path has an entry (creating and, if declaredLen is
// non-nil, pre-allocating it to at least that length if needed), marks the
// entry used, materializes a mutable view over exactly
// [offset, offset+length) of its logical bytes, and invokes f with that
// view, returning f's result.
//
// declaredLen is the caller's declared final length for the file. It is
// required to create a new entry for a path that does not yet exist on
// disk; if path already exists, declaredLen may be nil. read is advisory
// except on the narrow-address-mode spill path, where it selects between
// pre-read and post-write of the scratch buffer.
//
// GetFileRange is a package-level function, not a method on *FileCache,
// because Go does not allow methods to carry their own type parameters.
func GetFileRange[R any](
	c *FileCache,
	path string,
	declaredLen *int64,
	offset int64,
	length int,
	read bool,
	f func([]byte) R,
) (R, error) {
	var zero R

	e, err := c.ensureExists(path, declaredLen)
	if err != nil {
		return zero, err
	}
	e.used = true

	boxed, err := e.region.access(offset, length, read, func(b []byte) any {
		return f(b)
	})
	if err != nil {
		return zero, err
	}
	return boxed.(R), nil
}

// RemoveFile drops the entry for path, if any, after a best-effort flush.
// It is a no-op if path is not cached.
func (c *FileCache) RemoveFile(path string) {
	e, ok := c.entries[path]
	if !ok {
		return
	}
	delete(c.entries, path)
	e.region.flushOnRemove()
	e.region.close()
}

// FlushFile best-effort flushes the entry for path, if any, without
// removing it. It is a no-op if path is not cached. No error is surfaced;
// the operation is advisory.
func (c *FileCache) FlushFile(path string) {
	e, ok := c.entries[path]
	if !ok {
		return
	}
	e.region.flushExplicit()
}

// Close tears down the cache, attempting a best-effort synchronous flush
// of every remaining entry before releasing its OS resources. Errors are
// swallowed.
func (c *FileCache) Close() {
	for path, e := range c.entries {
		e.region.flushTeardown()
		e.region.close()
		delete(c.entries, path)
	}
}

// ensureExists returns the entry for path, admitting it into the cache
// first if it is not already present. Admission runs one eviction sweep if
// the cache is already at capacity, creates path's parent directories,
// opens (creating only if declaredLen is supplied) and, if declaredLen
// differs from the file's current length, pre-allocates it.
func (c *FileCache) ensureExists(path string, declaredLen *int64) (*entry, error) {
	if e, ok := c.entries[path]; ok {
		return e, nil
	}

	if len(c.entries) >= c.maxOpenFiles {
		c.evictOne()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	flags := os.O_RDWR
	if declaredLen != nil {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	if declaredLen != nil {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, err
		}
		// Declared length is a floor, not a target: fallocate never
		// shrinks a file already larger than requested (spec.md §9c), so
		// this call is safe to issue whenever the lengths merely differ,
		// matching the source's own unconditional-on-direction check.
		if info.Size() != *declaredLen {
			if err := fallocate.Fallocate(file, 0, *declaredLen); err != nil {
				file.Close()
				return nil, err
			}
		}
	}

	region, err := newRegion(file, c.scratch)
	if err != nil {
		return nil, err
	}

	e := &entry{region: region, used: true}
	c.entries[path] = e
	return e, nil
}

// evictOne runs a single clock-hand sweep over the cache's entries in
// their natural (Go map, effectively arbitrary) iteration order: every used
// entry is cleared and skipped, and the last not-used entry seen is
// remembered. After the sweep, the remembered entry (if any) is removed.
//
// If every entry was used, the sweep clears them all and removes nothing;
// the caller admits its new entry anyway, temporarily exceeding
// maxOpenFiles by one. This is the observed behavior of the source
// (spec.md §4.1 Eviction, §9b) and is preserved as a soft bound rather than
// a hard one.
func (c *FileCache) evictOne() {
	var victim string
	var found bool

	for path, e := range c.entries {
		if e.used {
			e.used = false
			continue
		}
		victim = path
		found = true
	}

	if found {
		c.RemoveFile(victim)
	}
}
