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

package diskcache

// backedRegion is the access-path capability each entry exposes over its
// backing file. Exactly one implementation is compiled into the binary,
// selected by the host's pointer width: region_wide.go backs entries with a
// whole-file writable memory map on hosts with native pointers of at least
// 64 bits, region_narrow.go falls back to a bare file handle plus the
// cache's shared scratch buffer on 32-bit hosts. Neither implementation
// does its own locking; callers (FileCache) are assumed to already hold
// exclusive access.
type backedRegion interface {
	// access invokes f with a slice aliasing the backing file's logical
	// bytes [offset, offset+length) and returns f's boxed result. read
	// indicates whether the caller intends to consume existing bytes
	// (true) or overwrite them (false); it is advisory except on the
	// narrow-mode spill path, where it selects between pre-read and
	// post-write of the scratch buffer.
	access(offset int64, length int, read bool, f func([]byte) any) (any, error)

	// flushOnRemove performs the best-effort flush FileCache.RemoveFile
	// issues before dropping an entry.
	flushOnRemove()

	// flushExplicit performs the best-effort flush FileCache.FlushFile
	// issues.
	flushExplicit()

	// flushTeardown performs the best-effort, synchronous flush
	// FileCache.Close issues on every remaining entry.
	flushTeardown()

	// close releases any OS resources (unmap, file handle) held by the
	// region. Always called after the relevant flush method above.
	close()
}
