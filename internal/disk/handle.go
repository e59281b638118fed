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

// Package disk runs the single goroutine that owns the process's
// internal/diskcache.FileCache and serializes every access to it, playing
// the role of original_source/src/main.rs's lazily-started disk::Handle
// actor. Where the original dispatched work through the amy/mio event
// loop, this rebuilds the same single-owner discipline on a plain
// buffered channel and one worker goroutine — the thread-dispatching
// machinery itself is not reproduced, only the property spec.md §5
// requires of it: operations on the cache are linearised by program order.
package disk

import (
	"github.com/go-synapse/synapse/internal/diskcache"
)

// Config configures a disk worker.
type Config struct {
	// MaxOpenFiles bounds the number of concurrently open cache entries.
	MaxOpenFiles int
}

type jobKind int

const (
	jobRead jobKind = iota
	jobWrite
	jobRemove
	jobFlush
	jobShutdown
)

type job struct {
	kind        jobKind
	path        string
	declaredLen *int64
	offset      int64
	length      int
	data        []byte
	reply       chan jobResult
}

// jobResult is the single reply type for every job kind; only the fields
// relevant to that kind's caller are populated. Using one concrete struct
// (rather than a naked error or []byte sent as any) sidesteps nil-interface
// type assertion panics on the reply channel.
type jobResult struct {
	data []byte
	err  error
}

// Handle is a lightweight, copyable reference to a running disk worker.
// Its zero value is not usable; construct one with Start.
type Handle struct {
	jobs chan job
}

// Start spawns the disk worker goroutine and returns a Handle to it. The
// worker owns a *diskcache.FileCache for the lifetime of the process (or
// until Shutdown is called) and is the cache's sole caller, satisfying
// spec.md §5's single-owner requirement.
func Start(cfg Config) Handle {
	h := Handle{jobs: make(chan job, 64)}
	w := &worker{cache: diskcache.New(cfg.MaxOpenFiles), log: jobLogger{getLogger()}}
	go w.run(h.jobs)
	return h
}

type worker struct {
	cache *diskcache.FileCache
	log   jobLogger
}

func (w *worker) run(jobs chan job) {
	for j := range jobs {
		switch j.kind {
		case jobRead:
			data, err := diskcache.GetFileRange(w.cache, j.path, j.declaredLen, j.offset, j.length, true, func(b []byte) []byte {
				out := make([]byte, len(b))
				copy(out, b)
				return out
			})
			w.log.failed(j, err)
			j.reply <- jobResult{data: data, err: err}

		case jobWrite:
			_, err := diskcache.GetFileRange(w.cache, j.path, j.declaredLen, j.offset, len(j.data), false, func(b []byte) struct{} {
				copy(b, j.data)
				return struct{}{}
			})
			w.log.failed(j, err)
			j.reply <- jobResult{err: err}

		case jobRemove:
			w.cache.RemoveFile(j.path)
			j.reply <- jobResult{}

		case jobFlush:
			w.cache.FlushFile(j.path)
			j.reply <- jobResult{}

		case jobShutdown:
			w.cache.Close()
			j.reply <- jobResult{}
			return
		}
	}
}

// ReadRange reads exactly length bytes at offset from path, admitting path
// into the cache with declaredLen if it is not already cached (declaredLen
// may be nil if the caller knows path already exists on disk).
func (h Handle) ReadRange(path string, declaredLen *int64, offset int64, length int) ([]byte, error) {
	reply := make(chan jobResult, 1)
	h.jobs <- job{kind: jobRead, path: path, declaredLen: declaredLen, offset: offset, length: length, reply: reply}
	res := <-reply
	return res.data, res.err
}

// WriteRange writes data at offset into path, admitting path into the
// cache with declaredLen if needed.
func (h Handle) WriteRange(path string, declaredLen *int64, offset int64, data []byte) error {
	reply := make(chan jobResult, 1)
	h.jobs <- job{kind: jobWrite, path: path, declaredLen: declaredLen, offset: offset, data: data, reply: reply}
	return (<-reply).err
}

// RemoveFile drops path from the cache, best-effort flushing it first.
func (h Handle) RemoveFile(path string) {
	reply := make(chan jobResult, 1)
	h.jobs <- job{kind: jobRemove, path: path, reply: reply}
	<-reply
}

// FlushFile best-effort flushes path without removing it from the cache.
func (h Handle) FlushFile(path string) {
	reply := make(chan jobResult, 1)
	h.jobs <- job{kind: jobFlush, path: path, reply: reply}
	<-reply
}

// Shutdown tears down the cache (best-effort synchronous flush of every
// entry) and stops the worker goroutine. Shutdown must be called at most
// once per Handle.
func (h Handle) Shutdown() {
	reply := make(chan jobResult, 1)
	h.jobs <- job{kind: jobShutdown, reply: reply}
	<-reply
}
