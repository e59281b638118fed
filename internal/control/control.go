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

// Package control is the torrent scheduler stub, standing in for
// original_source/src/control/mod.rs's Handle (the piece-picking and
// choke/unchoke control loop referenced, but not included, in
// original_source). It carries only what the RPC surface needs to report
// and mutate: a registry of known torrents and their pause state. Piece
// selection, choking, and rate limiting are not built out.
package control

import "sync"

// TorrentState is the subset of per-torrent control-loop state the RPC
// stub reports.
type TorrentState struct {
	ID     string
	Name   string
	Paused bool

	// TrackerURL and InfoHash are the fields internal/tracker's re-announce
	// loop needs; both are the zero value until SetTracker is called, and a
	// torrent with an empty TrackerURL is simply never announced.
	TrackerURL string
	InfoHash   [20]byte
}

// Handle is a reference to the running control loop. Its zero value is
// not usable; construct one with Start.
type Handle struct {
	mu       *sync.Mutex
	torrents map[string]*TorrentState
}

// Start registers the control subsystem. Unlike internal/disk, there is
// no exclusive-owner resource to serialize here, so a mutex-guarded map is
// the idiomatic shape rather than a worker goroutine over a job channel.
func Start() Handle {
	return Handle{mu: &sync.Mutex{}, torrents: make(map[string]*TorrentState)}
}

// Add registers a new torrent under id, mirroring the bookkeeping
// RPC.UploadTorrent triggers in the original before controller setup.
func (h Handle) Add(id, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.torrents[id] = &TorrentState{ID: id, Name: name}
}

// Remove drops id from the registry. A no-op if id is unknown.
func (h Handle) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.torrents, id)
}

// SetTracker records the announce URL and info hash id should be
// re-announced under, letting internal/tracker's Handle pick it up on its
// next sweep. Returns false if id is unknown.
func (h Handle) SetTracker(id, trackerURL string, infoHash [20]byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.torrents[id]
	if !ok {
		return false
	}
	t.TrackerURL = trackerURL
	t.InfoHash = infoHash
	return true
}

// SetPaused toggles id's paused flag. Returns false if id is unknown.
func (h Handle) SetPaused(id string, paused bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.torrents[id]
	if !ok {
		return false
	}
	t.Paused = paused
	return true
}

// List returns a snapshot of every registered torrent's state.
func (h Handle) List() []TorrentState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]TorrentState, 0, len(h.torrents))
	for _, t := range h.torrents {
		out = append(out, *t)
	}
	return out
}
