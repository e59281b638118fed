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

// Package rpc is the control-plane surface cmd/syncli talks to, replacing
// original_source/sycli/src/cmd.rs's CMessage/SMessage request/response
// pair (there sent over a raw socket with a length-prefixed framing this
// package does not reproduce). The full resource/criterion filter query
// language cmd.rs's FilterSubscribe supports is a non-goal; this exposes
// only the add/list/remove/pause/resume operations cmd/syncli's
// subcommands need, as plain JSON over HTTP.
package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-synapse/synapse/internal/control"
)

// TorrentView is the JSON shape a torrent is rendered as on the wire, the
// counterpart of cmd.rs's Resource::Torrent in the "list" subcommand. It
// carries only the id, name and paused flag; completion, peer counts and
// transfer rates are not reported.
type TorrentView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Paused bool   `json:"paused"`
}

// Handle is a running RPC server bound to one control.Handle.
type Handle struct {
	srv *http.Server
	ln  net.Listener
	ctl control.Handle
}

// Start binds an HTTP server on addr exposing the control surface and
// begins serving in a background goroutine. Serve errors other than
// http.ErrServerClosed are not observable through Handle; spec.md's
// ambient error-handling stance is "cache and worker errors only" and
// this stub does not extend that contract.
func Start(addr string, ctl control.Handle) (Handle, error) {
	mux := http.NewServeMux()
	h := Handle{ctl: ctl}
	h.srv = &http.Server{Addr: addr, Handler: mux}

	mux.HandleFunc("/torrents", h.handleTorrents)
	mux.HandleFunc("/torrents/", h.handleTorrent)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Handle{}, fmt.Errorf("rpc: binding %s: %w", addr, err)
	}
	h.ln = ln
	go h.srv.Serve(ln)
	return h, nil
}

// Addr returns the server's bound address, letting callers that started
// it on an OS-assigned port (":0") discover the real one.
func (h Handle) Addr() string { return h.ln.Addr().String() }

// Close shuts the RPC server down.
func (h Handle) Close() error { return h.srv.Close() }

func (h Handle) handleTorrents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views := make([]TorrentView, 0)
		for _, t := range h.ctl.List() {
			views = append(views, TorrentView{ID: t.ID, Name: t.Name, Paused: t.Paused})
		}
		writeJSON(w, views)

	case http.MethodPost:
		var req struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			TrackerURL string `json:"tracker_url"`
			InfoHash   string `json:"info_hash"` // hex-encoded, 20 bytes
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		h.ctl.Add(req.ID, req.Name)

		if req.TrackerURL != "" {
			var infoHash [20]byte
			if req.InfoHash != "" {
				decoded, err := hex.DecodeString(req.InfoHash)
				if err != nil || len(decoded) != len(infoHash) {
					http.Error(w, "info_hash must be 20 hex-encoded bytes", http.StatusBadRequest)
					return
				}
				copy(infoHash[:], decoded)
			}
			h.ctl.SetTracker(req.ID, req.TrackerURL, infoHash)
		}
		w.WriteHeader(http.StatusCreated)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h Handle) handleTorrent(w http.ResponseWriter, r *http.Request) {
	id, action := splitTorrentPath(r.URL.Path)
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case r.Method == http.MethodDelete && action == "":
		h.ctl.Remove(id)
	case r.Method == http.MethodPost && action == "pause":
		if !h.ctl.SetPaused(id, true) {
			http.NotFound(w, r)
			return
		}
	case r.Method == http.MethodPost && action == "resume":
		if !h.ctl.SetPaused(id, false) {
			http.NotFound(w, r)
			return
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func splitTorrentPath(path string) (id, action string) {
	const prefix = "/torrents/"
	if len(path) <= len(prefix) {
		return "", ""
	}
	rest := path[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
