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

package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-synapse/synapse/internal/control"
)

func TestAddListRemoveOverHTTP(t *testing.T) {
	ctl := control.Start()
	h, err := Start("127.0.0.1:0", ctl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Close()
	base := "http://" + h.Addr()

	body, _ := json.Marshal(map[string]string{"id": "t1", "name": "ubuntu.iso"})
	resp, err := http.Post(base+"/torrents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /torrents: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /torrents status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp, err = http.Get(base + "/torrents")
	if err != nil {
		t.Fatalf("GET /torrents: %v", err)
	}
	defer resp.Body.Close()

	var views []TorrentView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(views) != 1 || views[0].ID != "t1" {
		t.Fatalf("got %+v, want one torrent t1", views)
	}

	req, _ := http.NewRequest(http.MethodDelete, base+"/torrents/t1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /torrents/t1: %v", err)
	}
	resp.Body.Close()

	if list := ctl.List(); len(list) != 0 {
		t.Fatalf("control state after DELETE = %+v, want empty", list)
	}
}

func TestSplitTorrentPath(t *testing.T) {
	cases := []struct {
		path       string
		id, action string
	}{
		{"/torrents/t1", "t1", ""},
		{"/torrents/t1/pause", "t1", "pause"},
		{"/torrents/", "", ""},
	}
	for _, c := range cases {
		id, action := splitTorrentPath(c.path)
		if id != c.id || action != c.action {
			t.Errorf("splitTorrentPath(%q) = (%q, %q), want (%q, %q)", c.path, id, action, c.id, c.action)
		}
	}
}

func TestHandleTorrentsDecodesPost(t *testing.T) {
	ctl := control.Start()
	h := Handle{ctl: ctl}

	body, _ := json.Marshal(map[string]string{"id": "t1", "name": "ubuntu.iso"})
	req, _ := http.NewRequest(http.MethodPost, "/torrents", bytes.NewReader(body))
	rec := newResponseRecorder()
	h.handleTorrents(rec, req)

	if rec.status != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.status, http.StatusCreated)
	}
	if list := ctl.List(); len(list) != 1 || list[0].ID != "t1" {
		t.Fatalf("control state after POST = %+v, want one torrent t1", list)
	}
}

func TestHandleTorrentsPostSetsTracker(t *testing.T) {
	ctl := control.Start()
	h := Handle{ctl: ctl}

	body, _ := json.Marshal(map[string]string{
		"id":          "t1",
		"name":        "ubuntu.iso",
		"tracker_url": "http://tracker.example/announce",
		"info_hash":   "0102030405060708090a0b0c0d0e0f1011121314",
	})
	req, _ := http.NewRequest(http.MethodPost, "/torrents", bytes.NewReader(body))
	rec := newResponseRecorder()
	h.handleTorrents(rec, req)

	if rec.status != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.status, http.StatusCreated)
	}
	list := ctl.List()
	if len(list) != 1 || list[0].TrackerURL != "http://tracker.example/announce" {
		t.Fatalf("control state after POST = %+v, want tracker_url set", list)
	}
	if list[0].InfoHash != ([20]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}) {
		t.Fatalf("InfoHash = %x, want decoded hex", list[0].InfoHash)
	}
}

func TestHandleTorrentsPostRejectsBadInfoHash(t *testing.T) {
	ctl := control.Start()
	h := Handle{ctl: ctl}

	body, _ := json.Marshal(map[string]string{
		"id":          "t1",
		"name":        "ubuntu.iso",
		"tracker_url": "http://tracker.example/announce",
		"info_hash":   "not-hex",
	})
	req, _ := http.NewRequest(http.MethodPost, "/torrents", bytes.NewReader(body))
	rec := newResponseRecorder()
	h.handleTorrents(rec, req)

	if rec.status != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.status, http.StatusBadRequest)
	}
}

// minimal http.ResponseWriter fake so handler unit tests don't need a live
// listener.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header { return r.header }
func (r *responseRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}
func (r *responseRecorder) WriteHeader(status int) { r.status = status }
