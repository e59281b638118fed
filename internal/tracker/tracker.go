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

// Package tracker announces a torrent's progress to a single BitTorrent
// tracker over HTTP, replacing original_source/src/tracker/mod.rs's
// Tracker actor. The full tracker protocol (scrape, UDP trackers, retry
// backoff, multi-tracker fallback) is out of scope; this builds just
// one bencoded GET announce exchange and a periodic re-announce loop. The
// loop logs announce failures and does not keep or report the results.
package tracker

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zeebo/bencode"

	"github.com/go-synapse/synapse/internal/control"
	"github.com/go-synapse/synapse/internal/peerid"
)

// Event is a BitTorrent announce event, sent as the "event" query
// parameter on the first and last announce of a torrent's lifetime.
type Event string

const (
	EventStarted   Event = "started"
	EventStopped   Event = "stopped"
	EventCompleted Event = "completed"
	// EventNone is sent on periodic re-announces between the first and last.
	EventNone Event = ""
)

// AnnounceRequest is the set of parameters a GET announce request carries.
type AnnounceRequest struct {
	URL        string
	InfoHash   [20]byte
	PeerID     peerid.ID
	Port       int
	Uploaded   int64
	Downloaded int64
	Left       int64
	Event      Event
}

// announceResponse is the bencoded reply body's shape, following
// BEP 3's tracker response dictionary.
type announceResponse struct {
	FailureReason string `bencode:"failure reason"`
	Interval      int    `bencode:"interval"`
	Complete      int    `bencode:"complete"`
	Incomplete    int    `bencode:"incomplete"`
	Peers         string `bencode:"peers"`
}

// AnnounceResult is the subset of a tracker's response the rest of the
// system needs.
type AnnounceResult struct {
	IntervalSeconds int
	Seeders         int
	Leechers        int
	// CompactPeers is BEP 23's compact peer list: 6 bytes (4-byte IPv4 +
	// 2-byte port, big-endian) per peer.
	CompactPeers []byte
}

// Announce performs one GET announce exchange against req.URL.
func Announce(ctx context.Context, req AnnounceRequest) (AnnounceResult, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return AnnounceResult{}, fmt.Errorf("tracker: invalid announce url: %w", err)
	}

	q := u.Query()
	q.Set("info_hash", string(req.InfoHash[:]))
	q.Set("peer_id", req.PeerID.String())
	q.Set("port", strconv.Itoa(req.Port))
	q.Set("uploaded", strconv.FormatInt(req.Uploaded, 10))
	q.Set("downloaded", strconv.FormatInt(req.Downloaded, 10))
	q.Set("left", strconv.FormatInt(req.Left, 10))
	q.Set("compact", "1")
	if req.Event != EventNone {
		q.Set("event", string(req.Event))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return AnnounceResult{}, fmt.Errorf("tracker: building request: %w", err)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return AnnounceResult{}, fmt.Errorf("tracker: announce to %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	var parsed announceResponse
	if err := bencode.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return AnnounceResult{}, fmt.Errorf("tracker: decoding response: %w", err)
	}
	if parsed.FailureReason != "" {
		return AnnounceResult{}, fmt.Errorf("tracker: %s", parsed.FailureReason)
	}

	return AnnounceResult{
		IntervalSeconds: parsed.Interval,
		Seeders:         parsed.Complete,
		Leechers:        parsed.Incomplete,
		CompactPeers:    []byte(parsed.Peers),
	}, nil
}

// DefaultInterval is the re-announce period used when the daemon starts a
// Handle, standing in for the interval a real tracker's first announce
// response would otherwise negotiate (BEP 3's "interval" field).
const DefaultInterval = 30 * time.Minute

// Handle periodically re-announces every registered, unpaused torrent that
// carries a tracker URL, playing the role of original_source/src/main.rs's
// TRACKER lazy static driven by the control loop's torrent list. Its zero
// value is not usable; construct one with Start.
type Handle struct {
	stop chan struct{}
}

// Start spawns the re-announce loop and returns a Handle to it. id is the
// process's peer ID, reused across every announce the loop makes; port is
// the listening port advertised to the tracker. The loop consults ctl.List
// on every tick rather than caching a torrent set, so torrents added,
// removed, or paused between ticks are picked up automatically.
func Start(ctl control.Handle, id peerid.ID, port int, interval time.Duration) Handle {
	h := Handle{stop: make(chan struct{})}
	go h.run(ctl, id, port, interval)
	return h
}

func (h Handle) run(ctl control.Handle, id peerid.ID, port int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.announceAll(ctl, id, port)
		}
	}
}

func (h Handle) announceAll(ctl control.Handle, id peerid.ID, port int) {
	for _, t := range ctl.List() {
		if t.Paused || t.TrackerURL == "" {
			continue
		}
		req := AnnounceRequest{
			URL:      t.TrackerURL,
			InfoHash: t.InfoHash,
			PeerID:   id,
			Port:     port,
			Event:    EventNone,
		}
		if _, err := Announce(context.Background(), req); err != nil {
			log.Printf("tracker: re-announce %s to %s: %v", t.ID, t.TrackerURL, err)
		}
	}
}

// Close stops the re-announce loop. Close must be called at most once per
// Handle.
func (h Handle) Close() { close(h.stop) }
