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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// torrentView mirrors internal/rpc.TorrentView; kept as a separate type so
// this command package does not import internal/rpc and depends only on
// the JSON wire shape.
type torrentView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Paused bool   `json:"paused"`
}

// client is a thin HTTP client for the daemon's RPC surface, replacing
// original_source/sycli/src/client.rs's socket-framed request/response
// pair (Client::rr) with direct HTTP verbs against internal/rpc's routes.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{baseURL: baseURL, http: http.DefaultClient}
}

func (c *client) list() ([]torrentView, error) {
	resp, err := c.http.Get(c.baseURL + "/torrents")
	if err != nil {
		return nil, fmt.Errorf("listing torrents: %w", err)
	}
	defer resp.Body.Close()

	var views []torrentView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		return nil, fmt.Errorf("decoding torrent list: %w", err)
	}
	return views, nil
}

func (c *client) add(id, name string) error {
	body, err := json.Marshal(map[string]string{"id": id, "name": name})
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+"/torrents", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("adding torrent: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *client) remove(id string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/torrents/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("removing torrent %s: %w", id, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *client) setPaused(id string, paused bool) error {
	action := "resume"
	if paused {
		action = "pause"
	}
	resp, err := c.http.Post(c.baseURL+"/torrents/"+id+"/"+action, "application/json", nil)
	if err != nil {
		return fmt.Errorf("%s torrent %s: %w", action, id, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 400 {
		return fmt.Errorf("synapsed returned %s", resp.Status)
	}
	return nil
}
