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

package listener

import (
	"net"
	"testing"
	"time"
)

func TestAcceptInvokesCallback(t *testing.T) {
	accepted := make(chan net.Conn, 1)
	h, err := Start(0, func(c net.Conn) { accepted <- c })
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Close()

	conn, err := net.Dial("tcp", h.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	select {
	case got := <-accepted:
		got.Close()
	case <-time.After(2 * time.Second):
		t.Fatalf("onAccept was not called within timeout")
	}
}

func TestCloseStopsAcceptLoop(t *testing.T) {
	h, err := Start(0, func(c net.Conn) { c.Close() })
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := h.Addr().String()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := net.Dial("tcp", addr); err == nil {
		t.Fatalf("expected Dial to a closed listener to fail")
	}
}
