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

// Package listener accepts incoming peer connections, replacing
// original_source/src/listener/mod.rs's Handle (init'd from main.rs's
// LISTENER.init()). The BitTorrent peer wire handshake itself is a
// non-goal; accepted connections are handed to a callback and otherwise
// left alone.
package listener

import (
	"fmt"
	"net"
)

// Handle is a running peer-connection listener. Its zero value is not
// usable; construct one with Start.
type Handle struct {
	ln net.Listener
}

// Start binds a TCP listener on port and spawns the accept loop, calling
// onAccept for every inbound connection. onAccept is responsible for
// closing the connection; it is invoked in its own goroutine per
// connection so one slow peer cannot stall acceptance of the next.
func Start(port int, onAccept func(net.Conn)) (Handle, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return Handle{}, fmt.Errorf("listener: binding port %d: %w", port, err)
	}

	h := Handle{ln: ln}
	go h.acceptLoop(onAccept)
	return h, nil
}

func (h Handle) acceptLoop(onAccept func(net.Conn)) {
	for {
		conn, err := h.ln.Accept()
		if err != nil {
			return
		}
		go onAccept(conn)
	}
}

// Addr returns the listener's bound address.
func (h Handle) Addr() net.Addr { return h.ln.Addr() }

// Close stops accepting new connections.
func (h Handle) Close() error { return h.ln.Close() }
