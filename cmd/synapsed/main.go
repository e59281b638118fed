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

// Command synapsed is the daemon entry point, replacing
// original_source/src/main.rs: it loads an optional TOML config file,
// starts the disk worker and its surrounding stub subsystems, and blocks
// until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"

	"github.com/go-synapse/synapse/config"
	"github.com/go-synapse/synapse/internal/control"
	"github.com/go-synapse/synapse/internal/disk"
	"github.com/go-synapse/synapse/internal/listener"
	"github.com/go-synapse/synapse/internal/peerid"
	"github.com/go-synapse/synapse/internal/rpc"
	"github.com/go-synapse/synapse/internal/tracker"
)

func main() {
	flag.Parse()

	var configPath string
	if flag.NArg() >= 1 {
		configPath = flag.Arg(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("synapsed: %v", err)
	}

	diskHandle := disk.Start(disk.Config{MaxOpenFiles: cfg.Disk.MaxOpenFiles})
	defer diskHandle.Shutdown()

	ctl := control.Start()

	id := peerid.New()
	trackerHandle := tracker.Start(ctl, id, cfg.Listener.Port, tracker.DefaultInterval)
	defer trackerHandle.Close()

	peerListener, err := listener.Start(cfg.Listener.Port, func(conn net.Conn) {
		// The peer wire handshake is out of scope; refuse the connection.
		conn.Close()
	})
	if err != nil {
		log.Fatalf("synapsed: starting peer listener: %v", err)
	}
	defer peerListener.Close()

	rpcHandle, err := rpc.Start(cfg.RPC.Address, ctl)
	if err != nil {
		log.Fatalf("synapsed: starting rpc server: %v", err)
	}
	defer rpcHandle.Close()

	log.Printf("synapsed: listening for peers on %s, rpc on %s", peerListener.Addr(), cfg.RPC.Address)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	log.Printf("synapsed: shutting down")
}
