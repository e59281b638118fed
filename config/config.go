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

// Package config loads the daemon's TOML configuration file, replacing
// original_source/src/main.rs's toml::from_str + config::Config::from_file
// pass. Full schema validation is out of scope (spec.md §1's "full config
// schema validation" non-goal); this only carries the fields the disk
// worker and its surrounding stubs need to start.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the daemon's top-level configuration. The zero value is not
// the default configuration; Default returns that, mirroring main.rs's
// Default::default() fallback path.
type Config struct {
	Disk     DiskConfig     `toml:"disk"`
	Listener ListenerConfig `toml:"listener"`
	RPC      RPCConfig      `toml:"rpc"`
}

// DiskConfig configures the disk worker's file cache.
type DiskConfig struct {
	// MaxOpenFiles bounds concurrently open cache entries. Zero means the
	// built-in default.
	MaxOpenFiles int `toml:"max_open_files"`
	// SessionDir is the root directory torrent file paths are resolved
	// relative to.
	SessionDir string `toml:"directory"`
}

// ListenerConfig configures the peer-connection listener stub.
type ListenerConfig struct {
	Port int `toml:"port"`
}

// RPCConfig configures the control-plane RPC stub.
type RPCConfig struct {
	Address string `toml:"address"`
}

// Default returns the configuration used when no config file is given, the
// Go equivalent of Config::default() in the original.
func Default() Config {
	return Config{
		Disk:     DiskConfig{MaxOpenFiles: 100, SessionDir: "."},
		Listener: ListenerConfig{Port: 16038},
		RPC:      RPCConfig{Address: "127.0.0.1:8412"},
	}
}

// Load reads and parses the TOML file at path, filling in Default() for
// any field the file leaves at its zero value. An empty path returns
// Default() directly, mirroring main.rs's "no argv[1]" branch.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var parsed Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if parsed.Disk.MaxOpenFiles != 0 {
		cfg.Disk.MaxOpenFiles = parsed.Disk.MaxOpenFiles
	}
	if parsed.Disk.SessionDir != "" {
		cfg.Disk.SessionDir = parsed.Disk.SessionDir
	}
	if parsed.Listener.Port != 0 {
		cfg.Listener.Port = parsed.Listener.Port
	}
	if parsed.RPC.Address != "" {
		cfg.RPC.Address = parsed.RPC.Address
	}
	return cfg, nil
}
