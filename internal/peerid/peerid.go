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

// Package peerid generates the 20-byte BitTorrent peer identifier the
// tracker announce reports, replacing original_source/src/main.rs's
// lazy_static PEER_ID.
package peerid

import "math/rand/v2"

const prefix = "-SN0001-"

// ID is a 20-byte BitTorrent peer identifier: an 8-byte client/version
// prefix followed by 11 random bytes and a final zero byte, generated once
// per process.
type ID [20]byte

// String renders id the way tracker announce URLs expect it: raw bytes,
// percent-encodable by the caller.
func (id ID) String() string { return string(id[:]) }

// New generates a fresh peer ID with the package's client prefix. The
// original seeds 11 random bytes into indices 8 through 18 of a 20-byte
// array (src/main.rs never sets pid[19]); this mirrors that shape exactly rather
// than "fixing" an apparent off-by-one, since nothing downstream depends
// on the final byte being random.
func New() ID {
	var id ID
	copy(id[:], prefix)
	for i := len(prefix); i < 19; i++ {
		id[i] = byte(rand.IntN(256))
	}
	return id
}
