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

package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-synapse/synapse/internal/torrent"
)

// A piece that straddles two constituent files must be split and
// reassembled transparently.
func TestPieceSpansMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	h := Start(Config{MaxOpenFiles: 4})
	defer h.Shutdown()

	info := torrent.Info{
		Files: []torrent.FileInfo{
			{Path: "first", Length: 6},
			{Path: "second", Length: 10},
		},
		PieceLength: 8,
	}

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := h.WritePiece(dir, info, 0, 0, data); err != nil {
		t.Fatalf("WritePiece: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "first"))
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if !bytes.Equal(first, data[:6]) {
		t.Fatalf("first file = %v, want %v", first, data[:6])
	}

	second, err := os.ReadFile(filepath.Join(dir, "second"))
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(second[:2], data[6:8]) {
		t.Fatalf("second file prefix = %v, want %v", second[:2], data[6:8])
	}

	got, err := h.ReadPiece(dir, info, 0, 0, 8)
	if err != nil {
		t.Fatalf("ReadPiece: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("ReadPiece round trip = %v, want %v", got, data)
	}
}

func TestPieceWithinSingleFile(t *testing.T) {
	dir := t.TempDir()
	h := Start(Config{MaxOpenFiles: 4})
	defer h.Shutdown()

	info := torrent.Info{
		Files:       []torrent.FileInfo{{Path: "only", Length: 100}},
		PieceLength: 16,
	}

	data := bytes.Repeat([]byte{0x7A}, 16)
	if err := h.WritePiece(dir, info, 2, 0, data); err != nil {
		t.Fatalf("WritePiece: %v", err)
	}

	got, err := h.ReadPiece(dir, info, 2, 0, 16)
	if err != nil {
		t.Fatalf("ReadPiece: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %v, want %v", got, data)
	}
}
