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
	"fmt"
	"path/filepath"

	"github.com/go-synapse/synapse/internal/torrent"
)

// ReadPiece reads length bytes starting at offset within into the piece at
// pieceIndex of info, rooted at dir, splitting the read across constituent
// files as needed. This is the narrow interface through which the
// (out-of-scope) peer-protocol and piece-verification layers are expected
// to reach the cache.
func (h Handle) ReadPiece(dir string, info torrent.Info, pieceIndex int, within int64, length int) ([]byte, error) {
	spans, err := info.FileSpans(pieceIndex, within, length)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, length)
	for _, span := range spans {
		chunk, err := h.ReadRange(filepath.Join(dir, span.Path), nil, span.Offset, span.Length)
		if err != nil {
			return nil, fmt.Errorf("reading piece %d of %s: %w", pieceIndex, span.Path, err)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// WritePiece writes data starting at offset within into the piece at
// pieceIndex of info, rooted at dir, splitting the write across
// constituent files as needed and declaring each file's full length on
// first touch so it is pre-allocated per spec.md §4.1.
func (h Handle) WritePiece(dir string, info torrent.Info, pieceIndex int, within int64, data []byte) error {
	spans, err := info.FileSpans(pieceIndex, within, len(data))
	if err != nil {
		return err
	}

	fileLengths := make(map[string]int64, len(info.Files))
	for _, f := range info.Files {
		fileLengths[f.Path] = f.Length
	}

	consumed := 0
	for _, span := range spans {
		declared := fileLengths[span.Path]
		chunk := data[consumed : consumed+span.Length]
		if err := h.WriteRange(filepath.Join(dir, span.Path), &declared, span.Offset, chunk); err != nil {
			return fmt.Errorf("writing piece %d of %s: %w", pieceIndex, span.Path, err)
		}
		consumed += span.Length
	}
	return nil
}
