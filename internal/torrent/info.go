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

// Package torrent holds the narrow slice of torrent metadata the disk
// worker needs to translate a piece index into one or more on-disk byte
// ranges. Bencode parsing, the peer wire protocol, and piece verification
// are out of scope here; see original_source/src/torrent/mod.rs for the
// fuller shape this is adapted from (its peer/tracker fields are dropped).
package torrent

import "fmt"

// FileInfo describes one constituent file of a (possibly multi-file)
// torrent: its path relative to the download directory and its declared
// length.
type FileInfo struct {
	Path   string
	Length int64
}

// Info is the subset of torrent metadata the disk worker consults: the
// ordered list of files concatenated to form the torrent's logical byte
// stream, and the piece length used to address into that stream.
type Info struct {
	Files       []FileInfo
	PieceLength int64
}

// TotalLength returns the sum of every constituent file's length, mirroring
// Torrent.file_size in original_source/src/torrent/mod.rs.
func (info Info) TotalLength() int64 {
	var total int64
	for _, f := range info.Files {
		total += f.Length
	}
	return total
}

// FileSpan is one contiguous byte range within a single constituent file.
type FileSpan struct {
	Path   string
	Offset int64
	Length int
}

// FileSpans maps [pieceIndex*PieceLength+within, +length) of the torrent's
// logical byte stream onto the constituent files it spans, splitting the
// range at file boundaries when a piece straddles more than one file.
func (info Info) FileSpans(pieceIndex int, within int64, length int) ([]FileSpan, error) {
	if info.PieceLength <= 0 {
		return nil, fmt.Errorf("torrent: non-positive piece length %d", info.PieceLength)
	}
	if pieceIndex < 0 {
		return nil, fmt.Errorf("torrent: negative piece index %d", pieceIndex)
	}

	start := int64(pieceIndex)*info.PieceLength + within
	end := start + int64(length)
	if start < 0 || end > info.TotalLength() {
		return nil, fmt.Errorf("torrent: range [%d, %d) out of bounds (total length %d)", start, end, info.TotalLength())
	}

	var spans []FileSpan
	var fileStart int64
	for _, file := range info.Files {
		fileEnd := fileStart + file.Length

		spanStart := max64(start, fileStart)
		spanEnd := min64(end, fileEnd)
		if spanStart < spanEnd {
			spans = append(spans, FileSpan{
				Path:   file.Path,
				Offset: spanStart - fileStart,
				Length: int(spanEnd - spanStart),
			})
		}

		fileStart = fileEnd
		if fileStart >= end {
			break
		}
	}

	return spans, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
