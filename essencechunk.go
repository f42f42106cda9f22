// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "sort"

// EssenceChunk describes one contiguous run of essence bytes written into
// a body partition: where it lives in the file, what range of the
// logical essence stream it covers, and whether the run finished
// cleanly. Grounded on spec.md §4.7's essence-chunk index, which exists
// because a clip's essence is not always written as a single contiguous
// KLV (body partitions interleave essence with filler and, in salvage
// scenarios, may be truncated mid-chunk).
type EssenceChunk struct {
	FilePosition       int64
	StreamOffset        uint64
	Size                uint64
	Complete            bool
	OriginatingPartition uint64
	ElementKey           UL
	BodySID              uint32
}

// EssenceChunkIndex resolves a logical stream offset to the file position
// that holds it, across every chunk discovered for a given body SID.
type EssenceChunkIndex struct {
	chunks []EssenceChunk
}

// NewEssenceChunkIndex returns an empty index.
func NewEssenceChunkIndex() *EssenceChunkIndex { return &EssenceChunkIndex{} }

// Add records one chunk. Chunks may be added out of stream order; Finalise
// sorts them.
func (idx *EssenceChunkIndex) Add(c EssenceChunk) { idx.chunks = append(idx.chunks, c) }

// Finalise sorts chunks by stream offset. When two chunks claim the same
// starting offset (an aborted write followed by a resumed, complete one,
// per spec.md §8's salvage scenario), the later-added complete chunk
// wins the tie and the incomplete one is dropped.
func (idx *EssenceChunkIndex) Finalise() {
	sort.SliceStable(idx.chunks, func(i, j int) bool {
		return idx.chunks[i].StreamOffset < idx.chunks[j].StreamOffset
	})
	out := idx.chunks[:0]
	for _, c := range idx.chunks {
		if n := len(out); n > 0 && out[n-1].StreamOffset == c.StreamOffset {
			if c.Complete && !out[n-1].Complete {
				out[n-1] = c
			}
			continue
		}
		out = append(out, c)
	}
	idx.chunks = out
}

// Resolve maps a logical essence stream offset to the file position that
// holds it, returning false if offset falls outside every known chunk or
// lands inside an incomplete (truncated) one.
func (idx *EssenceChunkIndex) Resolve(offset uint64) (filePos int64, ok bool) {
	i := sort.Search(len(idx.chunks), func(i int) bool {
		return idx.chunks[i].StreamOffset+idx.chunks[i].Size > offset
	})
	if i >= len(idx.chunks) {
		return 0, false
	}
	c := idx.chunks[i]
	if offset < c.StreamOffset || !c.Complete {
		return 0, false
	}
	return c.FilePosition + int64(offset-c.StreamOffset), true
}

// TotalComplete reports the logical length of the longest complete,
// contiguous-from-zero run of essence, i.e. how far a reader may safely
// read after a salvage scan.
func (idx *EssenceChunkIndex) TotalComplete() uint64 {
	var end uint64
	for _, c := range idx.chunks {
		if !c.Complete || c.StreamOffset != end {
			break
		}
		end += c.Size
	}
	return end
}

// Chunks returns the chunks in stream order, after Finalise.
func (idx *EssenceChunkIndex) Chunks() []EssenceChunk { return idx.chunks }
