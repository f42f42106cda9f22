// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"io"

	"github.com/saferwall/mxf/internal/log"
)

// indexTableSegmentKey is the well-known key this engine writes
// index-table-segment KLVs under; see clipwriter.go's writeIndexSegments.
var indexTableSegmentKey = UL{0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0d, 0x01, 0x02, 0x01, 0x01, 0x10, 0x01, 0x00}

// essenceElementPrefix is the fixed 12-byte prefix every essence-element
// key shares; only the trailing 4-byte track number varies.
var essenceElementPrefix = [12]byte{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01}

func isEssenceElementKey(k UL) bool {
	for i := 0; i < 12; i++ {
		if k[i] != essenceElementPrefix[i] {
			return false
		}
	}
	return true
}

// TrackInfo describes one track discovered while opening a clip.
type TrackInfo struct {
	TrackID    uint32
	ElementKey UL
	EditRate   Rational
	Descriptor *Set
}

// ClipReader opens a single container file and exposes per-track random
// access, per spec.md §4.9. It does not read a run of several files as
// one sequence.
type ClipReader struct {
	f      File
	model  *DataModel
	header *HeaderMetadata
	logger *log.Helper

	partitions []*PartitionPack

	chunks         map[UL]*EssenceChunkIndex
	elementKeyOrder []UL
	indexTables    map[UL]*IndexTable
	trackInfo      []TrackInfo

	pendingSegments []*VBESegment

	lastPartitionComplete bool
}

// Open scans f from its beginning, building the partition chain, essence
// chunk indexes, and index tables. If the stream ends with an
// incomplete (Open-status) partition, Open still returns a usable
// *ClipReader exposing every preceding complete partition, alongside an
// error wrapping ErrSalvageTruncated (spec.md §8 scenario 5).
func Open(f File, model *DataModel, keep KeepFilter, logger *log.Helper) (*ClipReader, error) {
	cr := &ClipReader{
		f:                     f,
		model:                 model,
		chunks:                make(map[UL]*EssenceChunkIndex),
		indexTables:           make(map[UL]*IndexTable),
		logger:                logger,
		lastPartitionComplete: true,
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, newErr("Open", KindIO, err)
	}

	elementOffsets := make(map[UL]uint64)
	var currentPartition *PartitionPack
	var currentAnchor int64

	// scanErr holds a fatal error hit partway through the scan. The loop
	// always breaks through to the finalisation step below instead of
	// returning directly, so a truncated or malformed tail still leaves
	// cr with every chunk index and track discovered before the break
	// finalised, honouring the salvage contract documented above.
	var scanErr error

scan:
	for {
		anchor, err := f.Tell()
		if err != nil {
			scanErr = newErr("Open", KindIO, err)
			break scan
		}
		t, err := ReadTriple(f)
		if err == io.EOF {
			break scan
		}
		if err != nil {
			cr.lastPartitionComplete = false
			scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
			break scan
		}

		switch {
		case IsFiller(t.Key):
			if _, err := drainValue(t); err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}

		case t.Key.Equal(randomIndexPackKey):
			// The random index pack shares its first 13 key bytes with every
			// partition pack variant (byte 13 distinguishes it, and
			// IsPartitionPackKey rejects it); it is read separately via
			// ReadRandomIndexPack from the file's tail, so skip it here.
			if _, err := drainValue(t); err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}

		case IsPartitionPackKey(t.Key):
			raw, err := drainValue(t)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			kind := PartitionKind(t.Key[13])
			status := PartitionStatus(t.Key[14])
			p, err := decodePartitionPack(kind, status, raw)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			cr.partitions = append(cr.partitions, p)
			cr.lastPartitionComplete = status == StatusClosed || status == StatusClosedComplete
			currentPartition = p
			currentAnchor = anchor

		case IsPrimerPackKey(t.Key):
			raw, err := drainValue(t)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			if cr.header == nil {
				cr.header = NewHeaderMetadata(model)
				cr.header.SetLogger(logger)
			}
			primer, err := ReadPrimerPack(raw)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			cr.header.Primer = primer

		case t.Key.Equal(indexTableSegmentKey):
			raw, err := drainValue(t)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			seg, err := DecodeVBESegment(raw)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			cr.rememberIndexSegment(seg)

		case isEssenceElementKey(t.Key):
			raw, err := drainValue(t)
			if err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
			idx, ok := cr.chunks[t.Key]
			if !ok {
				idx = NewEssenceChunkIndex()
				cr.chunks[t.Key] = idx
				cr.elementKeyOrder = append(cr.elementKeyOrder, t.Key)
			}
			var bodySID uint32
			if currentPartition != nil {
				bodySID = currentPartition.BodySID
			}
			idx.Add(EssenceChunk{
				FilePosition:         anchor,
				StreamOffset:         elementOffsets[t.Key],
				Size:                 uint64(len(raw)),
				Complete:             true,
				OriginatingPartition: uint64(currentAnchor),
				ElementKey:           t.Key,
				BodySID:              bodySID,
			})
			elementOffsets[t.Key]++

		default:
			if cr.header != nil && currentPartition != nil && currentPartition.Kind != PartitionBody {
				if _, err := cr.header.readSet(t.Key, mustDrain(t), keep); err != nil {
					scanErr = err
					break scan
				}
			} else if _, err := drainValue(t); err != nil {
				cr.lastPartitionComplete = false
				scanErr = newErr("Open", KindMalformed, ErrSalvageTruncated)
				break scan
			}
		}
	}

	for _, idx := range cr.chunks {
		idx.Finalise()
	}
	if cr.header != nil {
		if err := cr.header.resolveReferences(); err != nil {
			cr.logger.Warnf("header metadata reference resolution: %v", err)
		}
	}
	cr.buildTrackInfo()

	if scanErr != nil {
		return cr, scanErr
	}
	if !cr.lastPartitionComplete {
		return cr, newErr("Open", KindMalformed, ErrSalvageTruncated)
	}
	return cr, nil
}

func mustDrain(t Triple) []byte {
	b, _ := drainValue(t)
	return b
}

// rememberIndexSegment appends a decoded VBE segment to the pending list
// in discovery order; segments are matched to tracks by that order,
// since this engine writes one segment per track per footer write in
// the same order AddTrack registered them.
func (cr *ClipReader) rememberIndexSegment(seg *VBESegment) {
	cr.pendingSegments = append(cr.pendingSegments, seg)
}

// buildTrackInfo derives the track list from discovered essence element
// keys in first-seen order, pairing pending index segments positionally.
// Discovery order is used rather than ranging over cr.chunks directly
// since Go's map iteration order is randomized and this engine writes
// one index segment per track per footer write in the same order
// AddTrack registered them, which matches each element key's first
// appearance in the body partitions.
func (cr *ClipReader) buildTrackInfo() {
	for i, key := range cr.elementKeyOrder {
		info := TrackInfo{ElementKey: key}
		table := NewIndexTable()
		if i < len(cr.pendingSegments) {
			table.AddVBESegment(cr.pendingSegments[i])
		}
		cr.indexTables[key] = table
		cr.trackInfo = append(cr.trackInfo, info)
	}
}

// Tracks returns every track discovered while opening the clip.
func (cr *ClipReader) Tracks() []TrackInfo { return cr.trackInfo }

// HeaderMetadata returns the header-metadata graph parsed while opening
// the clip, or nil if no primer pack was ever encountered.
func (cr *ClipReader) HeaderMetadata() *HeaderMetadata { return cr.header }

// TrackReader returns a reader positioned at the start of the track
// identified by elementKey.
func (cr *ClipReader) TrackReader(elementKey UL) (*TrackReader, error) {
	chunks, ok := cr.chunks[elementKey]
	if !ok {
		return nil, newErr("TrackReader", KindLogicError, ErrUnknownItem)
	}
	return &TrackReader{
		cr:         cr,
		elementKey: elementKey,
		chunks:     chunks,
		table:      cr.indexTables[elementKey],
	}, nil
}

// TrackReader exposes random access to one track's frames.
type TrackReader struct {
	cr         *ClipReader
	elementKey UL
	chunks     *EssenceChunkIndex
	table      *IndexTable
	position   int64
}

// Duration returns how many complete edit units this track has.
func (t *TrackReader) Duration() int64 { return int64(len(t.chunks.Chunks())) }

// Seek moves the read cursor to position.
func (t *TrackReader) Seek(position int64) error {
	if position < 0 || position > t.Duration() {
		return newErr("Seek", KindLogicError, ErrPositionOutOfRange)
	}
	t.position = position
	return nil
}

// Read returns up to n frames starting at the current position,
// advancing it by the number of frames actually read.
func (t *TrackReader) Read(n int) ([][]byte, error) {
	var out [][]byte
	for i := 0; i < n && t.position < t.Duration(); i++ {
		frame, err := t.readAt(t.position)
		if err != nil {
			return out, err
		}
		out = append(out, frame)
		t.position++
	}
	return out, nil
}

func (t *TrackReader) readAt(position int64) ([]byte, error) {
	chunks := t.chunks.Chunks()
	if position < 0 || position >= int64(len(chunks)) {
		return nil, newErr("readAt", KindLogicError, ErrPositionOutOfRange)
	}
	c := chunks[position]
	if _, err := t.cr.f.Seek(c.FilePosition, io.SeekStart); err != nil {
		return nil, newErr("readAt", KindIO, err)
	}
	triple, err := ReadTriple(t.cr.f)
	if err != nil {
		return nil, newErr("readAt", KindIO, err)
	}
	return drainValue(triple)
}

// IndexEntry returns the VBE index entry for position, if an index
// table was found for this track.
func (t *TrackReader) IndexEntry(position int64) (IndexEntry, bool) {
	if t.table == nil {
		return IndexEntry{}, false
	}
	_, entry, has, ok := t.table.Resolve(position)
	if !ok || !has {
		return IndexEntry{}, false
	}
	return entry, true
}

// Precharge returns the number of edit units before position needed to
// reach its most recent random-access (key) frame, per spec.md §8
// scenario 6.
func (t *TrackReader) Precharge(position int64) int64 {
	entry, ok := t.IndexEntry(position)
	if !ok || entry.Flags.RandomAccess {
		return 0
	}
	return int64(-entry.KeyFrameOffset)
}

// Rollout returns the number of edit units after position needed to
// flush any frames that depend on it (the mirror of Precharge for
// trailing reorder distance).
func (t *TrackReader) Rollout(position int64) int64 {
	entry, ok := t.IndexEntry(position)
	if !ok {
		return 0
	}
	if entry.TemporalOffset > 0 {
		return int64(entry.TemporalOffset)
	}
	return 0
}
