// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"io"

	"github.com/saferwall/mxf/internal/log"
)

// FooterDuplication controls whether a finalised clip's header metadata
// is re-emitted into the footer partition. Vendor variants disagree on
// when this happens, so the behaviour is an explicit policy rather than
// inferred from file state.
type FooterDuplication int

// Footer duplication policies.
const (
	// FooterDuplicationIfOpenHeader duplicates only when the header
	// partition was left Open (not OpenComplete/Closed) at finalise time,
	// giving a reader a second, trustworthy copy of the metadata. This is
	// the default.
	FooterDuplicationIfOpenHeader FooterDuplication = iota
	FooterDuplicationNever
	FooterDuplicationAlways
)

// WrapMode selects how a track's essence is laid out on the wire.
type WrapMode int

// Wrap modes.
const (
	WrapFrame WrapMode = iota
	WrapClip
)

// ClipWriterOptions configures a ClipWriter. Zero value is a reasonable
// single-file OP-1a-like default.
type ClipWriterOptions struct {
	KAGSize            uint32
	PartitionInterval  int64
	FooterDuplication  FooterDuplication
	OperationalPattern UL
	WriteRandomIndex   bool
	Logger             *log.Helper
}

// TrackHandle is returned by AddTrack and used for all subsequent writes
// to that track.
type TrackHandle struct {
	track      *Track
	parser     Parser
	wrap       WrapMode
	descriptor *Set
	descUID    UUID
	elementKey UL
	clipAnchor int64   // WritePartitionPack-style anchor for clip-wrapped length back-patch.
	clipLength uint64  // bytes written so far, for clip-wrapped tracks.
	clipOpened bool
}

// ClipWriter coordinates N tracks, writing a single-file container:
// header partition, one or more body partitions, and a footer, per
// spec.md §4.8.
type ClipWriter struct {
	f       File
	model   *DataModel
	header  *HeaderMetadata
	preface *Set

	opts ClipWriterOptions

	tracks []*TrackHandle

	bodySIDCounter  uint32
	indexSIDCounter uint32

	headerAnchor int64

	currentBody       *PartitionPack
	currentBodyAnchor int64
	currentBodySID    uint32
	currentIndexSID   uint32
	editUnitsInBody   int64

	position int64

	chunks *EssenceChunkIndex

	randomIndex []RandomIndexEntry
	genericStreams []GenericStreamRecord
	nextStreamID   uint32

	reorder map[uint32]*ReorderBuffer

	logger *log.Helper

	finalised bool
}

// NewClipWriter returns a ClipWriter over f using model for header
// metadata. f must be seekable if opts leaves PartitionInterval > 0 or
// clip-wrapped tracks are used, since both require back-patching.
func NewClipWriter(f File, model *DataModel, opts ClipWriterOptions) *ClipWriter {
	if opts.PartitionInterval == 0 {
		opts.PartitionInterval = 1 << 62 // effectively unbounded: one body partition.
	}
	w := &ClipWriter{
		f:              f,
		model:          model,
		header:         NewHeaderMetadata(model),
		opts:           opts,
		bodySIDCounter: 1,
		indexSIDCounter: 1,
		chunks:         NewEssenceChunkIndex(),
		reorder:        make(map[uint32]*ReorderBuffer),
		logger:         opts.Logger,
	}
	w.header.SetLogger(opts.Logger)
	return w
}

// AddTrack registers a new essence track, constructing its descriptor
// set and attaching it to the header metadata's Preface/ContentStorage
// graph.
func (w *ClipWriter) AddTrack(number TrackNumber, editRate Rational, descriptor *Set, parser Parser, wrap WrapMode) (*TrackHandle, error) {
	if w.preface == nil {
		if err := w.buildPrefaceSkeleton(); err != nil {
			return nil, err
		}
	}
	trackID := uint32(len(w.tracks) + 1)
	track := NewTrack(NewUMID(), trackID, "", number, editRate)

	w.header.AddSet(descriptor)

	h := &TrackHandle{
		track:      track,
		parser:     parser,
		wrap:       wrap,
		descriptor: descriptor,
		descUID:    descriptor.InstanceUID,
		elementKey: essenceElementKey(number),
	}
	w.tracks = append(w.tracks, h)
	w.reorder[trackID] = NewReorderBuffer()
	return h, nil
}

// buildPrefaceSkeleton lazily constructs the minimal Preface ->
// ContentStorage -> SourcePackage object graph the first AddTrack call
// needs to attach descriptors and tracks to.
func (w *ClipWriter) buildPrefaceSkeleton() error {
	preface := NewSet(w.model, SetPreface)
	storage := NewSet(w.model, SetContentStorage)
	pkg := NewSet(w.model, SetSourcePackage)

	if err := preface.SetUInt16(ItemPrefaceVersion, 0x0103); err != nil {
		return err
	}
	if err := preface.SetUL(ItemPrefaceOperationalPattern, w.opts.OperationalPattern); err != nil {
		return err
	}
	if err := preface.SetStrongRef(ItemPrefaceContentStorage, storage.InstanceUID); err != nil {
		return err
	}
	if err := storage.SetRefArray(ItemContentStoragePackages, []UUID{pkg.InstanceUID}); err != nil {
		return err
	}
	if err := pkg.SetUMID(ItemPackageUID, NewUMID()); err != nil {
		return err
	}

	w.header.AddSet(preface)
	w.header.AddSet(storage)
	w.header.AddSet(pkg)
	w.preface = preface
	return nil
}

// StartHeaderPartition writes the provisional header partition: partition
// pack, primer, header metadata, padded to the configured KAG.
func (w *ClipWriter) StartHeaderPartition() error {
	anchor, err := w.f.Tell()
	if err != nil {
		return newErr("StartHeaderPartition", KindIO, err)
	}
	w.headerAnchor = anchor

	p := NewPartitionPack(PartitionHeader, StatusOpen)
	p.MajorVersion, p.MinorVersion = 1, 2
	p.KAGSize = w.opts.KAGSize
	p.ThisPartition = uint64(anchor)
	p.OperationalPattern = w.opts.OperationalPattern

	if _, err := WritePartitionPack(w.f, p); err != nil {
		return err
	}
	if err := w.header.Write(w.f); err != nil {
		return err
	}
	if err := PadToKAG(w.f, anchor, w.opts.KAGSize); err != nil {
		return err
	}

	end, err := w.f.Tell()
	if err != nil {
		return newErr("StartHeaderPartition", KindIO, err)
	}
	p.HeaderByteCount = uint64(end - anchor)
	return PatchBackPartitionPack(w.f, anchor, p)
}

// essenceElementKey builds the well-known essence-element key template
// for a track number: a fixed 12-byte essence-element prefix followed by
// the 4-byte track number.
func essenceElementKey(n TrackNumber) UL {
	var k UL
	copy(k[:12], essenceElementPrefix[:])
	enc := n.Encode()
	copy(k[12:], enc[:])
	return k
}

// OpenBodyPartition closes the current body partition (if one is open)
// and begins a new one with fresh body and index SIDs.
func (w *ClipWriter) OpenBodyPartition() error {
	if err := w.closeCurrentBody(); err != nil {
		return err
	}
	anchor, err := w.f.Tell()
	if err != nil {
		return newErr("OpenBodyPartition", KindIO, err)
	}
	w.currentBodySID = w.bodySIDCounter
	w.currentIndexSID = w.indexSIDCounter
	w.bodySIDCounter++
	w.indexSIDCounter++

	p := NewPartitionPack(PartitionBody, StatusOpen)
	p.KAGSize = w.opts.KAGSize
	p.ThisPartition = uint64(anchor)
	p.PreviousPartition = uint64(w.headerAnchor)
	p.BodySID = w.currentBodySID
	p.IndexSID = w.currentIndexSID
	p.OperationalPattern = w.opts.OperationalPattern

	if _, err := WritePartitionPack(w.f, p); err != nil {
		return err
	}
	w.currentBody = p
	w.currentBodyAnchor = anchor
	w.editUnitsInBody = 0
	w.randomIndex = append(w.randomIndex, RandomIndexEntry{BodySID: p.BodySID, PartitionOffset: uint64(anchor)})
	return nil
}

func (w *ClipWriter) closeCurrentBody() error {
	if w.currentBody == nil {
		return nil
	}
	w.currentBody.Status = StatusClosed
	return PatchBackPartitionPack(w.f, w.currentBodyAnchor, w.currentBody)
}

// WriteFrame writes one frame-wrapped edit unit for h at the writer's
// current position, recording an essence chunk and (for parsers that
// report reordering metadata) a VBE index entry.
func (w *ClipWriter) WriteFrame(h *TrackHandle, frame []byte) error {
	if w.currentBody == nil {
		if err := w.OpenBodyPartition(); err != nil {
			return err
		}
	}
	filePos, err := w.f.Tell()
	if err != nil {
		return newErr("WriteFrame", KindIO, err)
	}
	if err := WriteTriple(w.f, h.elementKey, frame); err != nil {
		return err
	}

	info, err := h.parser.ParseFrameInfo(frame)
	if err != nil {
		return err
	}
	w.chunks.Add(EssenceChunk{
		FilePosition:         filePos,
		StreamOffset:         uint64(h.track.Position()),
		Size:                 uint64(len(frame)),
		Complete:             true,
		OriginatingPartition: w.currentBody.ThisPartition,
		ElementKey:           h.elementKey,
		BodySID:              w.currentBodySID,
	})

	rb := w.reorder[h.track.TrackID]
	rb.Push(info)

	h.track.Advance(1)
	w.editUnitsInBody++
	w.position++

	if w.editUnitsInBody >= w.opts.PartitionInterval {
		return w.OpenBodyPartition()
	}
	return nil
}

// WriteClipWrapped appends data to h's single clip-wrapped essence
// element, opening the element with a provisional long-form length on
// the first call. Finalise back-patches the true length.
func (w *ClipWriter) WriteClipWrapped(h *TrackHandle, data []byte) error {
	if w.currentBody == nil {
		if err := w.OpenBodyPartition(); err != nil {
			return err
		}
	}
	if !h.clipOpened {
		anchor, err := w.f.Tell()
		if err != nil {
			return newErr("WriteClipWrapped", KindIO, err)
		}
		h.clipAnchor = anchor
		if !w.f.Seekable() {
			return newErr("WriteClipWrapped", KindIO, ErrNotSeekable)
		}
		if err := WriteTripleHeader(w.f, h.elementKey, 0, 9); err != nil {
			return err
		}
		h.clipOpened = true
	}
	if _, err := w.f.Write(data); err != nil {
		return newErr("WriteClipWrapped", KindIO, err)
	}
	h.clipLength += uint64(len(data))
	return nil
}

// closeClipWrappedElements back-patches every opened clip-wrapped
// element's final length.
func (w *ClipWriter) closeClipWrappedElements() error {
	if !w.f.Seekable() {
		return nil
	}
	end, err := w.f.Tell()
	if err != nil {
		return newErr("closeClipWrappedElements", KindIO, err)
	}
	for _, h := range w.tracks {
		if !h.clipOpened {
			continue
		}
		if _, err := w.f.Seek(h.clipAnchor, io.SeekStart); err != nil {
			return newErr("closeClipWrappedElements", KindIO, err)
		}
		if err := WriteTripleHeader(w.f, h.elementKey, h.clipLength, 9); err != nil {
			return err
		}
	}
	_, err = w.f.Seek(end, io.SeekStart)
	if err != nil {
		return newErr("closeClipWrappedElements", KindIO, err)
	}
	return nil
}

// WriteGenericStream writes payload as its own generic-stream KLV,
// recording it for the reader's generic-stream index (spec.md §4.8's
// non-essence resource path for timed-text/ANC/XML payloads).
func (w *ClipWriter) WriteGenericStream(key UL, payload []byte) (GenericStreamRecord, error) {
	pos, err := w.f.Tell()
	if err != nil {
		return GenericStreamRecord{}, newErr("WriteGenericStream", KindIO, err)
	}
	if err := WriteTriple(w.f, key, payload); err != nil {
		return GenericStreamRecord{}, err
	}
	rec := GenericStreamRecord{
		StreamID:     w.nextStreamID,
		ElementKey:   key,
		FilePosition: pos,
		Size:         int64(len(payload)),
	}
	w.nextStreamID++
	w.genericStreams = append(w.genericStreams, rec)
	return rec, nil
}

// Finalise writes the footer partition (optionally duplicating header
// metadata per the configured policy), back-patches the header
// partition, optionally writes the random index pack, and marks every
// partition Closed/ClosedComplete.
func (w *ClipWriter) Finalise() error {
	if w.finalised {
		return newErr("Finalise", KindLogicError, ErrAlreadyFinalised)
	}
	if err := w.closeClipWrappedElements(); err != nil {
		return err
	}
	if err := w.closeCurrentBody(); err != nil {
		return err
	}
	if err := w.writeIndexSegments(); err != nil {
		return err
	}

	footerAnchor, err := w.f.Tell()
	if err != nil {
		return newErr("Finalise", KindIO, err)
	}
	footer := NewPartitionPack(PartitionFooter, StatusClosedComplete)
	footer.KAGSize = w.opts.KAGSize
	footer.ThisPartition = uint64(footerAnchor)
	footer.PreviousPartition = w.lastPartitionOffset()
	footer.FooterPartition = uint64(footerAnchor)
	footer.OperationalPattern = w.opts.OperationalPattern

	if _, err := WritePartitionPack(w.f, footer); err != nil {
		return err
	}
	if w.shouldDuplicateHeader() {
		if err := w.header.Write(w.f); err != nil {
			return err
		}
	}

	if w.opts.WriteRandomIndex {
		if err := WriteRandomIndexPack(w.f, w.randomIndex); err != nil {
			return err
		}
	}

	if err := w.patchHeaderFooterOffset(footerAnchor); err != nil {
		return err
	}

	w.finalised = true
	return nil
}

func (w *ClipWriter) lastPartitionOffset() uint64 {
	if w.currentBody != nil {
		return w.currentBody.ThisPartition
	}
	return uint64(w.headerAnchor)
}

func (w *ClipWriter) shouldDuplicateHeader() bool {
	switch w.opts.FooterDuplication {
	case FooterDuplicationAlways:
		return true
	case FooterDuplicationNever:
		return false
	default:
		return true // header partition in this single-pass writer is always Open until patched below.
	}
}

// patchHeaderFooterOffset rewrites the header partition with its final
// footer_partition offset and Closed(Complete) status.
func (w *ClipWriter) patchHeaderFooterOffset(footerAnchor int64) error {
	if !w.f.Seekable() {
		return nil
	}
	p := NewPartitionPack(PartitionHeader, StatusClosedComplete)
	p.KAGSize = w.opts.KAGSize
	p.ThisPartition = uint64(w.headerAnchor)
	p.FooterPartition = uint64(footerAnchor)
	p.OperationalPattern = w.opts.OperationalPattern
	return PatchBackPartitionPack(w.f, w.headerAnchor, p)
}

// writeIndexSegments converts each track's ReorderBuffer into a VBE
// segment and writes it as an index-table-segment KLV. It writes a VBE
// segment also for parsers with a constant frame size; it never writes
// a CBE segment.
func (w *ClipWriter) writeIndexSegments() error {
	for _, h := range w.tracks {
		rb := w.reorder[h.track.TrackID]
		entries := rb.Resolve()
		if len(entries) == 0 {
			continue
		}
		seg := NewVBESegment(h.track.EditRate, w.currentIndexSID, w.currentBodySID, 0)
		for i, e := range entries {
			chunk, ok := w.findChunkForTrack(h, int64(i))
			var streamOffset uint64
			if ok {
				streamOffset = uint64(chunk.FilePosition)
			}
			seg.AddEntry(int64(i), e.TemporalOffset, e.KeyFrameOffset, e.Flags, streamOffset)
		}
		if err := seg.Finalise(); err != nil {
			return err
		}
		if err := WriteTriple(w.f, indexTableSegmentKey, seg.Encode()); err != nil {
			return err
		}
	}
	return nil
}

func (w *ClipWriter) findChunkForTrack(h *TrackHandle, position int64) (EssenceChunk, bool) {
	for _, c := range w.chunks.Chunks() {
		if c.ElementKey == h.elementKey && c.StreamOffset == uint64(position) {
			return c, true
		}
	}
	return EssenceChunk{}, false
}
