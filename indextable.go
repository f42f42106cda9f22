// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/icza/bitio"
)

// maxIndexSegmentRows is the maximum number of rows a single VBE segment
// may hold. Finalise rejects a segment with more rows with
// ErrIndexRowOverflow; it does not split the rows into further segments.
const maxIndexSegmentRows = 65536

// PictureType is the 2-bit I/P/B coding type carried in a VBE index
// entry's flags byte.
type PictureType uint8

// Picture coding types.
const (
	PictureUnknown PictureType = 0
	PictureI       PictureType = 1
	PictureP       PictureType = 2
	PictureB       PictureType = 3
)

// IndexFlags is the decoded form of a VBE index entry's flags byte:
// random-access, sequence-header-present, and the 2-bit picture type.
type IndexFlags struct {
	RandomAccess           bool
	SequenceHeaderPresent  bool
	PictureType            PictureType
}

// encode packs the flags into a single byte using bitio, the same
// sub-byte bit-packing library SentryShot's H.264 SPS parser uses for
// header bitstream fields (see DESIGN.md).
func (f IndexFlags) encode() byte {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	w.WriteBool(f.RandomAccess)
	w.WriteBool(f.SequenceHeaderPresent)
	w.WriteBits(uint64(f.PictureType), 2)
	w.WriteBits(0, 4) // reserved, kept zero.
	w.Close()
	if buf.Len() == 0 {
		return 0
	}
	return buf.Bytes()[0]
}

func decodeIndexFlags(b byte) IndexFlags {
	r := bitio.NewReader(bytes.NewReader([]byte{b}))
	randomAccess, _ := r.ReadBool()
	seqHeader, _ := r.ReadBool()
	pictureType, _ := r.ReadBits(2)
	return IndexFlags{
		RandomAccess:          randomAccess,
		SequenceHeaderPresent: seqHeader,
		PictureType:           PictureType(pictureType),
	}
}

// IndexEntry is one VBE row: decode-vs-presentation reordering metadata
// plus the file offset of its edit unit. KeyFrameOffset is always <= 0,
// pointing back to the most recent random-access frame (spec.md §4.6).
type IndexEntry struct {
	Position         int64
	TemporalOffset    int8
	KeyFrameOffset    int8
	Flags             IndexFlags
	StreamOffset      uint64
	SliceOffsets      []uint32 // optional, for sliced codecs.
}

// VBESegment is a variable-bytes-per-edit-unit index table segment: an
// explicit array of entries, used for long-GOP reordering and sparse
// key-frame tables.
type VBESegment struct {
	EditRate     Rational
	IndexSID     uint32
	BodySID      uint32
	IndexStart   int64
	entries      []IndexEntry
}

// NewVBESegment returns an empty VBE segment.
func NewVBESegment(editRate Rational, indexSID, bodySID uint32, indexStart int64) *VBESegment {
	return &VBESegment{EditRate: editRate, IndexSID: indexSID, BodySID: bodySID, IndexStart: indexStart}
}

// AddEntry appends one row. Finalise must be called before querying
// Resolve; Finalise enforces the maxIndexSegmentRows cap.
func (v *VBESegment) AddEntry(position int64, temporalOffset, keyFrameOffset int8, flags IndexFlags, streamOffset uint64) {
	v.entries = append(v.entries, IndexEntry{
		Position:       position,
		TemporalOffset: temporalOffset,
		KeyFrameOffset: keyFrameOffset,
		Flags:          flags,
		StreamOffset:   streamOffset,
	})
}

// Finalise sorts entries by position and validates row count and
// monotonicity of stream offsets (spec.md §8's index-monotonicity
// invariant).
func (v *VBESegment) Finalise() error {
	if len(v.entries) > maxIndexSegmentRows {
		return newErr("VBESegment.Finalise", KindCapacityExceeded, ErrIndexRowOverflow)
	}
	sort.Slice(v.entries, func(i, j int) bool { return v.entries[i].Position < v.entries[j].Position })
	for i := 1; i < len(v.entries); i++ {
		if v.entries[i].StreamOffset <= v.entries[i-1].StreamOffset {
			return newErr("VBESegment.Finalise", KindMalformed, ErrMalformedBERLength)
		}
	}
	return nil
}

// Duration reports how many edit units this segment covers.
func (v *VBESegment) Duration() int64 { return int64(len(v.entries)) }

// Entry returns the entry for position, if present.
func (v *VBESegment) Entry(position int64) (IndexEntry, bool) {
	i := sort.Search(len(v.entries), func(i int) bool { return v.entries[i].Position >= position })
	if i < len(v.entries) && v.entries[i].Position == position {
		return v.entries[i], true
	}
	return IndexEntry{}, false
}

// encodeEntry renders one row in its on-disk shape: a 3-byte temporal
// offset/key-frame-offset/flags header followed by the 8-byte stream
// offset, 11 bytes per row.
func encodeEntry(e IndexEntry) []byte {
	b := make([]byte, 11)
	b[0] = byte(e.TemporalOffset)
	b[1] = byte(e.KeyFrameOffset)
	b[2] = e.Flags.encode()
	binary.BigEndian.PutUint64(b[3:11], e.StreamOffset)
	return b
}

func decodeEntry(position int64, b []byte) IndexEntry {
	return IndexEntry{
		Position:       position,
		TemporalOffset: int8(b[0]),
		KeyFrameOffset: int8(b[1]),
		Flags:          decodeIndexFlags(b[2]),
		StreamOffset:   binary.BigEndian.Uint64(b[3:11]),
	}
}

// Encode renders the segment as an index-table-segment value: edit rate,
// index SID, body SID, index start, duration, then one 11-byte row per
// entry.
func (v *VBESegment) Encode() []byte {
	header := make([]byte, 8+4+4+8+8)
	o := 0
	binary.BigEndian.PutUint32(header[o:o+4], uint32(v.EditRate.Numerator))
	o += 4
	binary.BigEndian.PutUint32(header[o:o+4], v.EditRate.Denominator)
	o += 4
	binary.BigEndian.PutUint32(header[o:o+4], v.IndexSID)
	o += 4
	binary.BigEndian.PutUint32(header[o:o+4], v.BodySID)
	o += 4
	binary.BigEndian.PutUint64(header[o:o+8], uint64(v.IndexStart))
	o += 8
	binary.BigEndian.PutUint64(header[o:o+8], uint64(len(v.entries)))

	out := header
	for _, e := range v.entries {
		out = append(out, encodeEntry(e)...)
	}
	return out
}

// DecodeVBESegment parses the bytes produced by Encode.
func DecodeVBESegment(raw []byte) (*VBESegment, error) {
	if len(raw) < 28 {
		return nil, newErr("DecodeVBESegment", KindMalformed, ErrUnexpectedEOF)
	}
	v := &VBESegment{}
	o := 0
	v.EditRate.Numerator = int32(binary.BigEndian.Uint32(raw[o : o+4]))
	o += 4
	v.EditRate.Denominator = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	v.IndexSID = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	v.BodySID = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	v.IndexStart = int64(binary.BigEndian.Uint64(raw[o : o+8]))
	o += 8
	duration := binary.BigEndian.Uint64(raw[o : o+8])
	o += 8

	for i := uint64(0); i < duration; i++ {
		if o+11 > len(raw) {
			return nil, newErr("DecodeVBESegment", KindMalformed, ErrUnexpectedEOF)
		}
		v.entries = append(v.entries, decodeEntry(v.IndexStart+int64(i), raw[o:o+11]))
		o += 11
	}
	return v, nil
}

// CBESegment is a constant-bytes-per-edit-unit index table segment:
// offset(p) = start_offset + edit_unit_size * (p - index_start).
type CBESegment struct {
	EditRate      Rational
	IndexSID      uint32
	BodySID       uint32
	IndexStart    int64
	IndexDuration int64
	EditUnitSize  uint32
	StartOffset   uint64
}

// Offset computes the file-relative essence offset for position, per
// spec.md §8's CBE invariant. ok is false if position falls outside
// [IndexStart, IndexStart+IndexDuration).
func (c *CBESegment) Offset(position int64) (uint64, bool) {
	if position < c.IndexStart || position >= c.IndexStart+c.IndexDuration {
		return 0, false
	}
	return c.StartOffset + uint64(c.EditUnitSize)*uint64(position-c.IndexStart), true
}

// Encode renders the segment's fixed-layout value bytes.
func (c *CBESegment) Encode() []byte {
	b := make([]byte, 4+4+4+4+8+8+4+8)
	o := 0
	binary.BigEndian.PutUint32(b[o:o+4], uint32(c.EditRate.Numerator))
	o += 4
	binary.BigEndian.PutUint32(b[o:o+4], c.EditRate.Denominator)
	o += 4
	binary.BigEndian.PutUint32(b[o:o+4], c.IndexSID)
	o += 4
	binary.BigEndian.PutUint32(b[o:o+4], c.BodySID)
	o += 4
	binary.BigEndian.PutUint64(b[o:o+8], uint64(c.IndexStart))
	o += 8
	binary.BigEndian.PutUint64(b[o:o+8], uint64(c.IndexDuration))
	o += 8
	binary.BigEndian.PutUint32(b[o:o+4], c.EditUnitSize)
	o += 4
	binary.BigEndian.PutUint64(b[o:o+8], c.StartOffset)
	return b
}

// DecodeCBESegment parses the bytes produced by Encode.
func DecodeCBESegment(raw []byte) (*CBESegment, error) {
	if len(raw) < 44 {
		return nil, newErr("DecodeCBESegment", KindMalformed, ErrUnexpectedEOF)
	}
	c := &CBESegment{}
	o := 0
	c.EditRate.Numerator = int32(binary.BigEndian.Uint32(raw[o : o+4]))
	o += 4
	c.EditRate.Denominator = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	c.IndexSID = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	c.BodySID = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	c.IndexStart = int64(binary.BigEndian.Uint64(raw[o : o+8]))
	o += 8
	c.IndexDuration = int64(binary.BigEndian.Uint64(raw[o : o+8]))
	o += 8
	c.EditUnitSize = binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	c.StartOffset = binary.BigEndian.Uint64(raw[o : o+8])
	return c, nil
}

// IndexTable is the concatenation of every segment (CBE and/or VBE)
// gathered across partitions or the footer, queried by logical position.
type IndexTable struct {
	cbe []*CBESegment
	vbe []*VBESegment
}

// NewIndexTable returns an empty table.
func NewIndexTable() *IndexTable { return &IndexTable{} }

// AddCBESegment appends a CBE segment.
func (t *IndexTable) AddCBESegment(s *CBESegment) { t.cbe = append(t.cbe, s) }

// AddVBESegment appends a VBE segment.
func (t *IndexTable) AddVBESegment(s *VBESegment) { t.vbe = append(t.vbe, s) }

// Resolve performs the position -> (essence offset, entry) lookup,
// trying CBE segments (closed form) before VBE segments (binary search),
// per spec.md §4.6.
func (t *IndexTable) Resolve(position int64) (essenceOffset uint64, entry IndexEntry, hasEntry bool, ok bool) {
	for _, c := range t.cbe {
		if off, ok := c.Offset(position); ok {
			return off, IndexEntry{}, false, true
		}
	}
	for _, v := range t.vbe {
		if e, found := v.Entry(position); found {
			return e.StreamOffset, e, true, true
		}
	}
	return 0, IndexEntry{}, false, false
}
