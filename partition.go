// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"encoding/binary"
	"io"
)

// PartitionKind distinguishes header, body and footer partitions.
type PartitionKind uint8

// Partition kinds, encoded in byte 13 of the partition pack key.
const (
	PartitionHeader PartitionKind = 1
	PartitionBody   PartitionKind = 2
	PartitionFooter PartitionKind = 3
)

// PartitionStatus is the write-progress state of a partition, per spec.md
// §4.5.
type PartitionStatus uint8

// Partition states, encoded in byte 14 of the partition pack key.
const (
	StatusOpen           PartitionStatus = 1
	StatusClosed         PartitionStatus = 2
	StatusOpenComplete   PartitionStatus = 3
	StatusClosedComplete PartitionStatus = 4
)

func (s PartitionStatus) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusClosed:
		return "Closed"
	case StatusOpenComplete:
		return "OpenComplete"
	case StatusClosedComplete:
		return "ClosedComplete"
	default:
		return "Unknown"
	}
}

// partitionKey builds the partition-pack key for a given kind/status pair.
func partitionKey(kind PartitionKind, status PartitionStatus) UL {
	var k UL
	copy(k[:13], partitionPackKeyPrefix[:])
	k[13] = byte(kind)
	k[14] = byte(status)
	return k
}

// PartitionPack is the per-partition header record: spec.md §3.
type PartitionPack struct {
	Kind                PartitionKind
	Status              PartitionStatus
	MajorVersion        uint16
	MinorVersion        uint16
	KAGSize             uint32
	ThisPartition       uint64
	PreviousPartition   uint64
	FooterPartition     uint64
	HeaderByteCount     uint64
	IndexByteCount      uint64
	IndexSID            uint32
	BodyOffset          uint64
	BodySID             uint32
	OperationalPattern  UL
	EssenceContainers   []UL
}

// NewPartitionPack returns a PartitionPack with version 1.2, ready to have
// its placement fields filled in by the caller.
func NewPartitionPack(kind PartitionKind, status PartitionStatus) *PartitionPack {
	return &PartitionPack{
		Kind:         kind,
		Status:       status,
		MajorVersion: 1,
		MinorVersion: 2,
	}
}

// encode renders the partition pack's fixed-layout value bytes.
func (p *PartitionPack) encode() []byte {
	b := make([]byte, 2+2+4+8+8+8+8+8+4+8+4+16+4+4+16*len(p.EssenceContainers))
	o := 0
	putU16 := func(v uint16) { binary.BigEndian.PutUint16(b[o:o+2], v); o += 2 }
	putU32 := func(v uint32) { binary.BigEndian.PutUint32(b[o:o+4], v); o += 4 }
	putU64 := func(v uint64) { binary.BigEndian.PutUint64(b[o:o+8], v); o += 8 }

	putU16(p.MajorVersion)
	putU16(p.MinorVersion)
	putU32(p.KAGSize)
	putU64(p.ThisPartition)
	putU64(p.PreviousPartition)
	putU64(p.FooterPartition)
	putU64(p.HeaderByteCount)
	putU64(p.IndexByteCount)
	putU32(p.IndexSID)
	putU64(p.BodyOffset)
	putU32(p.BodySID)
	copy(b[o:o+16], p.OperationalPattern[:])
	o += 16
	putU32(uint32(len(p.EssenceContainers)))
	putU32(16)
	for _, ul := range p.EssenceContainers {
		copy(b[o:o+16], ul[:])
		o += 16
	}
	return b
}

// decodePartitionPack parses a partition pack's value bytes (the key has
// already identified kind/status).
func decodePartitionPack(kind PartitionKind, status PartitionStatus, raw []byte) (*PartitionPack, error) {
	if len(raw) < 2+2+4+8+8+8+8+8+4+8+4+16+8 {
		return nil, newErr("decodePartitionPack", KindMalformed, ErrUnexpectedEOF)
	}
	p := &PartitionPack{Kind: kind, Status: status}
	o := 0
	getU16 := func() uint16 { v := binary.BigEndian.Uint16(raw[o : o+2]); o += 2; return v }
	getU32 := func() uint32 { v := binary.BigEndian.Uint32(raw[o : o+4]); o += 4; return v }
	getU64 := func() uint64 { v := binary.BigEndian.Uint64(raw[o : o+8]); o += 8; return v }

	p.MajorVersion = getU16()
	p.MinorVersion = getU16()
	p.KAGSize = getU32()
	p.ThisPartition = getU64()
	p.PreviousPartition = getU64()
	p.FooterPartition = getU64()
	p.HeaderByteCount = getU64()
	p.IndexByteCount = getU64()
	p.IndexSID = getU32()
	p.BodyOffset = getU64()
	p.BodySID = getU32()
	p.OperationalPattern = NewUL(raw[o : o+16])
	o += 16
	count := getU32()
	size := getU32()
	if size != 16 {
		return nil, newErr("decodePartitionPack", KindMalformed, ErrMalformedBERLength)
	}
	for i := uint32(0); i < count; i++ {
		if o+16 > len(raw) {
			return nil, newErr("decodePartitionPack", KindMalformed, ErrUnexpectedEOF)
		}
		p.EssenceContainers = append(p.EssenceContainers, NewUL(raw[o:o+16]))
		o += 16
	}
	return p, nil
}

// WritePartitionPack writes p as a KLV at f's current position and returns
// the file offset it was written at, so a later PatchBackPartitionPack
// call can find it again.
func WritePartitionPack(f File, p *PartitionPack) (int64, error) {
	anchor, err := f.Tell()
	if err != nil {
		return 0, newErr("WritePartitionPack", KindIO, err)
	}
	key := partitionKey(p.Kind, p.Status)
	if err := WriteTriple(f, key, p.encode()); err != nil {
		return 0, err
	}
	return anchor, nil
}

// PatchBackPartitionPack rewrites the partition pack already on disk at
// anchor with p's current field values. Requires a seekable File, per
// spec.md §4.5's patch_back operation; the key (kind/status) must not
// change size, so Status transitions here must not alter the KLV's total
// length (they never do: all four statuses share one key shape).
func PatchBackPartitionPack(f File, anchor int64, p *PartitionPack) error {
	if !f.Seekable() {
		return newErr("PatchBackPartitionPack", KindIO, ErrNotSeekable)
	}
	end, err := f.Tell()
	if err != nil {
		return newErr("PatchBackPartitionPack", KindIO, err)
	}
	if _, err := f.Seek(anchor, io.SeekStart); err != nil {
		return newErr("PatchBackPartitionPack", KindIO, err)
	}
	if _, err := WritePartitionPack(f, p); err != nil {
		return err
	}
	if _, err := f.Seek(end, io.SeekStart); err != nil {
		return newErr("PatchBackPartitionPack", KindIO, err)
	}
	return nil
}

// PadToKAG pads f with a filler KLV so that the number of bytes written
// since partitionStart becomes a multiple of kag. kag == 0 disables
// alignment entirely, per spec.md §4.5.
func PadToKAG(f File, partitionStart int64, kag uint32) error {
	if kag == 0 || kag == 1 {
		return nil
	}
	pos, err := f.Tell()
	if err != nil {
		return newErr("PadToKAG", KindIO, err)
	}
	written := pos - partitionStart
	remainder := written % int64(kag)
	if remainder == 0 {
		return nil
	}
	pad := int64(kag) - remainder
	if pad < minFillerSize {
		pad += int64(kag)
	}
	return WriteFiller(f, int(pad))
}

// RandomIndexEntry is one (bodySID, partitionOffset) pair in a random
// index pack.
type RandomIndexEntry struct {
	BodySID         uint32
	PartitionOffset uint64
}

// randomIndexPackKey is the well-known key for the random index pack, the
// optional final KLV in a complete file (spec.md §6).
var randomIndexPackKey = UL{0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0d, 0x01, 0x02, 0x01, 0x01, 0x11, 0x01, 0x00}

// WriteRandomIndexPack writes the random index pack: a sequence of 12-byte
// (bodySID uint32, partitionOffset uint64) entries followed by a trailing
// big-endian uint32 giving the total byte length of the whole KLV
// (key+length+value+trailer), so a reader can find the start of the pack
// by seeking from the end of the file.
func WriteRandomIndexPack(f File, entries []RandomIndexEntry) error {
	body := make([]byte, 12*len(entries))
	for i, e := range entries {
		binary.BigEndian.PutUint32(body[12*i:12*i+4], e.BodySID)
		binary.BigEndian.PutUint64(body[12*i+4:12*i+12], e.PartitionOffset)
	}

	// Key (16) + short-form or long-form BER length + body + trailer(4).
	llen := berLengthSize(uint64(len(body)+4), 0)
	total := 16 + llen + len(body) + 4

	if err := WriteTripleHeader(f, randomIndexPackKey, uint64(len(body)+4), 0); err != nil {
		return err
	}
	if _, err := f.Write(body); err != nil {
		return newErr("WriteRandomIndexPack", KindIO, err)
	}
	trailer := make([]byte, 4)
	binary.BigEndian.PutUint32(trailer, uint32(total))
	if _, err := f.Write(trailer); err != nil {
		return newErr("WriteRandomIndexPack", KindIO, err)
	}
	return nil
}

// ReadRandomIndexPack reads the random index pack located at the very end
// of f. It seeks to the trailing 4-byte length field, derives the pack's
// start offset, and decodes the entries.
func ReadRandomIndexPack(f File) ([]RandomIndexEntry, error) {
	size, err := f.Size()
	if err != nil {
		return nil, newErr("ReadRandomIndexPack", KindIO, err)
	}
	if size < 4 {
		return nil, newErr("ReadRandomIndexPack", KindMalformed, ErrUnexpectedEOF)
	}
	if _, err := f.Seek(size-4, io.SeekStart); err != nil {
		return nil, newErr("ReadRandomIndexPack", KindIO, err)
	}
	var trailer [4]byte
	if _, err := io.ReadFull(f, trailer[:]); err != nil {
		return nil, newErr("ReadRandomIndexPack", KindIO, err)
	}
	total := int64(binary.BigEndian.Uint32(trailer[:]))
	if total <= 0 || total > size {
		return nil, newErr("ReadRandomIndexPack", KindMalformed, ErrMalformedBERLength)
	}

	if _, err := f.Seek(size-total, io.SeekStart); err != nil {
		return nil, newErr("ReadRandomIndexPack", KindIO, err)
	}
	t, err := ReadTriple(f)
	if err != nil {
		return nil, err
	}
	if !t.Key.Equal(randomIndexPackKey) {
		return nil, newErr("ReadRandomIndexPack", KindMalformed, ErrNotAPartitionPack)
	}
	raw, err := drainValue(t)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, newErr("ReadRandomIndexPack", KindMalformed, ErrUnexpectedEOF)
	}
	body := raw[:len(raw)-4]
	var entries []RandomIndexEntry
	for o := 0; o+12 <= len(body); o += 12 {
		entries = append(entries, RandomIndexEntry{
			BodySID:         binary.BigEndian.Uint32(body[o : o+4]),
			PartitionOffset: binary.BigEndian.Uint64(body[o+4 : o+12]),
		})
	}
	return entries, nil
}
