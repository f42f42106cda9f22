// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"encoding/binary"
	"io"
)

// primerPackKey is the well-known key of a primer pack KLV.
var primerPackKey = UL{0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0d, 0x01, 0x02, 0x01, 0x01, 0x05, 0x01, 0x00}

// firstDynamicTag is the conventional starting point for tags the Primer
// allocates itself; any non-reserved value is acceptable per spec.md §4.3,
// but starting above the baseline dictionary's static tags avoids churn
// when a reader also knows the static assignments.
const firstDynamicTag = 0x8000

// PrimerPack is the per-partition local-tag <-> UL mapping, plus the
// allocator for freshly minted tags. Grounded on
// original_source/deps/libMXF/mxf/mxf_primer.h's MXFPrimerPack{nextTag,
// entries}.
type PrimerPack struct {
	tagToUID map[uint16]UL
	uidToTag map[UL]uint16
	nextTag  uint16
}

// NewPrimerPack returns an empty primer with its allocator starting at
// firstDynamicTag.
func NewPrimerPack() *PrimerPack {
	return &PrimerPack{
		tagToUID: make(map[uint16]UL),
		uidToTag: make(map[UL]uint16),
		nextTag:  firstDynamicTag,
	}
}

// Register returns the local tag for uid, assigning a fresh one from the
// allocator if uid has not been seen in this primer before. Tag 0x0000 is
// reserved and never assigned.
func (p *PrimerPack) Register(uid UL) uint16 {
	if tag, ok := p.uidToTag[uid]; ok {
		return tag
	}
	tag := p.allocate()
	p.tagToUID[tag] = uid
	p.uidToTag[uid] = tag
	return tag
}

// RegisterStatic binds uid to an explicit tag, e.g. a well-known baseline
// static local tag carried over unchanged from the dictionary. If tag is
// already bound to a different uid, a fresh dynamic tag is allocated
// instead so the primer stays bijective.
func (p *PrimerPack) RegisterStatic(uid UL, tag uint16) uint16 {
	if existing, ok := p.uidToTag[uid]; ok {
		return existing
	}
	if tag == 0 {
		return p.Register(uid)
	}
	if owner, occupied := p.tagToUID[tag]; occupied && owner != uid {
		return p.Register(uid)
	}
	p.tagToUID[tag] = uid
	p.uidToTag[uid] = tag
	if tag >= p.nextTag {
		p.nextTag = tag + 1
	}
	return tag
}

func (p *PrimerPack) allocate() uint16 {
	for {
		tag := p.nextTag
		p.nextTag++
		if tag == 0 {
			continue // 0x0000 is reserved; also guards wraparound.
		}
		if _, occupied := p.tagToUID[tag]; !occupied {
			return tag
		}
	}
}

// LookupTag returns the tag bound to uid, if any.
func (p *PrimerPack) LookupTag(uid UL) (uint16, bool) {
	tag, ok := p.uidToTag[uid]
	return tag, ok
}

// LookupUID returns the UL bound to tag, if any.
func (p *PrimerPack) LookupUID(tag uint16) (UL, bool) {
	uid, ok := p.tagToUID[tag]
	return uid, ok
}

// Len returns the number of (tag, uid) entries.
func (p *PrimerPack) Len() int { return len(p.tagToUID) }

// WritePrimerPack serialises the primer as a KLV: big-endian entry count
// and entry size (4 + 18 per spec.md §6's array-of-struct convention),
// followed by 18-byte (tag, uid) entries.
func WritePrimerPack(w io.Writer, p *PrimerPack) error {
	var body []byte
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(p.tagToUID)))
	binary.BigEndian.PutUint32(header[4:8], 18)
	body = append(body, header...)

	for tag, uid := range p.tagToUID {
		entry := make([]byte, 18)
		binary.BigEndian.PutUint16(entry[0:2], tag)
		copy(entry[2:], uid[:])
		body = append(body, entry...)
	}

	return WriteTriple(w, primerPackKey, body)
}

// ReadPrimerPack parses a primer pack's value bytes (the key must already
// be known to be primerPackKey; callers typically get there via ReadTriple).
// Duplicate (tag, uid) pairs are tolerated by keeping the first mapping
// seen, per spec.md §4.3.
func ReadPrimerPack(value []byte) (*PrimerPack, error) {
	if len(value) < 8 {
		return nil, newErr("ReadPrimerPack", KindMalformed, ErrUnexpectedEOF)
	}
	count := binary.BigEndian.Uint32(value[0:4])
	entrySize := binary.BigEndian.Uint32(value[4:8])
	if entrySize != 18 {
		return nil, newErr("ReadPrimerPack", KindMalformed, ErrMalformedBERLength)
	}

	p := NewPrimerPack()
	offset := 8
	for i := uint32(0); i < count; i++ {
		if offset+18 > len(value) {
			return nil, newErr("ReadPrimerPack", KindMalformed, ErrUnexpectedEOF)
		}
		tag := binary.BigEndian.Uint16(value[offset : offset+2])
		uid := NewUL(value[offset+2 : offset+18])
		offset += 18

		if _, exists := p.tagToUID[tag]; exists {
			continue // first mapping wins.
		}
		if _, exists := p.uidToTag[uid]; exists {
			continue
		}
		p.tagToUID[tag] = uid
		p.uidToTag[uid] = tag
		if tag >= p.nextTag {
			p.nextTag = tag + 1
		}
	}
	return p, nil
}

// IsPrimerPackKey reports whether key is the primer pack's well-known key.
func IsPrimerPackKey(key UL) bool {
	return key.Equal(primerPackKey)
}
