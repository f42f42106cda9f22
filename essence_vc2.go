// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "encoding/binary"

// VC-2 (Dirac Pro) parse_info prefix: the 4-byte "BBCD" magic that opens
// the 13-byte parse_info header every VC-2 data unit begins with.
var vc2ParseInfoPrefix = []byte{'B', 'B', 'C', 'D'}

// VC-2 parse codes relevant to frame boundary detection.
const (
	vc2ParseCodeSequenceHeader = 0x00
	vc2ParseCodeEndOfSequence  = 0x10
	vc2ParseCodeLowDelayPicture = 0xc8
	vc2ParseCodeHQPicture       = 0xe8
)

// VC2Parser scans a VC-2 elementary stream of concatenated data units,
// each prefixed with the 13-byte "BBCD" parse_info header: 4-byte magic,
// 1-byte parse code, 4-byte previous parse offset, 4-byte next parse
// offset.
type VC2Parser struct{}

// NewVC2Parser returns a VC-2 parser.
func NewVC2Parser() *VC2Parser { return &VC2Parser{} }

// ParseFrameStart reports whether buf begins with the VC-2 parse_info
// magic.
func (p *VC2Parser) ParseFrameStart(buf []byte) bool {
	return len(buf) >= 4 && string(buf[:4]) == string(vc2ParseInfoPrefix)
}

// ParseFrameSize reads the 4-byte next_parse_offset field to find the
// length of the current data unit, since a VC-2 frame is carried as
// exactly one picture data unit in this container's mapping.
func (p *VC2Parser) ParseFrameSize(buf []byte) (int, bool) {
	if len(buf) < 13 {
		return 0, false
	}
	next := binary.BigEndian.Uint32(buf[9:13])
	if next == 0 || int(next) > len(buf) {
		return 0, false
	}
	return int(next), true
}

// ParseFrameInfo classifies the data unit by its parse code: low-delay
// and high-quality picture data units are both intra-only in VC-2 Pro
// profile, so every picture is a key frame.
func (p *VC2Parser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	if len(frame) < 5 {
		return FrameInfo{}, newErr("ParseFrameInfo", KindMalformed, ErrUnexpectedEOF)
	}
	info := FrameInfo{Size: len(frame)}
	switch frame[4] {
	case vc2ParseCodeSequenceHeader:
		info.SequenceHeaderPresent = true
	case vc2ParseCodeLowDelayPicture, vc2ParseCodeHQPicture:
		info.KeyFrame = true
		info.PictureType = PictureI
	}
	return info, nil
}
