// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"

	"github.com/icza/bitio"
)

// MPEG-2 start codes relevant to parsing a long-GOP elementary stream.
const (
	mpeg2SequenceHeaderCode = 0xb3
	mpeg2GOPHeaderCode      = 0xb8
	mpeg2PictureStartCode   = 0x00
)

var mpeg2StartCodePrefix = []byte{0x00, 0x00, 0x01}

// MPEG2PictureType mirrors the 3-bit picture_coding_type field of an
// MPEG-2 picture header.
const (
	mpeg2PictureI = 1
	mpeg2PictureP = 2
	mpeg2PictureB = 3
)

// MPEG2Parser scans a long-GOP MPEG-2 video elementary stream (spec.md
// §5, §8 scenario 3's 15-frame closed-GOP case). Frames arrive from the
// encoder in decode order; ReorderBuffer converts that into the
// presentation-order temporal_offset/key_frame_offset pairs an index
// table needs.
type MPEG2Parser struct {
	closedGOP bool
}

// NewMPEG2Parser returns a parser. closedGOP records whether the stream
// uses closed GOPs (no B-pictures referencing the previous GOP); the
// parser stores it only, and it does not affect frame parsing or
// key_frame_offset. The GOP header's closed_gop bit is not read.
func NewMPEG2Parser(closedGOP bool) *MPEG2Parser {
	return &MPEG2Parser{closedGOP: closedGOP}
}

// ParseFrameStart reports whether buf begins with an MPEG-2 start code.
func (p *MPEG2Parser) ParseFrameStart(buf []byte) bool {
	return bytes.HasPrefix(buf, mpeg2StartCodePrefix)
}

// ParseFrameSize scans for the next picture_start_code after the first,
// marking the end of the current frame's elementary-stream bytes.
func (p *MPEG2Parser) ParseFrameSize(buf []byte) (int, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	for i := 3; i+4 <= len(buf); i++ {
		if bytes.Equal(buf[i:i+3], mpeg2StartCodePrefix) && buf[i+3] == mpeg2PictureStartCode {
			return i, true
		}
	}
	return 0, false
}

// ParseFrameInfo extracts the picture header's temporal_reference and
// picture_coding_type, and reports whether a sequence header (and
// therefore an implicit GOP start) is present in this frame.
func (p *MPEG2Parser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	info := FrameInfo{Size: len(frame)}
	offset := 0
	for offset+4 <= len(frame) {
		if !bytes.Equal(frame[offset:offset+3], mpeg2StartCodePrefix) {
			offset++
			continue
		}
		code := frame[offset+3]
		switch code {
		case mpeg2SequenceHeaderCode:
			info.SequenceHeaderPresent = true
		case mpeg2PictureStartCode:
			if offset+6 > len(frame) {
				return info, newErr("ParseFrameInfo", KindMalformed, ErrUnexpectedEOF)
			}
			ref, pictureType, err := parsePictureHeader(frame[offset+4:])
			if err != nil {
				return info, err
			}
			info.TemporalReference = ref
			switch pictureType {
			case mpeg2PictureI:
				info.PictureType = PictureI
				info.KeyFrame = true
			case mpeg2PictureP:
				info.PictureType = PictureP
			case mpeg2PictureB:
				info.PictureType = PictureB
			}
		}
		offset += 4
	}
	return info, nil
}

// parsePictureHeader reads temporal_reference (10 bits) and
// picture_coding_type (3 bits) from the bytes immediately following a
// picture_start_code, using bitio for the sub-byte field boundaries the
// same way the bundled h264 SPS parser reads Exp-Golomb/fixed fields.
func parsePictureHeader(b []byte) (temporalReference int, pictureType int, err error) {
	if len(b) < 2 {
		return 0, 0, newErr("parsePictureHeader", KindMalformed, ErrUnexpectedEOF)
	}
	r := bitio.NewReader(bytes.NewReader(b))
	ref, err := r.ReadBits(10)
	if err != nil {
		return 0, 0, newErr("parsePictureHeader", KindMalformed, err)
	}
	pt, err := r.ReadBits(3)
	if err != nil {
		return 0, 0, newErr("parsePictureHeader", KindMalformed, err)
	}
	return int(ref), int(pt), nil
}
