// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"encoding/binary"
	"testing"
)

func vc2DataUnit(parseCode byte, payload []byte) []byte {
	buf := make([]byte, 13+len(payload))
	copy(buf[:4], vc2ParseInfoPrefix)
	buf[4] = parseCode
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(buf)))
	copy(buf[13:], payload)
	return buf
}

func TestVC2ParseFrameStart(t *testing.T) {
	p := NewVC2Parser()
	if !p.ParseFrameStart(vc2DataUnit(vc2ParseCodeHQPicture, nil)) {
		t.Error("expected a BBCD-prefixed buffer to be recognised as a frame start")
	}
	if p.ParseFrameStart([]byte{0x00, 0x01, 0x02, 0x03}) {
		t.Error("did not expect an arbitrary byte run to look like a VC-2 parse_info prefix")
	}
}

func TestVC2ParseFrameSizeReadsNextParseOffset(t *testing.T) {
	p := NewVC2Parser()
	unit := vc2DataUnit(vc2ParseCodeHQPicture, []byte{0xaa, 0xbb, 0xcc})

	size, ok := p.ParseFrameSize(unit)
	if !ok {
		t.Fatal("expected ParseFrameSize to resolve a size from next_parse_offset")
	}
	if size != len(unit) {
		t.Errorf("size = %d, want %d", size, len(unit))
	}
}

func TestVC2ParseFrameSizeRejectsZeroOffset(t *testing.T) {
	p := NewVC2Parser()
	unit := vc2DataUnit(vc2ParseCodeHQPicture, nil)
	binary.BigEndian.PutUint32(unit[9:13], 0)
	if _, ok := p.ParseFrameSize(unit); ok {
		t.Error("expected a zero next_parse_offset to be rejected")
	}
}

func TestVC2ParseFrameSizeTooShort(t *testing.T) {
	p := NewVC2Parser()
	if _, ok := p.ParseFrameSize(make([]byte, 5)); ok {
		t.Error("expected ParseFrameSize to fail on a buffer shorter than the parse_info header")
	}
}

func TestVC2ParseFrameInfoHQPictureIsKeyFrame(t *testing.T) {
	p := NewVC2Parser()
	unit := vc2DataUnit(vc2ParseCodeHQPicture, []byte{0x01, 0x02})

	info, err := p.ParseFrameInfo(unit)
	if err != nil {
		t.Fatalf("ParseFrameInfo: %v", err)
	}
	if !info.KeyFrame || info.PictureType != PictureI {
		t.Errorf("KeyFrame/PictureType = %v/%v, want true/PictureI", info.KeyFrame, info.PictureType)
	}
}

func TestVC2ParseFrameInfoSequenceHeader(t *testing.T) {
	p := NewVC2Parser()
	unit := vc2DataUnit(vc2ParseCodeSequenceHeader, []byte{0x01, 0x02})

	info, err := p.ParseFrameInfo(unit)
	if err != nil {
		t.Fatalf("ParseFrameInfo: %v", err)
	}
	if !info.SequenceHeaderPresent {
		t.Error("expected SequenceHeaderPresent to be true for a sequence header parse code")
	}
	if info.KeyFrame {
		t.Error("a sequence header data unit is not itself a key frame picture")
	}
}

func TestVC2ParseFrameInfoTooShort(t *testing.T) {
	p := NewVC2Parser()
	if _, err := p.ParseFrameInfo(make([]byte, 2)); err == nil {
		t.Error("expected ParseFrameInfo to fail on a buffer shorter than 5 bytes")
	}
}
