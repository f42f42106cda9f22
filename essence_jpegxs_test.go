// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"encoding/binary"
	"testing"
)

func jxsFrame(payloadSize int) []byte {
	buf := make([]byte, jxsLengthHeaderSize+payloadSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(payloadSize))
	buf[jxsLengthHeaderSize] = jxsSOCMarker[0]
	if payloadSize > 1 {
		buf[jxsLengthHeaderSize+1] = jxsSOCMarker[1]
	}
	return buf
}

func TestJPEGXSParseFrameStart(t *testing.T) {
	p := NewJPEGXSParser()
	if !p.ParseFrameStart(jxsFrame(4)) {
		t.Error("expected a correctly framed buffer to be recognised as a frame start")
	}
	if p.ParseFrameStart(make([]byte, jxsLengthHeaderSize+2)) {
		t.Error("did not expect a zeroed header to look like a JPEG XS SOC marker")
	}
	if p.ParseFrameStart(make([]byte, 2)) {
		t.Error("a buffer shorter than the header+marker should not be a frame start")
	}
}

func TestJPEGXSParseFrameSizeReadsExplicitLength(t *testing.T) {
	p := NewJPEGXSParser()
	frame := jxsFrame(10)

	size, ok := p.ParseFrameSize(frame)
	if !ok {
		t.Fatal("expected ParseFrameSize to resolve a size")
	}
	if size != len(frame) {
		t.Errorf("size = %d, want %d", size, len(frame))
	}
}

func TestJPEGXSParseFrameSizeRejectsZeroLength(t *testing.T) {
	p := NewJPEGXSParser()
	frame := jxsFrame(0)
	if _, ok := p.ParseFrameSize(frame); ok {
		t.Error("expected a zero-length header to be rejected")
	}
}

func TestJPEGXSParseFrameSizeTooShort(t *testing.T) {
	p := NewJPEGXSParser()
	if _, ok := p.ParseFrameSize(make([]byte, 2)); ok {
		t.Error("expected ParseFrameSize to fail on a buffer shorter than the length header")
	}
}

func TestJPEGXSParseFrameInfoAlwaysKeyFrame(t *testing.T) {
	p := NewJPEGXSParser()
	frame := jxsFrame(4)
	info, err := p.ParseFrameInfo(frame)
	if err != nil {
		t.Fatalf("ParseFrameInfo: %v", err)
	}
	if !info.KeyFrame || info.PictureType != PictureI {
		t.Errorf("KeyFrame/PictureType = %v/%v, want true/PictureI", info.KeyFrame, info.PictureType)
	}
}
