// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDVParserFixedFrameSizes(t *testing.T) {
	tests := []struct {
		name      string
		variant   DVVariant
		is625line bool
		want      int
	}{
		{"IEC-25 625-line", DVIEC25, true, 144000},
		{"IEC-25 525-line", DVIEC25, false, 120000},
		{"DV50 625-line", DV50, true, 288000},
		{"DV100 1080i 525-line", DV100_1080i, false, 480000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewDVParser(tt.variant, tt.is625line)
			buf := make([]byte, tt.want)
			size, ok := p.ParseFrameSize(buf)
			if !ok {
				t.Fatalf("ParseFrameSize reported not ok")
			}
			if size != tt.want {
				t.Errorf("size = %d, want %d", size, tt.want)
			}
			info, err := p.ParseFrameInfo(buf)
			if err != nil {
				t.Fatalf("ParseFrameInfo: %v", err)
			}
			if !info.KeyFrame {
				t.Error("DV frames must always report KeyFrame=true")
			}
		})
	}
}

func TestDVParserStartCodeDetection(t *testing.T) {
	p := NewDVParser(DVIEC25, true)
	if !p.ParseFrameStart([]byte{0x1f, 0x00}) {
		t.Error("expected a header-section DIF block (section type bits 0) to be recognised")
	}
	if p.ParseFrameStart([]byte{0xff}) {
		t.Error("did not expect a non-header section byte to be recognised as a frame start")
	}
}

func TestDVParserAspectRatio(t *testing.T) {
	p := NewDVParser(DVIEC25, true)
	if got := p.AspectRatio(false); got != (Rational{4, 3}) {
		t.Errorf("4:3 aspect ratio = %+v, want {4 3}", got)
	}
	if got := p.AspectRatio(true); got != (Rational{16, 9}) {
		t.Errorf("16:9 aspect ratio = %+v, want {16 9}", got)
	}
}

func vc2DataUnit(parseCode byte, payloadLen int) []byte {
	buf := make([]byte, 13+payloadLen)
	copy(buf[0:4], vc2ParseInfoPrefix)
	buf[4] = parseCode
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(buf)))
	return buf
}

func TestVC2ParserSequenceHeaderAndPicture(t *testing.T) {
	p := NewVC2Parser()

	seq := vc2DataUnit(vc2ParseCodeSequenceHeader, 20)
	if !p.ParseFrameStart(seq) {
		t.Fatal("expected the BBCD magic to be recognised")
	}
	size, ok := p.ParseFrameSize(seq)
	if !ok || size != len(seq) {
		t.Fatalf("ParseFrameSize = (%d, %v), want (%d, true)", size, ok, len(seq))
	}
	info, err := p.ParseFrameInfo(seq)
	if err != nil {
		t.Fatalf("ParseFrameInfo: %v", err)
	}
	if !info.SequenceHeaderPresent {
		t.Error("expected SequenceHeaderPresent on a sequence header data unit")
	}

	pic := vc2DataUnit(vc2ParseCodeHQPicture, 200)
	info, err = p.ParseFrameInfo(pic)
	if err != nil {
		t.Fatalf("ParseFrameInfo: %v", err)
	}
	if !info.KeyFrame || info.PictureType != PictureI {
		t.Errorf("HQ picture info = %+v, want KeyFrame=true PictureType=PictureI", info)
	}
}

func TestVC3ParserFrameSize(t *testing.T) {
	p := NewVC3Parser()
	buf := make([]byte, 0x18+4+100)
	copy(buf[0:4], vc3StartCode)
	binary.BigEndian.PutUint32(buf[0x18:0x1c], uint32(len(buf)))

	if !p.ParseFrameStart(buf) {
		t.Fatal("expected the VC-3 start code to be recognised")
	}
	size, ok := p.ParseFrameSize(buf)
	if !ok || size != len(buf) {
		t.Fatalf("ParseFrameSize = (%d, %v), want (%d, true)", size, ok, len(buf))
	}
	info, _ := p.ParseFrameInfo(buf)
	if !info.KeyFrame {
		t.Error("VC-3 frames must always report KeyFrame=true")
	}
}

func TestJPEG2000ParserFindsEOC(t *testing.T) {
	p := NewJPEG2000Parser()
	frame := append(append(append([]byte{}, jp2SOCMarker...), bytes.Repeat([]byte{0x42}, 50)...), jp2EOCMarker...)
	if !p.ParseFrameStart(frame) {
		t.Fatal("expected the SOC marker to be recognised")
	}
	size, ok := p.ParseFrameSize(frame)
	if !ok || size != len(frame) {
		t.Fatalf("ParseFrameSize = (%d, %v), want (%d, true)", size, ok, len(frame))
	}
}

func TestJPEGXSParserExplicitLength(t *testing.T) {
	p := NewJPEGXSParser()
	payload := bytes.Repeat([]byte{0x11}, 100)
	frame := make([]byte, jxsLengthHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(payload)))
	copy(frame[jxsLengthHeaderSize:jxsLengthHeaderSize+2], jxsSOCMarker)
	copy(frame[jxsLengthHeaderSize:], payload)
	copy(frame[jxsLengthHeaderSize:jxsLengthHeaderSize+2], jxsSOCMarker)

	if !p.ParseFrameStart(frame) {
		t.Fatal("expected the JPEG XS SOC marker to be recognised at the expected offset")
	}
	size, ok := p.ParseFrameSize(frame)
	if !ok || size != len(frame) {
		t.Fatalf("ParseFrameSize = (%d, %v), want (%d, true)", size, ok, len(frame))
	}
}

func TestPCMParserFrameSizeFollowsSampleSequence(t *testing.T) {
	seq := NewNTSCSampleSequence(48000, Rational{30000, 1001})
	blockAlign := 4 // stereo, 16-bit.
	p := NewPCMParser(blockAlign, seq)

	for i := int64(0); i < 5; i++ {
		want := seq.At(i) * blockAlign
		if got := p.FrameSizeAt(i); got != want {
			t.Errorf("FrameSizeAt(%d) = %d, want %d", i, got, want)
		}
	}
	if !p.ParseFrameStart(nil) {
		t.Error("PCM ParseFrameStart should always report true")
	}
	if _, ok := p.ParseFrameSize(nil); ok {
		t.Error("PCM ParseFrameSize should always report ok=false")
	}
}

func TestDataParserLengthPrefixRoundTrip(t *testing.T) {
	p := NewDataParser(DataEssenceTimedText)
	payload := []byte("<tt>hello</tt>")
	frame := EncodeDataFrame(payload)

	if !p.ParseFrameStart(frame) {
		t.Fatal("expected ParseFrameStart to report true for a length-prefixed frame")
	}
	size, ok := p.ParseFrameSize(frame)
	if !ok || size != len(frame) {
		t.Fatalf("ParseFrameSize = (%d, %v), want (%d, true)", size, ok, len(frame))
	}
	if !bytes.Equal(frame[dataFrameHeaderSize:], payload) {
		t.Error("EncodeDataFrame did not preserve the payload after its header")
	}
}
