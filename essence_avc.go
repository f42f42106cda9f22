// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"

	"github.com/icza/bitio"
)

// avcStartCode is the 4-byte Annex B NAL unit start code.
var avcStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// NAL unit types this parser cares about.
const (
	nalAUD  = 9
	nalSPS  = 7
	nalIDR  = 5
	nalSlice = 1
)

// HeaderStripMode controls how an AVCI parser handles the fixed-size
// sequence/picture parameter set header every AVC-Intra frame carries
// (spec.md §5's "four header-handling modes").
type HeaderStripMode int

// Header strip modes.
const (
	// StripFirstOrAll strips the header from every frame written to a
	// track, the first included, and caches the first frame's header;
	// RestoreHeader re-attaches the cached copy on read.
	StripFirstOrAll HeaderStripMode = iota
	// StripFirst keeps the header only on the very first frame.
	StripFirst
	// StripAll keeps the header on every frame (no stripping).
	StripAll
	// StripNoneOrAll keeps the header on the first frame and strips it
	// from each later frame whose header equals the first frame's; a
	// frame with a different header keeps it.
	StripNoneOrAll
)

// avciHeaderSize is the fixed elementary-stream header AVC-Intra 50/100
// profiles prepend to every frame.
const avciHeaderSize = 512

// AVCParser scans an Annex-B AVC/AVCI elementary stream for NAL unit
// boundaries and classifies frames, grounded on the NAL/SPS walking
// style of gortsplib's h264 package bundled with the sound/video stack.
type AVCParser struct {
	StripMode      HeaderStripMode
	cachedHeader   []byte
	frameSeen      bool
}

// NewAVCParser returns a parser configured with the given header strip
// mode.
func NewAVCParser(mode HeaderStripMode) *AVCParser {
	return &AVCParser{StripMode: mode}
}

// ParseFrameStart reports whether buf begins with an Annex B start code.
func (p *AVCParser) ParseFrameStart(buf []byte) bool {
	return bytes.HasPrefix(buf, avcStartCode)
}

// ParseFrameSize scans buf for the next frame boundary: an access unit
// delimiter NAL (00 00 00 01 09 ...) after the first one. It reports
// ok=false when buf holds no such delimiter after its start.
func (p *AVCParser) ParseFrameSize(buf []byte) (int, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	for i := 4; i+4 <= len(buf); i++ {
		if bytes.Equal(buf[i:i+4], avcStartCode) {
			nalType := buf[i+4] & 0x1f
			if nalType == nalAUD {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseFrameInfo walks NAL units in frame, reporting whether an SPS is
// present (sequence-header-present) and whether the frame is IDR
// (key frame).
func (p *AVCParser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	info := FrameInfo{Size: len(frame)}
	for _, nal := range splitAnnexB(frame) {
		if len(nal) == 0 {
			continue
		}
		switch nal[0] & 0x1f {
		case nalSPS:
			info.SequenceHeaderPresent = true
		case nalIDR:
			info.KeyFrame = true
		}
	}
	return info, nil
}

// splitAnnexB splits an Annex B byte stream on 00 00 00 01 start codes,
// returning each NAL unit's payload (start code excluded).
func splitAnnexB(buf []byte) [][]byte {
	var nals [][]byte
	start := -1
	for i := 0; i+4 <= len(buf); i++ {
		if bytes.Equal(buf[i:i+4], avcStartCode) {
			if start >= 0 {
				nals = append(nals, buf[start:i])
			}
			start = i + 4
			i += 3
		}
	}
	if start >= 0 && start <= len(buf) {
		nals = append(nals, buf[start:])
	}
	return nals
}

// StripHeader removes the fixed avciHeaderSize-byte header from frame
// according to p.StripMode, returning the trimmed frame and the header
// bytes removed (nil if none were removed).
func (p *AVCParser) StripHeader(frame []byte) (trimmed, header []byte) {
	if len(frame) < avciHeaderSize {
		return frame, nil
	}
	head := frame[:avciHeaderSize]
	rest := frame[avciHeaderSize:]

	switch p.StripMode {
	case StripAll:
		return frame, nil
	case StripFirst:
		if !p.frameSeen {
			p.frameSeen = true
			p.cachedHeader = append([]byte(nil), head...)
			return frame, nil
		}
		return rest, head
	case StripFirstOrAll:
		if !p.frameSeen {
			p.frameSeen = true
			p.cachedHeader = append([]byte(nil), head...)
			return rest, head
		}
		return rest, head
	case StripNoneOrAll:
		if !p.frameSeen {
			p.frameSeen = true
			p.cachedHeader = append([]byte(nil), head...)
			return frame, nil
		}
		if !bytes.Equal(head, p.cachedHeader) {
			return frame, nil
		}
		return rest, head
	default:
		return frame, nil
	}
}

// RestoreHeader re-attaches the cached header to a frame that had it
// stripped on write, used by a reader reconstructing the elementary
// stream.
func (p *AVCParser) RestoreHeader(frame []byte) []byte {
	if p.cachedHeader == nil {
		return frame
	}
	out := make([]byte, 0, len(p.cachedHeader)+len(frame))
	out = append(out, p.cachedHeader...)
	return append(out, frame...)
}

// profileIDC reads the profile_idc byte from an SPS NAL's payload (byte
// index 1, after the nal_unit_type byte), using bitio the way the
// bundled h264 SPS unmarshaller reads fixed-width fields.
func profileIDC(sps []byte) (uint8, error) {
	if len(sps) < 2 {
		return 0, newErr("profileIDC", KindMalformed, ErrUnexpectedEOF)
	}
	r := bitio.NewReader(bytes.NewReader(sps[1:2]))
	v, err := r.ReadBits(8)
	if err != nil {
		return 0, newErr("profileIDC", KindMalformed, err)
	}
	return uint8(v), nil
}
