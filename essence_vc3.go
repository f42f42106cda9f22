// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "encoding/binary"

// VC3/DNxHD frames begin with a fixed 0x00000280 start code followed by
// a compression-ID word identifying the bitrate/profile variant.
var vc3StartCode = []byte{0x00, 0x00, 0x02, 0x80}

// VC3Parser scans VC-3 (DNxHD/DNxHR) elementary-stream frames. Like DV,
// VC-3 is intra-only: every frame is independently decodable, so frame
// size is read directly from the bitstream header rather than located
// by scanning for the next start code.
type VC3Parser struct{}

// NewVC3Parser returns a VC-3 parser.
func NewVC3Parser() *VC3Parser { return &VC3Parser{} }

// ParseFrameStart reports whether buf begins with the VC-3 start code.
func (p *VC3Parser) ParseFrameStart(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return buf[0] == 0 && buf[1] == 0 && buf[2] == 0x02 && buf[3] == 0x80
}

// ParseFrameSize reads the frame byte count from header word at offset
// 0x18, which DNxHD/DNxHR streams carry as a big-endian uint32.
func (p *VC3Parser) ParseFrameSize(buf []byte) (int, bool) {
	const sizeFieldOffset = 0x18
	if len(buf) < sizeFieldOffset+4 {
		return 0, false
	}
	size := binary.BigEndian.Uint32(buf[sizeFieldOffset : sizeFieldOffset+4])
	if size == 0 || int(size) > len(buf) {
		return 0, false
	}
	return int(size), true
}

// ParseFrameInfo reports the frame as a key frame: VC-3 has no temporal
// prediction.
func (p *VC3Parser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true, PictureType: PictureI}, nil
}
