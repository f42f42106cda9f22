// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "encoding/binary"

// JPEG XS codestreams begin with a capabilities marker segment whose
// first two bytes are the 0xff10 SOC-equivalent marker.
var jxsSOCMarker = []byte{0xff, 0x10}

// JPEG XS picture length headers carry an explicit big-endian byte count
// in the bundled MXF mapping's fixed 6-byte picture header, unlike raw
// JPEG XS codestreams which are self-delimiting only via marker scanning;
// this parser uses the explicit length since it is always present on
// essence produced by this container.
const jxsLengthHeaderSize = 6

// JPEGXSParser scans length-prefixed JPEG XS frames. Like JPEG 2000,
// every frame is intra-only.
type JPEGXSParser struct{}

// NewJPEGXSParser returns a JPEG XS parser.
func NewJPEGXSParser() *JPEGXSParser { return &JPEGXSParser{} }

// ParseFrameStart reports whether buf begins with a JPEG XS frame
// header.
func (p *JPEGXSParser) ParseFrameStart(buf []byte) bool {
	return len(buf) >= jxsLengthHeaderSize+2 &&
		buf[jxsLengthHeaderSize] == jxsSOCMarker[0] && buf[jxsLengthHeaderSize+1] == jxsSOCMarker[1]
}

// ParseFrameSize reads the explicit big-endian length header.
func (p *JPEGXSParser) ParseFrameSize(buf []byte) (int, bool) {
	if len(buf) < jxsLengthHeaderSize {
		return 0, false
	}
	size := binary.BigEndian.Uint32(buf[0:4])
	if size == 0 || int(size)+jxsLengthHeaderSize > len(buf) {
		return 0, false
	}
	return int(size) + jxsLengthHeaderSize, true
}

// ParseFrameInfo reports the frame as a key frame.
func (p *JPEGXSParser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true, PictureType: PictureI}, nil
}
