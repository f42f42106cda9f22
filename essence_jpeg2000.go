// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "bytes"

// JPEG 2000 codestream markers relevant to frame boundary detection.
var (
	jp2SOCMarker = []byte{0xff, 0x4f} // start of codestream.
	jp2EOCMarker = []byte{0xff, 0xd9} // end of codestream.
)

// JPEG2000Parser scans a sequence of concatenated JPEG 2000 codestreams
// (one per frame), each framed between SOC and EOC markers. Every
// codestream is independently decodable, so every frame is a key frame.
type JPEG2000Parser struct{}

// NewJPEG2000Parser returns a JPEG 2000 parser.
func NewJPEG2000Parser() *JPEG2000Parser { return &JPEG2000Parser{} }

// ParseFrameStart reports whether buf begins with the SOC marker.
func (p *JPEG2000Parser) ParseFrameStart(buf []byte) bool {
	return bytes.HasPrefix(buf, jp2SOCMarker)
}

// ParseFrameSize scans for the EOC marker ending the current codestream.
func (p *JPEG2000Parser) ParseFrameSize(buf []byte) (int, bool) {
	i := bytes.Index(buf, jp2EOCMarker)
	if i < 0 {
		return 0, false
	}
	return i + len(jp2EOCMarker), true
}

// ParseFrameInfo reports the frame as a key frame.
func (p *JPEG2000Parser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true, PictureType: PictureI}, nil
}
