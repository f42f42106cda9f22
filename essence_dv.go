// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// DVVariant identifies which DV compression family a frame belongs to,
// spec.md §5's enumeration of IEC-25/DV-based-25/DV-50/DV-100 profiles.
type DVVariant int

// DV variants.
const (
	DVUnknown DVVariant = iota
	DVIEC25
	DVBased25
	DV50
	DV100_1080i
	DV100_720p
)

// DV frame sizes in bytes, indexed by (variant, is625line). These are
// fixed per the DV DIF-block specification: a DV frame always contains a
// whole number of 80-byte DIF blocks arranged into sequences, so overall
// frame size is constant for a given variant and line standard.
var dvFrameSizes = map[DVVariant]map[bool]int{
	DVIEC25:     {true: 144000, false: 120000},
	DVBased25:   {true: 144000, false: 120000},
	DV50:        {true: 288000, false: 240000},
	DV100_1080i: {true: 576000, false: 480000},
	DV100_720p:  {false: 240000},
}

// DVParser handles DV elementary-stream frames of one variant and line
// standard, both fixed when the parser is constructed; it does not read
// the APT or 50/60Hz bytes of a frame's DIF header. DV essence has no
// inter-frame prediction, so every frame is a random-access point.
type DVParser struct {
	Variant  DVVariant
	Is625Line bool
}

// NewDVParser returns a parser for the given fixed variant and line
// standard (DV essence descriptors declare these up front; a parser does
// not need to detect them per frame).
func NewDVParser(variant DVVariant, is625line bool) *DVParser {
	return &DVParser{Variant: variant, Is625Line: is625line}
}

// ParseFrameStart reports whether buf begins with a DIF sequence header
// block (the section type, the top 3 bits of byte 0, is 0: the header).
func (p *DVParser) ParseFrameStart(buf []byte) bool {
	if len(buf) < 1 {
		return false
	}
	return buf[0]>>5 == 0 // section type 0 == header, first DIF block of a frame.
}

// ParseFrameSize returns the fixed DV frame size for this parser's
// configured variant and line standard.
func (p *DVParser) ParseFrameSize(buf []byte) (int, bool) {
	sizes, ok := dvFrameSizes[p.Variant]
	if !ok {
		return 0, false
	}
	size, ok := sizes[p.Is625Line]
	if !ok {
		return 0, false
	}
	if len(buf) < size {
		return 0, false
	}
	return size, true
}

// ParseFrameInfo reports a DV frame as always being a key frame: DV has
// no GOP structure, so every edit unit is independently decodable.
func (p *DVParser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true, PictureType: PictureI}, nil
}

// AspectRatio returns the nominal display aspect ratio this DV variant
// and APT flag imply. DV carries a 1-bit 4:3/16:9 flag in its video
// auxiliary data pack; callers that have decoded it pass widescreen
// directly rather than this parser re-deriving it from raw bytes.
func (p *DVParser) AspectRatio(widescreen bool) Rational {
	if widescreen {
		return Rational{Numerator: 16, Denominator: 9}
	}
	return Rational{Numerator: 4, Denominator: 3}
}
