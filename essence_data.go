// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "encoding/binary"

// DataEssenceKind distinguishes the data-track payload families spec.md
// §5 and §7 name alongside the picture/sound codecs: timed text and
// ancillary data, both carried frame-wrapped with an explicit length
// prefix rather than a self-delimiting bitstream syntax.
type DataEssenceKind int

// Data essence kinds.
const (
	DataEssenceTimedText DataEssenceKind = iota
	DataEssenceANC
)

// dataFrameHeaderSize is the explicit big-endian uint32 byte count every
// data-essence frame is prefixed with in this container's mapping.
const dataFrameHeaderSize = 4

// DataParser frames timed-text (TTML) or ANC payloads, each wrapped with
// an explicit length header since neither payload is self-delimiting the
// way a compressed video bitstream is.
type DataParser struct {
	Kind DataEssenceKind
}

// NewDataParser returns a parser for the given data essence kind.
func NewDataParser(kind DataEssenceKind) *DataParser { return &DataParser{Kind: kind} }

// ParseFrameStart reports whether buf holds at least a whole length
// header: any aligned offset begins a length-prefixed frame.
func (p *DataParser) ParseFrameStart(buf []byte) bool { return len(buf) >= dataFrameHeaderSize }

// ParseFrameSize reads the explicit length header.
func (p *DataParser) ParseFrameSize(buf []byte) (int, bool) {
	if len(buf) < dataFrameHeaderSize {
		return 0, false
	}
	size := binary.BigEndian.Uint32(buf[:dataFrameHeaderSize])
	total := int(size) + dataFrameHeaderSize
	if total > len(buf) {
		return 0, false
	}
	return total, true
}

// ParseFrameInfo reports the frame as a key frame: data essence carries
// no temporal prediction.
func (p *DataParser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true}, nil
}

// EncodeDataFrame prepends payload with its explicit length header.
func EncodeDataFrame(payload []byte) []byte {
	out := make([]byte, dataFrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(out[:dataFrameHeaderSize], uint32(len(payload)))
	copy(out[dataFrameHeaderSize:], payload)
	return out
}

// GenericStreamRecord is one entry in a generic-stream index: the
// stream's identity and the byte range of a non-essence resource (TTML
// manifest, XML, or another ancillary document) carried in its own
// partition rather than interleaved frame-by-frame (spec.md §6's
// generic-stream partitions).
type GenericStreamRecord struct {
	StreamID    uint32
	ElementKey  UL
	FilePosition int64
	Size         int64
}
