// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// PCMParser frames uncompressed PCM audio: there is no elementary-stream
// syntax to scan, so frame boundaries come entirely from the track's
// SampleSequence and block alignment (spec.md §5's PCM mapping, §8
// scenario 4's sample-sequence identity).
type PCMParser struct {
	BlockAlign int // bytes per sample frame (channels * bytes_per_sample).
	Samples    SampleSequence
}

// NewPCMParser returns a parser for the given block alignment and
// sample sequence.
func NewPCMParser(blockAlign int, samples SampleSequence) *PCMParser {
	return &PCMParser{BlockAlign: blockAlign, Samples: samples}
}

// FrameSizeAt returns the byte size of the edit unit at position,
// derived from the sample sequence rather than scanned from the stream.
func (p *PCMParser) FrameSizeAt(position int64) int {
	return p.Samples.At(position) * p.BlockAlign
}

// ParseFrameStart always reports true: PCM has no start code, any offset
// aligned to BlockAlign is a valid frame start.
func (p *PCMParser) ParseFrameStart(buf []byte) bool { return true }

// ParseFrameSize is not meaningful for PCM without knowing which edit
// unit position buf begins at; callers must use FrameSizeAt instead.
// It always reports ok=false to make that explicit.
func (p *PCMParser) ParseFrameSize(buf []byte) (int, bool) { return 0, false }

// ParseFrameInfo reports the frame as a key frame: PCM has no temporal
// prediction.
func (p *PCMParser) ParseFrameInfo(frame []byte) (FrameInfo, error) {
	return FrameInfo{Size: len(frame), KeyFrame: true, PictureType: PictureI}, nil
}
