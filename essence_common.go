// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// FrameInfo is what an essence parser reports about one elementary-stream
// frame: enough for the clip writer to build an index entry without
// understanding the codec itself (spec.md §5's parser/container split).
type FrameInfo struct {
	Size                int
	KeyFrame            bool
	SequenceHeaderPresent bool
	PictureType         PictureType
	TemporalReference   int
}

// Parser is implemented by each essence family's frame scanner. It never
// touches the container: it only looks at elementary-stream bytes.
type Parser interface {
	// ParseFrameStart reports whether buf begins with a valid frame start
	// code for this essence kind.
	ParseFrameStart(buf []byte) bool

	// ParseFrameSize returns the byte length of the complete frame
	// starting at the beginning of buf, or ok=false if buf does not yet
	// hold enough bytes to tell.
	ParseFrameSize(buf []byte) (size int, ok bool)

	// ParseFrameInfo extracts FrameInfo from one complete frame's bytes.
	ParseFrameInfo(frame []byte) (FrameInfo, error)
}

// ReorderBuffer accumulates frames from a parser that delivers them in
// decode order (long-GOP MPEG-2, VC-2 with B-pictures) and releases them
// in presentation order, computing each frame's temporal_offset and
// key_frame_offset as it goes (spec.md §4.6 and §8 scenario 3).
type ReorderBuffer struct {
	pending []reorderedFrame
}

type reorderedFrame struct {
	decodeOrder int
	info        FrameInfo
}

// NewReorderBuffer returns an empty reorder buffer.
func NewReorderBuffer() *ReorderBuffer { return &ReorderBuffer{} }

// Push records a frame as it arrives in decode order.
func (r *ReorderBuffer) Push(info FrameInfo) {
	r.pending = append(r.pending, reorderedFrame{decodeOrder: len(r.pending), info: info})
}

// Resolve computes (temporalOffset, keyFrameOffset) for every pushed
// frame, indexed by presentation order, assuming TemporalReference in
// each FrameInfo gives the frame's presentation position within its GOP
// relative to the GOP's first decoded (I) frame.
func (r *ReorderBuffer) Resolve() []IndexEntry {
	out := make([]IndexEntry, len(r.pending))
	lastKeyPresentation := -1
	for presentationPos, f := range r.presentationOrder() {
		decodePos := f.decodeOrder
		temporalOffset := presentationPos - decodePos
		var keyFrameOffset int
		if f.info.KeyFrame {
			lastKeyPresentation = presentationPos
			keyFrameOffset = 0
		} else if lastKeyPresentation >= 0 {
			keyFrameOffset = lastKeyPresentation - presentationPos
		}
		out[presentationPos] = IndexEntry{
			TemporalOffset: int8(temporalOffset),
			KeyFrameOffset: int8(keyFrameOffset),
			Flags: IndexFlags{
				RandomAccess:          f.info.KeyFrame,
				SequenceHeaderPresent: f.info.SequenceHeaderPresent,
				PictureType:           f.info.PictureType,
			},
		}
	}
	return out
}

// presentationOrder sorts the pushed frames by TemporalReference, the
// decoder's own notion of display order within the GOP.
func (r *ReorderBuffer) presentationOrder() []reorderedFrame {
	out := make([]reorderedFrame, len(r.pending))
	copy(out, r.pending)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].info.TemporalReference < out[j-1].info.TemporalReference; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
