// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

// TestReorderBufferIBBP exercises a classic 4-frame IBBP GOP, pushed in
// decode order (I, P, B, B) and resolved to presentation order (I, B, B,
// P), matching spec.md §8 scenario 3's long-GOP reordering invariant.
func TestReorderBufferIBBP(t *testing.T) {
	rb := NewReorderBuffer()
	rb.Push(FrameInfo{KeyFrame: true, PictureType: PictureI, TemporalReference: 0})  // decode 0
	rb.Push(FrameInfo{KeyFrame: false, PictureType: PictureP, TemporalReference: 3}) // decode 1
	rb.Push(FrameInfo{KeyFrame: false, PictureType: PictureB, TemporalReference: 1}) // decode 2
	rb.Push(FrameInfo{KeyFrame: false, PictureType: PictureB, TemporalReference: 2}) // decode 3

	entries := rb.Resolve()
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}

	want := []struct {
		temporalOffset int8
		keyFrameOffset int8
		randomAccess   bool
	}{
		{0, 0, true},   // presentation 0: I
		{-1, -1, false}, // presentation 1: B (decode 2)
		{-1, -2, false}, // presentation 2: B (decode 3)
		{2, -3, false},  // presentation 3: P (decode 1)
	}
	for i, w := range want {
		e := entries[i]
		if e.TemporalOffset != w.temporalOffset {
			t.Errorf("entry %d TemporalOffset = %d, want %d", i, e.TemporalOffset, w.temporalOffset)
		}
		if e.KeyFrameOffset != w.keyFrameOffset {
			t.Errorf("entry %d KeyFrameOffset = %d, want %d", i, e.KeyFrameOffset, w.keyFrameOffset)
		}
		if e.Flags.RandomAccess != w.randomAccess {
			t.Errorf("entry %d RandomAccess = %v, want %v", i, e.Flags.RandomAccess, w.randomAccess)
		}
	}
}

func TestReorderBufferAllKeyFrames(t *testing.T) {
	rb := NewReorderBuffer()
	for i := 0; i < 3; i++ {
		rb.Push(FrameInfo{KeyFrame: true, PictureType: PictureI, TemporalReference: i})
	}
	entries := rb.Resolve()
	for i, e := range entries {
		if e.TemporalOffset != 0 || e.KeyFrameOffset != 0 || !e.Flags.RandomAccess {
			t.Errorf("entry %d = %+v, want zero offsets and RandomAccess", i, e)
		}
	}
}
