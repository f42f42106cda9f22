// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

func TestIndexFlagsEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		in   IndexFlags
	}{
		{"random access key frame", IndexFlags{RandomAccess: true, SequenceHeaderPresent: true, PictureType: PictureI}},
		{"predicted, no seq header", IndexFlags{RandomAccess: false, SequenceHeaderPresent: false, PictureType: PictureP}},
		{"bidirectional", IndexFlags{RandomAccess: false, SequenceHeaderPresent: false, PictureType: PictureB}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeIndexFlags(tt.in.encode())
			if got != tt.in {
				t.Fatalf("round trip = %+v, want %+v", got, tt.in)
			}
		})
	}
}

// TestVBESegmentLongGOPReorder exercises spec.md §8 scenario 3: a
// 15-frame long-GOP structure where key_frame_offset(i) = -(i mod 15).
func TestVBESegmentLongGOPReorder(t *testing.T) {
	seg := NewVBESegment(Rational{25, 1}, 1, 1, 0)
	for i := int64(0); i < 15; i++ {
		keyOffset := int8(-(i % 15))
		flags := IndexFlags{RandomAccess: i == 0, PictureType: PictureP}
		if i == 0 {
			flags.PictureType = PictureI
		}
		seg.AddEntry(i, 0, keyOffset, flags, uint64(i)*1000)
	}
	if err := seg.Finalise(); err != nil {
		t.Fatalf("Finalise failed: %v", err)
	}
	if seg.Duration() != 15 {
		t.Fatalf("Duration = %d, want 15", seg.Duration())
	}
	for i := int64(0); i < 15; i++ {
		e, ok := seg.Entry(i)
		if !ok {
			t.Fatalf("Entry(%d) not found", i)
		}
		want := int8(-(i % 15))
		if e.KeyFrameOffset != want {
			t.Errorf("Entry(%d).KeyFrameOffset = %d, want %d", i, e.KeyFrameOffset, want)
		}
	}
}

func TestVBESegmentRejectsNonMonotonicStreamOffset(t *testing.T) {
	seg := NewVBESegment(Rational{25, 1}, 1, 1, 0)
	seg.AddEntry(0, 0, 0, IndexFlags{RandomAccess: true}, 1000)
	seg.AddEntry(1, 0, 0, IndexFlags{}, 500) // goes backwards: invalid.
	if err := seg.Finalise(); err == nil {
		t.Fatal("Finalise did not reject non-monotonic stream offsets")
	}
}

func TestVBESegmentRowOverflow(t *testing.T) {
	seg := NewVBESegment(Rational{25, 1}, 1, 1, 0)
	for i := int64(0); i < maxIndexSegmentRows+1; i++ {
		seg.AddEntry(i, 0, 0, IndexFlags{}, uint64(i))
	}
	if err := seg.Finalise(); err == nil {
		t.Fatal("Finalise did not reject a segment exceeding maxIndexSegmentRows")
	}
}

func TestVBESegmentEncodeDecodeRoundTrip(t *testing.T) {
	seg := NewVBESegment(Rational{30000, 1001}, 7, 3, 10)
	seg.AddEntry(10, 1, -2, IndexFlags{RandomAccess: true, PictureType: PictureI}, 1000)
	seg.AddEntry(11, -1, -1, IndexFlags{PictureType: PictureB}, 2000)
	if err := seg.Finalise(); err != nil {
		t.Fatalf("Finalise: %v", err)
	}

	raw := seg.Encode()
	got, err := DecodeVBESegment(raw)
	if err != nil {
		t.Fatalf("DecodeVBESegment: %v", err)
	}
	if got.EditRate != seg.EditRate || got.IndexSID != seg.IndexSID || got.BodySID != seg.BodySID {
		t.Fatalf("segment header mismatch: got %+v", got)
	}
	if got.Duration() != seg.Duration() {
		t.Fatalf("Duration mismatch: got %d, want %d", got.Duration(), seg.Duration())
	}
	for i := int64(10); i < 12; i++ {
		want, _ := seg.Entry(i)
		have, ok := got.Entry(i)
		if !ok {
			t.Fatalf("decoded segment missing entry at %d", i)
		}
		if have.TemporalOffset != want.TemporalOffset || have.KeyFrameOffset != want.KeyFrameOffset ||
			have.Flags != want.Flags || have.StreamOffset != want.StreamOffset {
			t.Errorf("entry %d mismatch: got %+v, want %+v", i, have, want)
		}
	}
}

func TestCBESegmentOffset(t *testing.T) {
	c := &CBESegment{EditRate: Rational{25, 1}, IndexStart: 0, IndexDuration: 100, EditUnitSize: 4096, StartOffset: 512}

	tests := []struct {
		position int64
		want     uint64
		ok       bool
	}{
		{0, 512, true},
		{1, 512 + 4096, true},
		{99, 512 + 4096*99, true},
		{100, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		off, ok := c.Offset(tt.position)
		if ok != tt.ok || (ok && off != tt.want) {
			t.Errorf("Offset(%d) = (%d, %v), want (%d, %v)", tt.position, off, ok, tt.want, tt.ok)
		}
	}
}

func TestCBESegmentEncodeDecodeRoundTrip(t *testing.T) {
	c := &CBESegment{EditRate: Rational{25, 1}, IndexSID: 2, BodySID: 1, IndexStart: 0, IndexDuration: 100, EditUnitSize: 4096, StartOffset: 512}
	got, err := DecodeCBESegment(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCBESegment: %v", err)
	}
	if *got != *c {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}
}

// TestIndexTableResolveAcrossBodyPartitions exercises spec.md §8 scenario
// 6: random-access resolve across 3 body partitions of duration 100 each
// at edit rate 25/1.
func TestIndexTableResolveAcrossBodyPartitions(t *testing.T) {
	table := NewIndexTable()
	table.AddCBESegment(&CBESegment{EditRate: Rational{25, 1}, IndexStart: 0, IndexDuration: 100, EditUnitSize: 4096, StartOffset: 0})
	table.AddCBESegment(&CBESegment{EditRate: Rational{25, 1}, IndexStart: 100, IndexDuration: 100, EditUnitSize: 4096, StartOffset: 500000})
	table.AddCBESegment(&CBESegment{EditRate: Rational{25, 1}, IndexStart: 200, IndexDuration: 100, EditUnitSize: 4096, StartOffset: 1000000})

	tests := []struct {
		position int64
		want     uint64
	}{
		{0, 0},
		{50, 4096 * 50},
		{100, 500000},
		{150, 500000 + 4096*50},
		{299, 1000000 + 4096*99},
	}
	for _, tt := range tests {
		off, _, _, ok := table.Resolve(tt.position)
		if !ok {
			t.Fatalf("Resolve(%d) reported not ok", tt.position)
		}
		if off != tt.want {
			t.Errorf("Resolve(%d) = %d, want %d", tt.position, off, tt.want)
		}
	}
	if _, _, _, ok := table.Resolve(300); ok {
		t.Error("Resolve(300) should be out of range across all 3 partitions")
	}
}
