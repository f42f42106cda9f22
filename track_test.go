// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

func TestTrackNumberRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   TrackNumber
	}{
		{"picture", TrackNumber{ItemType: ItemTypePicture, ElementCount: 1, ElementType: 0x01, ElementNumber: 1}},
		{"sound", TrackNumber{ItemType: ItemTypeSound, ElementCount: 1, ElementType: 0x10, ElementNumber: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTrackNumber(tt.in.Encode())
			if got != tt.in {
				t.Fatalf("round trip mismatch: got %+v, want %+v", got, tt.in)
			}
		})
	}
}

// TestNTSCSampleSequence exercises spec.md §8 scenario 4: 48kHz audio
// against a 30000/1001 edit rate cycles through {1602,1601,1602,1601,1602}
// summing to 8008 samples over five edit units.
func TestNTSCSampleSequence(t *testing.T) {
	seq := NewNTSCSampleSequence(48000, Rational{Numerator: 30000, Denominator: 1001})

	want := []int{1602, 1601, 1602, 1601, 1602}
	if len(seq.Counts) != len(want) {
		t.Fatalf("cycle length = %d, want %d (%v)", len(seq.Counts), len(want), seq.Counts)
	}
	for i, w := range want {
		if seq.Counts[i] != w {
			t.Errorf("Counts[%d] = %d, want %d", i, seq.Counts[i], w)
		}
	}

	var sum int
	for _, c := range seq.Counts {
		sum += c
	}
	if sum != 8008 {
		t.Errorf("cycle sum = %d, want 8008", sum)
	}

	if got := seq.CumulativeSamples(5); got != 8008 {
		t.Errorf("CumulativeSamples(5) = %d, want 8008", got)
	}
	if got := seq.CumulativeSamples(10); got != 16016 {
		t.Errorf("CumulativeSamples(10) = %d, want 16016 (two full cycles)", got)
	}

	// At() must keep cycling past the first cycle.
	for i := int64(0); i < 15; i++ {
		got := seq.At(i)
		want := want[i%5]
		if got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestPALSampleSequenceIsFlat(t *testing.T) {
	seq := NewPALSampleSequence(1920)
	for i := int64(0); i < 4; i++ {
		if got := seq.At(i); got != 1920 {
			t.Errorf("At(%d) = %d, want 1920", i, got)
		}
	}
	if got := seq.CumulativeSamples(3); got != 5760 {
		t.Errorf("CumulativeSamples(3) = %d, want 5760", got)
	}
}

func TestTrackAdvanceAndSeek(t *testing.T) {
	tr := NewTrack(NewUMID(), 1, "V1", TrackNumber{ItemType: ItemTypePicture, ElementCount: 1, ElementType: 1, ElementNumber: 1}, Rational{25, 1})
	if tr.Position() != 0 {
		t.Fatalf("new track position = %d, want 0", tr.Position())
	}
	tr.Advance(10)
	if tr.Position() != 10 {
		t.Fatalf("position after Advance(10) = %d, want 10", tr.Position())
	}
	tr.SeekTo(3)
	if tr.Position() != 3 {
		t.Fatalf("position after SeekTo(3) = %d, want 3", tr.Position())
	}
	if got := tr.SampleCountAt(0); got != 1 {
		t.Errorf("SampleCountAt with no Samples set = %d, want 1", got)
	}
}
