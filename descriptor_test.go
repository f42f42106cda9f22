// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

func TestCDCIPictureDescriptorRoundTrip(t *testing.T) {
	model, err := NewBaselineDataModel()
	if err != nil {
		t.Fatalf("NewBaselineDataModel: %v", err)
	}

	want := PictureDescriptorParams{
		SampleRate:       Rational{25, 1},
		EssenceContainer: UL{0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x02, 0x01, 0x01, 0x00},
		FrameLayout:      FrameLayoutFullFrame,
		StoredWidth:      1920,
		StoredHeight:     1080,
		AspectRatio:      Rational{16, 9},
	}

	set, err := NewCDCIPictureDescriptor(model, want)
	if err != nil {
		t.Fatalf("NewCDCIPictureDescriptor: %v", err)
	}
	if set.SetKey != SetCDCIEssenceDescriptor {
		t.Fatalf("SetKey = %v, want SetCDCIEssenceDescriptor", set.SetKey)
	}

	got, err := DescriptorPictureParams(set)
	if err != nil {
		t.Fatalf("DescriptorPictureParams: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestWaveAudioDescriptorRoundTrip(t *testing.T) {
	model, err := NewBaselineDataModel()
	if err != nil {
		t.Fatalf("NewBaselineDataModel: %v", err)
	}

	want := SoundDescriptorParams{
		SampleRate:        Rational{25, 1},
		EssenceContainer:  UL{0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x02, 0x06, 0x01, 0x00},
		AudioSamplingRate: Rational{48000, 1},
		ChannelCount:      2,
		QuantizationBits:  24,
	}

	set, err := NewWaveAudioDescriptor(model, want)
	if err != nil {
		t.Fatalf("NewWaveAudioDescriptor: %v", err)
	}
	got, err := DescriptorSoundParams(set)
	if err != nil {
		t.Fatalf("DescriptorSoundParams: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestPictureDescriptorOmitsZeroOptionalFields(t *testing.T) {
	model, err := NewBaselineDataModel()
	if err != nil {
		t.Fatalf("NewBaselineDataModel: %v", err)
	}
	p := PictureDescriptorParams{SampleRate: Rational{25, 1}, StoredWidth: 720, StoredHeight: 576}
	set, err := NewCDCIPictureDescriptor(model, p)
	if err != nil {
		t.Fatalf("NewCDCIPictureDescriptor: %v", err)
	}
	if set.Has(ItemFileDescriptorCodec) {
		t.Error("did not expect a null Codec UL to be set")
	}
	if set.Has(ItemPictureDescriptorAspectRatio) {
		t.Error("did not expect a zero AspectRatio to be set")
	}
}
