// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// EssenceKind identifies the broad family of essence a descriptor
// describes, used to pick which concrete descriptor Set shape to build.
type EssenceKind int

// Essence kinds.
const (
	EssenceUnknown EssenceKind = iota
	EssenceCDCIPicture
	EssenceRGBAPicture
	EssenceMPEG2LongGOP
	EssenceWaveAudio
)

// FrameLayout mirrors the baseline dictionary's FrameLayout enumeration:
// full frame vs the two field-interleaved layouts.
type FrameLayout uint8

// Frame layouts.
const (
	FrameLayoutFullFrame      FrameLayout = 0
	FrameLayoutSeparateFields FrameLayout = 1
	FrameLayoutMixedFields    FrameLayout = 3
)

// PictureDescriptorParams carries the fields common to every picture
// essence descriptor, independent of which concrete Set shape backs it.
type PictureDescriptorParams struct {
	SampleRate        Rational
	EssenceContainer  UL
	Codec             UL
	FrameLayout       FrameLayout
	StoredWidth       uint32
	StoredHeight      uint32
	AspectRatio       Rational
}

// SoundDescriptorParams carries the fields common to every sound essence
// descriptor.
type SoundDescriptorParams struct {
	SampleRate        Rational
	EssenceContainer  UL
	Codec             UL
	AudioSamplingRate Rational
	ChannelCount      uint32
	QuantizationBits  uint32
}

// NewCDCIPictureDescriptor builds a CDCIEssenceDescriptor Set, used by
// DV, MPEG-2 long-GOP, AVC/AVCI, VC-2 and VC-3/DNxHD essence (spec.md
// §5's 4:2:2/4:2:0 sampled picture families).
func NewCDCIPictureDescriptor(model *DataModel, p PictureDescriptorParams) (*Set, error) {
	return newPictureDescriptor(model, SetCDCIEssenceDescriptor, p)
}

// NewRGBAPictureDescriptor builds an RGBAEssenceDescriptor Set, used by
// JPEG 2000 and JPEG XS essence carried as RGB(A) picture planes.
func NewRGBAPictureDescriptor(model *DataModel, p PictureDescriptorParams) (*Set, error) {
	return newPictureDescriptor(model, SetRGBAEssenceDescriptor, p)
}

// NewMPEG2VideoDescriptor builds an MPEG2VideoDescriptor Set.
func NewMPEG2VideoDescriptor(model *DataModel, p PictureDescriptorParams) (*Set, error) {
	return newPictureDescriptor(model, SetMPEG2VideoDescriptor, p)
}

func newPictureDescriptor(model *DataModel, setKey UL, p PictureDescriptorParams) (*Set, error) {
	s := NewSet(model, setKey)
	if err := s.SetRational(ItemFileDescriptorSampleRate, p.SampleRate); err != nil {
		return nil, err
	}
	if err := s.SetUL(ItemFileDescriptorEssenceContainer, p.EssenceContainer); err != nil {
		return nil, err
	}
	if !p.Codec.IsNull() {
		if err := s.SetUL(ItemFileDescriptorCodec, p.Codec); err != nil {
			return nil, err
		}
	}
	if err := s.SetUInt8(ItemPictureDescriptorFrameLayout, uint8(p.FrameLayout)); err != nil {
		return nil, err
	}
	if err := s.SetUInt32(ItemPictureDescriptorStoredWidth, p.StoredWidth); err != nil {
		return nil, err
	}
	if err := s.SetUInt32(ItemPictureDescriptorStoredHeight, p.StoredHeight); err != nil {
		return nil, err
	}
	if !p.AspectRatio.IsZero() {
		if err := s.SetRational(ItemPictureDescriptorAspectRatio, p.AspectRatio); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewWaveAudioDescriptor builds a WaveAudioDescriptor Set, used by PCM
// essence.
func NewWaveAudioDescriptor(model *DataModel, p SoundDescriptorParams) (*Set, error) {
	s := NewSet(model, SetWaveAudioDescriptor)
	if err := s.SetRational(ItemFileDescriptorSampleRate, p.SampleRate); err != nil {
		return nil, err
	}
	if err := s.SetUL(ItemFileDescriptorEssenceContainer, p.EssenceContainer); err != nil {
		return nil, err
	}
	if !p.Codec.IsNull() {
		if err := s.SetUL(ItemFileDescriptorCodec, p.Codec); err != nil {
			return nil, err
		}
	}
	if err := s.SetRational(ItemSoundDescriptorAudioSamplingRate, p.AudioSamplingRate); err != nil {
		return nil, err
	}
	if err := s.SetUInt32(ItemSoundDescriptorChannelCount, p.ChannelCount); err != nil {
		return nil, err
	}
	if err := s.SetUInt32(ItemSoundDescriptorQuantizationBits, p.QuantizationBits); err != nil {
		return nil, err
	}
	return s, nil
}

// DescriptorPictureParams extracts PictureDescriptorParams back out of a
// CDCI/RGBA/MPEG2Video descriptor Set, the inverse of the constructors
// above, used when a reader opens a clip and needs the track's framing.
func DescriptorPictureParams(s *Set) (PictureDescriptorParams, error) {
	var p PictureDescriptorParams
	var err error
	if p.SampleRate, err = s.GetRational(ItemFileDescriptorSampleRate); err != nil {
		return p, err
	}
	if p.EssenceContainer, err = s.GetUL(ItemFileDescriptorEssenceContainer); err != nil {
		return p, err
	}
	if s.Has(ItemFileDescriptorCodec) {
		p.Codec, _ = s.GetUL(ItemFileDescriptorCodec)
	}
	layout, err := s.GetUInt8(ItemPictureDescriptorFrameLayout)
	if err != nil {
		return p, err
	}
	p.FrameLayout = FrameLayout(layout)
	if p.StoredWidth, err = s.GetUInt32(ItemPictureDescriptorStoredWidth); err != nil {
		return p, err
	}
	if p.StoredHeight, err = s.GetUInt32(ItemPictureDescriptorStoredHeight); err != nil {
		return p, err
	}
	if s.Has(ItemPictureDescriptorAspectRatio) {
		p.AspectRatio, _ = s.GetRational(ItemPictureDescriptorAspectRatio)
	}
	return p, nil
}

// DescriptorSoundParams extracts SoundDescriptorParams back out of a
// WaveAudioDescriptor/GenericSoundEssenceDescriptor Set.
func DescriptorSoundParams(s *Set) (SoundDescriptorParams, error) {
	var p SoundDescriptorParams
	var err error
	if p.SampleRate, err = s.GetRational(ItemFileDescriptorSampleRate); err != nil {
		return p, err
	}
	if p.EssenceContainer, err = s.GetUL(ItemFileDescriptorEssenceContainer); err != nil {
		return p, err
	}
	if s.Has(ItemFileDescriptorCodec) {
		p.Codec, _ = s.GetUL(ItemFileDescriptorCodec)
	}
	if p.AudioSamplingRate, err = s.GetRational(ItemSoundDescriptorAudioSamplingRate); err != nil {
		return p, err
	}
	if p.ChannelCount, err = s.GetUInt32(ItemSoundDescriptorChannelCount); err != nil {
		return p, err
	}
	if p.QuantizationBits, err = s.GetUInt32(ItemSoundDescriptorQuantizationBits); err != nil {
		return p, err
	}
	return p, nil
}
