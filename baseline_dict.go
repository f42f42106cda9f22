// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// Baseline standard metadata set keys. All follow the registered local-set
// key family 06.0e.2b.34.02.53.01.01.0d.01.01.01.01.XX.00.00, where XX is
// the class-specific byte; this is the same shape bmx/libMXF's headers
// declare per set (see original_source/deps/libMXFpp/libMXF++/metadata).
var (
	SetInterchangeObject            = setUL(0x00)
	SetPreface                      = setUL(0x2f)
	SetIdentification                = setUL(0x30)
	SetContentStorage                = setUL(0x18)
	SetEssenceContainerData          = setUL(0x23)
	SetGenericPackage                = setUL(0x34)
	SetMaterialPackage               = setUL(0x36)
	SetSourcePackage                 = setUL(0x37)
	SetGenericTrack                  = setUL(0x38)
	SetStaticTrack                   = setUL(0x3a)
	SetTrack                         = setUL(0x3b)
	SetStructuralComponent           = setUL(0x0f)
	SetSequence                      = setUL(0x0f)
	SetSourceClip                    = setUL(0x11)
	SetTimecodeComponent             = setUL(0x14)
	SetDMSegment                     = setUL(0x41)
	SetGenericDescriptor              = setUL(0x24)
	SetFileDescriptor                 = setUL(0x25)
	SetGenericPictureEssenceDescriptor = setUL(0x27)
	SetCDCIEssenceDescriptor           = setUL(0x28)
	SetRGBAEssenceDescriptor           = setUL(0x29)
	SetGenericSoundEssenceDescriptor   = setUL(0x42)
	SetWaveAudioDescriptor             = setUL(0x48)
	SetMPEG2VideoDescriptor            = setUL(0x51)
	SetMultipleDescriptor              = setUL(0x44)
)

// setUL builds a baseline local-set key from its class-specific byte.
func setUL(classByte byte) UL {
	return UL{0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01,
		0x0d, 0x01, 0x01, 0x01, 0x01, classByte, 0x00, 0x00}
}

// itemUL builds a baseline item key: the registered prefix
// 06.0e.2b.34.01.01.01.09.06.01.01.01, the two item-specific bytes at
// positions 12 and 13, and two zero bytes, which keeps every item key
// distinct.
func itemUL(b13, b14 byte) UL {
	return UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x09,
		0x06, 0x01, 0x01, 0x01, b13, b14, 0x00, 0x00}
}

// Baseline item keys referenced directly by the engine (instance UID and
// strong/weak reference fields needed to walk the graph generically);
// the remainder of a real Preface/Package/Track's properties are
// registered via RegisterItem at dictionary-build time and addressed only
// through the typed accessors in metadataset.go.
var (
	ItemInstanceUID = UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01,
		0x01, 0x01, 0x15, 0x02, 0x00, 0x00, 0x00, 0x00}
	ItemGenerationUID = UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x02,
		0x05, 0x20, 0x07, 0x01, 0x01, 0x02, 0x01, 0x00}

	ItemPrefaceContentStorage = itemUL(0x01, 0x01)
	ItemPrefacePrimaryPackage = itemUL(0x01, 0x02)
	ItemPrefaceIdentifications = itemUL(0x01, 0x03)
	ItemPrefaceVersion         = itemUL(0x01, 0x04)
	ItemPrefaceOperationalPattern = itemUL(0x01, 0x05)
	ItemPrefaceEssenceContainers  = itemUL(0x01, 0x06)

	ItemContentStoragePackages        = itemUL(0x02, 0x01)
	ItemContentStorageEssenceContainerData = itemUL(0x02, 0x02)

	ItemPackageUID    = itemUL(0x03, 0x01)
	ItemPackageName   = itemUL(0x03, 0x02)
	ItemPackageTracks = itemUL(0x03, 0x03)

	ItemTrackID       = itemUL(0x04, 0x01)
	ItemTrackNumber   = itemUL(0x04, 0x02)
	ItemTrackName     = itemUL(0x04, 0x03)
	ItemTrackEditRate = itemUL(0x04, 0x04)
	ItemTrackOrigin   = itemUL(0x04, 0x05)
	ItemTrackSequence = itemUL(0x04, 0x06)

	ItemSequenceComponents   = itemUL(0x05, 0x01)
	ItemSequenceDuration     = itemUL(0x05, 0x02)
	ItemSequenceDataDef      = itemUL(0x05, 0x03)

	ItemSourceClipSourcePackageID = itemUL(0x06, 0x01)
	ItemSourceClipSourceTrackID   = itemUL(0x06, 0x02)
	ItemSourceClipStartPosition   = itemUL(0x06, 0x03)

	ItemFileDescriptorLinkedTrackID = itemUL(0x07, 0x01)
	ItemFileDescriptorSampleRate    = itemUL(0x07, 0x02)
	ItemFileDescriptorEssenceContainer = itemUL(0x07, 0x03)
	ItemFileDescriptorCodec         = itemUL(0x07, 0x04)

	ItemPictureDescriptorFrameLayout   = itemUL(0x08, 0x01)
	ItemPictureDescriptorStoredWidth   = itemUL(0x08, 0x02)
	ItemPictureDescriptorStoredHeight  = itemUL(0x08, 0x03)
	ItemPictureDescriptorAspectRatio   = itemUL(0x08, 0x04)

	ItemSoundDescriptorAudioSamplingRate = itemUL(0x09, 0x01)
	ItemSoundDescriptorChannelCount      = itemUL(0x09, 0x02)
	ItemSoundDescriptorQuantizationBits  = itemUL(0x09, 0x03)
)

// RegisterBaselineDataModel populates model with the standard (SMPTE)
// metadata set and item definitions the engine needs to build and walk a
// Preface-rooted graph: Preface, Identification, ContentStorage, packages,
// tracks, sequences, source clips, timecode, and the file-descriptor
// family. Grounded on original_source's libMXF++ metadata/base headers,
// which enumerate exactly this set family.
func RegisterBaselineDataModel(d *DataModel) error {
	sets := []struct {
		key, parent UL
		label       string
	}{
		{SetInterchangeObject, UL{}, "InterchangeObject"},
		{SetPreface, SetInterchangeObject, "Preface"},
		{SetIdentification, SetInterchangeObject, "Identification"},
		{SetContentStorage, SetInterchangeObject, "ContentStorage"},
		{SetEssenceContainerData, SetInterchangeObject, "EssenceContainerData"},
		{SetGenericPackage, SetInterchangeObject, "GenericPackage"},
		{SetMaterialPackage, SetGenericPackage, "MaterialPackage"},
		{SetSourcePackage, SetGenericPackage, "SourcePackage"},
		{SetGenericTrack, SetInterchangeObject, "GenericTrack"},
		{SetStaticTrack, SetGenericTrack, "StaticTrack"},
		{SetTrack, SetGenericTrack, "Track"},
		{SetStructuralComponent, SetInterchangeObject, "StructuralComponent"},
		{SetSourceClip, SetStructuralComponent, "SourceClip"},
		{SetTimecodeComponent, SetStructuralComponent, "TimecodeComponent"},
		{SetDMSegment, SetStructuralComponent, "DMSegment"},
		{SetGenericDescriptor, SetInterchangeObject, "GenericDescriptor"},
		{SetFileDescriptor, SetGenericDescriptor, "FileDescriptor"},
		{SetGenericPictureEssenceDescriptor, SetFileDescriptor, "GenericPictureEssenceDescriptor"},
		{SetCDCIEssenceDescriptor, SetGenericPictureEssenceDescriptor, "CDCIEssenceDescriptor"},
		{SetRGBAEssenceDescriptor, SetGenericPictureEssenceDescriptor, "RGBAEssenceDescriptor"},
		{SetGenericSoundEssenceDescriptor, SetFileDescriptor, "GenericSoundEssenceDescriptor"},
		{SetWaveAudioDescriptor, SetGenericSoundEssenceDescriptor, "WaveAudioDescriptor"},
		{SetMPEG2VideoDescriptor, SetGenericPictureEssenceDescriptor, "MPEG2VideoDescriptor"},
		{SetMultipleDescriptor, SetFileDescriptor, "MultipleDescriptor"},
	}
	for _, s := range sets {
		if err := d.RegisterSet(s.key, s.parent, s.label); err != nil {
			return err
		}
	}

	items := []struct {
		set, key UL
		tag      uint16
		typ      TypeID
		required bool
		label    string
	}{
		{SetInterchangeObject, ItemInstanceUID, 0x3c0a, TypeUUID, true, "InstanceUID"},
		{SetInterchangeObject, ItemGenerationUID, 0x0102, TypeUUID, false, "GenerationUID"},

		{SetPreface, ItemPrefaceContentStorage, 0x3b03, TypeStrongRef, true, "ContentStorage"},
		{SetPreface, ItemPrefacePrimaryPackage, 0x3b08, TypeWeakRef, false, "PrimaryPackage"},
		{SetPreface, ItemPrefaceIdentifications, 0x3b06, TypeStrongRefArray, true, "Identifications"},
		{SetPreface, ItemPrefaceVersion, 0x3b05, TypeUInt16, true, "Version"},
		{SetPreface, ItemPrefaceOperationalPattern, 0x3b09, TypeUL, true, "OperationalPattern"},
		{SetPreface, ItemPrefaceEssenceContainers, 0x3b0a, TypeUInt8Array, true, "EssenceContainers"},

		{SetContentStorage, ItemContentStoragePackages, 0x1901, TypeStrongRefArray, true, "Packages"},
		{SetContentStorage, ItemContentStorageEssenceContainerData, 0x1902, TypeStrongRefArray, false, "EssenceContainerData"},

		{SetGenericPackage, ItemPackageUID, 0x4401, TypeUMID, true, "PackageUID"},
		{SetGenericPackage, ItemPackageName, 0x4402, TypeString, false, "Name"},
		{SetGenericPackage, ItemPackageTracks, 0x4403, TypeStrongRefArray, true, "Tracks"},

		{SetGenericTrack, ItemTrackID, 0x4801, TypeUInt32, true, "TrackID"},
		{SetGenericTrack, ItemTrackNumber, 0x4804, TypeUInt32, true, "TrackNumber"},
		{SetGenericTrack, ItemTrackName, 0x4802, TypeString, false, "TrackName"},
		{SetTrack, ItemTrackEditRate, 0x4b01, TypeRational, true, "EditRate"},
		{SetTrack, ItemTrackOrigin, 0x4b02, TypeInt64, true, "Origin"},
		{SetGenericTrack, ItemTrackSequence, 0x4803, TypeStrongRef, true, "Sequence"},

		{SetSequence, ItemSequenceComponents, 0x1001, TypeStrongRefArray, true, "StructuralComponents"},
		{SetStructuralComponent, ItemSequenceDuration, 0x0202, TypeInt64, false, "Duration"},
		{SetStructuralComponent, ItemSequenceDataDef, 0x0201, TypeUL, true, "DataDefinition"},

		{SetSourceClip, ItemSourceClipSourcePackageID, 0x1101, TypeUMID, true, "SourcePackageID"},
		{SetSourceClip, ItemSourceClipSourceTrackID, 0x1102, TypeUInt32, true, "SourceTrackID"},
		{SetSourceClip, ItemSourceClipStartPosition, 0x1201, TypeInt64, true, "StartPosition"},

		{SetFileDescriptor, ItemFileDescriptorLinkedTrackID, 0x3006, TypeUInt32, false, "LinkedTrackID"},
		{SetFileDescriptor, ItemFileDescriptorSampleRate, 0x3001, TypeRational, true, "SampleRate"},
		{SetFileDescriptor, ItemFileDescriptorEssenceContainer, 0x3004, TypeUL, true, "EssenceContainer"},
		{SetFileDescriptor, ItemFileDescriptorCodec, 0x3005, TypeUL, false, "Codec"},

		{SetGenericPictureEssenceDescriptor, ItemPictureDescriptorFrameLayout, 0x320c, TypeUInt8, true, "FrameLayout"},
		{SetGenericPictureEssenceDescriptor, ItemPictureDescriptorStoredWidth, 0x3203, TypeUInt32, true, "StoredWidth"},
		{SetGenericPictureEssenceDescriptor, ItemPictureDescriptorStoredHeight, 0x3202, TypeUInt32, true, "StoredHeight"},
		{SetGenericPictureEssenceDescriptor, ItemPictureDescriptorAspectRatio, 0x320e, TypeRational, false, "AspectRatio"},

		{SetGenericSoundEssenceDescriptor, ItemSoundDescriptorAudioSamplingRate, 0x3001, TypeRational, true, "AudioSamplingRate"},
		{SetGenericSoundEssenceDescriptor, ItemSoundDescriptorChannelCount, 0x3302, TypeUInt32, true, "ChannelCount"},
		{SetGenericSoundEssenceDescriptor, ItemSoundDescriptorQuantizationBits, 0x3303, TypeUInt32, true, "QuantizationBits"},
	}
	for _, it := range items {
		if err := d.RegisterItem(it.set, it.key, it.tag, it.typ, it.required, it.label); err != nil {
			return err
		}
	}
	return nil
}

// NewBaselineDataModel returns a finalised DataModel with only the
// standard SMPTE dictionary registered.
func NewBaselineDataModel() (*DataModel, error) {
	d := NewDataModel(ProfileBaseline)
	if err := RegisterBaselineDataModel(d); err != nil {
		return nil, err
	}
	if err := d.Finalise(); err != nil {
		return nil, err
	}
	return d, nil
}
