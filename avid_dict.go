// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// Avid-extended vendor sets. Grounded on
// original_source/deps/libMXFpp/libMXF++/AvidHeaderMetadata.cpp and
// extensions/TaggedValue.h: Avid MXF variants attach a Dictionary set to
// Preface and hang name/value "tagged value" sets off packages and tracks,
// outside the standard SMPTE graph.
var (
	SetTaggedValue = avidSetUL(0x01)
	SetDictionary  = avidSetUL(0x02)

	ItemTaggedValueName  = avidItemUL(0x01)
	ItemTaggedValueValue = avidItemUL(0x02)

	ItemPrefaceDictionary = avidItemUL(0x03)
	ItemPackageTaggedValues = avidItemUL(0x04)
)

// avidSetUL mints a key in Avid's vendor-registered label space, which
// reuses the standard local-set family but with a vendor discriminator
// byte so it never collides with a baseline SMPTE set.
func avidSetUL(classByte byte) UL {
	return UL{0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01,
		0x0d, 0x01, 0x04, 0x01, 0x02, classByte, 0x00, 0x00}
}

func avidItemUL(classByte byte) UL {
	return UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x0a,
		0x0e, 0x01, 0x01, 0x01, classByte, 0x00, 0x00, 0x00}
}

// RegisterAvidExtendedDataModel registers the baseline dictionary plus the
// Avid vendor sets (TaggedValue, Dictionary). Under ProfileAvidExtended
// these keys are first-class (spec.md §9 Open Question default); under
// ProfileBaseline, a model built without this call treats the same keys as
// dark sets, preserved but not interpreted.
func RegisterAvidExtendedDataModel(d *DataModel) error {
	if err := RegisterBaselineDataModel(d); err != nil {
		return err
	}

	sets := []struct {
		key, parent UL
		label       string
	}{
		{SetTaggedValue, SetInterchangeObject, "TaggedValue"},
		{SetDictionary, SetInterchangeObject, "Dictionary"},
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
		{SetTaggedValue, ItemTaggedValueName, 0x0101, TypeString, true, "Name"},
		{SetTaggedValue, ItemTaggedValueValue, 0x0102, TypeRaw, true, "Value"},
		{SetPreface, ItemPrefaceDictionary, 0x3b04, TypeStrongRef, false, "Dictionary"},
		{SetGenericPackage, ItemPackageTaggedValues, 0x4406, TypeStrongRefArray, false, "TaggedValues"},
	}
	for _, it := range items {
		if err := d.RegisterItem(it.set, it.key, it.tag, it.typ, it.required, it.label); err != nil {
			return err
		}
	}
	return nil
}

// NewAvidDataModel returns a finalised DataModel with the baseline
// dictionary plus Avid vendor extensions registered.
func NewAvidDataModel() (*DataModel, error) {
	d := NewDataModel(ProfileAvidExtended)
	if err := RegisterAvidExtendedDataModel(d); err != nil {
		return nil, err
	}
	if err := d.Finalise(); err != nil {
		return nil, err
	}
	return d, nil
}
