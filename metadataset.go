// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "encoding/binary"

// Set is a single metadata object: a typed, tag-indexed property bag
// belonging to exactly one HeaderMetadata container, identified by its
// InstanceUID. Spec.md §3 models sets as "a map local-tag -> raw value
// bytes plus an instance UID"; here items are keyed by their full item UL
// once resolved against the data model, which lets Set expose typed
// accessors without re-walking the primer on every Get.
type Set struct {
	SetKey      UL
	InstanceUID UUID
	Dark        bool   // true if SetKey is unknown to the data model.
	DarkBytes   []byte // raw KLV value, preserved verbatim, only set when Dark.

	items       map[UL][]byte    // known item UL -> raw value.
	unknownTags map[uint16][]byte // item local tag with no resolvable UL -> raw value.
	model       *DataModel
}

// NewSet constructs an empty, first-class Set of the given class, with a
// freshly minted instance UID.
func NewSet(model *DataModel, setKey UL) *Set {
	return &Set{
		SetKey:      setKey,
		InstanceUID: NewInstanceUID(),
		items:       make(map[UL][]byte),
		unknownTags: make(map[uint16][]byte),
		model:       model,
	}
}

// newDarkSet constructs a Set preserving an unrecognised set's raw bytes.
func newDarkSet(setKey UL, instanceUID UUID, raw []byte) *Set {
	return &Set{SetKey: setKey, InstanceUID: instanceUID, Dark: true, DarkBytes: raw}
}

func (s *Set) checkItem(itemKey UL) (*ItemDef, error) {
	if s.model == nil {
		return nil, newErr("Set", KindLogicError, ErrDataModelNotFinalised)
	}
	def, _, ok := s.model.FindItem(s.SetKey, itemKey)
	if !ok {
		return nil, newErr("Set", KindMalformed, ErrUnknownItem)
	}
	return def, nil
}

// SetRaw stores value under itemKey without type checking; used by
// typed setters below and by callers that already have wire bytes.
func (s *Set) SetRaw(itemKey UL, value []byte) error {
	if _, err := s.checkItem(itemKey); err != nil {
		return err
	}
	s.items[itemKey] = value
	return nil
}

// GetRaw returns the raw bytes stored for itemKey, if present.
func (s *Set) GetRaw(itemKey UL) ([]byte, bool) {
	v, ok := s.items[itemKey]
	return v, ok
}

// Has reports whether itemKey has a stored value.
func (s *Set) Has(itemKey UL) bool {
	_, ok := s.items[itemKey]
	return ok
}

// ItemKeys returns every known item key this set has a value for, in no
// particular order; used by HeaderMetadata when serialising.
func (s *Set) ItemKeys() []UL {
	keys := make([]UL, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}

// SetUInt8/16/32/64 and signed variants store a big-endian integer.
func (s *Set) SetUInt8(itemKey UL, v uint8) error  { return s.SetRaw(itemKey, []byte{v}) }
func (s *Set) SetUInt16(itemKey UL, v uint16) error {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return s.SetRaw(itemKey, b)
}
func (s *Set) SetUInt32(itemKey UL, v uint32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return s.SetRaw(itemKey, b)
}
func (s *Set) SetUInt64(itemKey UL, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return s.SetRaw(itemKey, b)
}
func (s *Set) SetInt64(itemKey UL, v int64) error { return s.SetUInt64(itemKey, uint64(v)) }

// GetUInt8/16/32/64 decode a big-endian integer previously stored.
func (s *Set) GetUInt8(itemKey UL) (uint8, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 1 {
		return 0, newErr("GetUInt8", KindTypeMismatch, ErrUnknownItem)
	}
	return v[0], nil
}
func (s *Set) GetUInt16(itemKey UL) (uint16, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 2 {
		return 0, newErr("GetUInt16", KindTypeMismatch, ErrUnknownItem)
	}
	return binary.BigEndian.Uint16(v), nil
}
func (s *Set) GetUInt32(itemKey UL) (uint32, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 4 {
		return 0, newErr("GetUInt32", KindTypeMismatch, ErrUnknownItem)
	}
	return binary.BigEndian.Uint32(v), nil
}
func (s *Set) GetUInt64(itemKey UL) (uint64, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 8 {
		return 0, newErr("GetUInt64", KindTypeMismatch, ErrUnknownItem)
	}
	return binary.BigEndian.Uint64(v), nil
}
func (s *Set) GetInt64(itemKey UL) (int64, error) {
	v, err := s.GetUInt64(itemKey)
	return int64(v), err
}

// SetRational/GetRational store/load a Rational as a 4-byte signed
// numerator followed by a 4-byte unsigned denominator.
func (s *Set) SetRational(itemKey UL, r Rational) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Numerator))
	binary.BigEndian.PutUint32(b[4:8], r.Denominator)
	return s.SetRaw(itemKey, b)
}
func (s *Set) GetRational(itemKey UL) (Rational, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 8 {
		return Rational{}, newErr("GetRational", KindTypeMismatch, ErrUnknownItem)
	}
	return Rational{
		Numerator:   int32(binary.BigEndian.Uint32(v[0:4])),
		Denominator: binary.BigEndian.Uint32(v[4:8]),
	}, nil
}

// SetUL/GetUL store/load a 16-byte universal label value.
func (s *Set) SetUL(itemKey UL, v UL) error { return s.SetRaw(itemKey, append([]byte(nil), v[:]...)) }
func (s *Set) GetUL(itemKey UL) (UL, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 16 {
		return UL{}, newErr("GetUL", KindTypeMismatch, ErrUnknownItem)
	}
	return NewUL(v[:16]), nil
}

// SetUMID/GetUMID store/load a 32-byte UMID value.
func (s *Set) SetUMID(itemKey UL, v UMID) error {
	return s.SetRaw(itemKey, append([]byte(nil), v[:]...))
}
func (s *Set) GetUMID(itemKey UL) (UMID, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 32 {
		return UMID{}, newErr("GetUMID", KindTypeMismatch, ErrUnknownItem)
	}
	var m UMID
	copy(m[:], v[:32])
	return m, nil
}

// SetString/GetString store/load a UTF-16BE-encoded string value.
func (s *Set) SetString(itemKey UL, v string) error {
	b, err := StringToUTF16BE(v)
	if err != nil {
		return err
	}
	return s.SetRaw(itemKey, b)
}
func (s *Set) GetString(itemKey UL) (string, error) {
	v, ok := s.items[itemKey]
	if !ok {
		return "", newErr("GetString", KindTypeMismatch, ErrUnknownItem)
	}
	return UTF16BEToString(v)
}

// SetStrongRef/GetStrongRef store/load a single 16-byte instance UID
// reference. Resolution to the target *Set happens in HeaderMetadata,
// after every set has been loaded.
func (s *Set) SetStrongRef(itemKey UL, target UUID) error {
	return s.SetRaw(itemKey, append([]byte(nil), target[:]...))
}
func (s *Set) GetStrongRef(itemKey UL) (UUID, error) {
	v, ok := s.items[itemKey]
	if !ok || len(v) < 16 {
		return UUID{}, newErr("GetStrongRef", KindTypeMismatch, ErrUnknownItem)
	}
	var u UUID
	copy(u[:], v[:16])
	return u, nil
}

// SetWeakRef/GetWeakRef behave like StrongRef but the reference is not
// followed during destruction and its absence is tolerated, not fatal.
func (s *Set) SetWeakRef(itemKey UL, target UUID) error { return s.SetStrongRef(itemKey, target) }
func (s *Set) GetWeakRef(itemKey UL) (UUID, error)      { return s.GetStrongRef(itemKey) }

// SetRefArray/GetRefArray store/load an array of 16-byte instance UID
// references: big-endian count, big-endian element size (16), then the
// concatenated UIDs, matching the same array convention the Primer Pack
// uses for its own entries.
func (s *Set) SetRefArray(itemKey UL, targets []UUID) error {
	b := make([]byte, 8+16*len(targets))
	binary.BigEndian.PutUint32(b[0:4], uint32(len(targets)))
	binary.BigEndian.PutUint32(b[4:8], 16)
	for i, t := range targets {
		copy(b[8+16*i:8+16*(i+1)], t[:])
	}
	return s.SetRaw(itemKey, b)
}
func (s *Set) GetRefArray(itemKey UL) ([]UUID, error) {
	v, ok := s.items[itemKey]
	if !ok {
		return nil, newErr("GetRefArray", KindTypeMismatch, ErrUnknownItem)
	}
	if len(v) < 8 {
		return nil, newErr("GetRefArray", KindMalformed, ErrUnexpectedEOF)
	}
	count := binary.BigEndian.Uint32(v[0:4])
	elemSize := binary.BigEndian.Uint32(v[4:8])
	if elemSize != 16 {
		return nil, newErr("GetRefArray", KindMalformed, ErrMalformedBERLength)
	}
	out := make([]UUID, 0, count)
	offset := 8
	for i := uint32(0); i < count; i++ {
		if offset+16 > len(v) {
			return nil, newErr("GetRefArray", KindMalformed, ErrUnexpectedEOF)
		}
		var u UUID
		copy(u[:], v[offset:offset+16])
		out = append(out, u)
		offset += 16
	}
	return out, nil
}
