// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

func newTestModel(t *testing.T) *DataModel {
	t.Helper()
	model, err := NewBaselineDataModel()
	if err != nil {
		t.Fatalf("NewBaselineDataModel: %v", err)
	}
	return model
}

func TestSetUInt32RoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericTrack)
	if err := s.SetUInt32(ItemTrackID, 42); err != nil {
		t.Fatalf("SetUInt32: %v", err)
	}
	got, err := s.GetUInt32(ItemTrackID)
	if err != nil {
		t.Fatalf("GetUInt32: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if !s.Has(ItemTrackID) {
		t.Error("Has should report true for a set item")
	}
}

func TestSetRejectsItemNotInClass(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericTrack)
	// ItemPackageName belongs to SetGenericPackage, not SetGenericTrack.
	if err := s.SetString(ItemPackageName, "nope"); err == nil {
		t.Error("expected an error storing an item not defined on this set's class")
	}
}

func TestSetRationalRoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetTrack)
	want := Rational{25, 1}
	if err := s.SetRational(ItemTrackEditRate, want); err != nil {
		t.Fatalf("SetRational: %v", err)
	}
	got, err := s.GetRational(ItemTrackEditRate)
	if err != nil {
		t.Fatalf("GetRational: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSetUMIDRoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericPackage)
	want := NewUMID()
	if err := s.SetUMID(ItemPackageUID, want); err != nil {
		t.Fatalf("SetUMID: %v", err)
	}
	got, err := s.GetUMID(ItemPackageUID)
	if err != nil {
		t.Fatalf("GetUMID: %v", err)
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSetStringRoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericPackage)
	want := "a package name"
	if err := s.SetString(ItemPackageName, want); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err := s.GetString(ItemPackageName)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetStrongRefArrayRoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericPackage)
	targets := []UUID{NewInstanceUID(), NewInstanceUID(), NewInstanceUID()}
	if err := s.SetRefArray(ItemPackageTracks, targets); err != nil {
		t.Fatalf("SetRefArray: %v", err)
	}
	got, err := s.GetRefArray(ItemPackageTracks)
	if err != nil {
		t.Fatalf("GetRefArray: %v", err)
	}
	if len(got) != len(targets) {
		t.Fatalf("len = %d, want %d", len(got), len(targets))
	}
	for i := range targets {
		if got[i] != targets[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], targets[i])
		}
	}
}

func TestSetRefArrayEmpty(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetGenericPackage)
	if err := s.SetRefArray(ItemPackageTracks, nil); err != nil {
		t.Fatalf("SetRefArray: %v", err)
	}
	got, err := s.GetRefArray(ItemPackageTracks)
	if err != nil {
		t.Fatalf("GetRefArray: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestSetWeakRefRoundTrip(t *testing.T) {
	model := newTestModel(t)
	s := NewSet(model, SetPreface)
	want := NewInstanceUID()
	if err := s.SetWeakRef(ItemPrefacePrimaryPackage, want); err != nil {
		t.Fatalf("SetWeakRef: %v", err)
	}
	got, err := s.GetWeakRef(ItemPrefacePrimaryPackage)
	if err != nil {
		t.Fatalf("GetWeakRef: %v", err)
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNewSetAssignsDistinctInstanceUIDs(t *testing.T) {
	model := newTestModel(t)
	a := NewSet(model, SetGenericTrack)
	b := NewSet(model, SetGenericTrack)
	if a.InstanceUID == b.InstanceUID {
		t.Error("two freshly constructed sets must not share an instance UID")
	}
}

func TestDarkSetPreservesRawBytes(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	s := newDarkSet(UL{0xff}, NewInstanceUID(), raw)
	if !s.Dark {
		t.Error("expected Dark to be true")
	}
	if string(s.DarkBytes) != string(raw) {
		t.Errorf("DarkBytes = %v, want %v", s.DarkBytes, raw)
	}
}
