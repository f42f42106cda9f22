// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"testing"
)

func TestPrimerPackRegisterIsIdempotent(t *testing.T) {
	p := NewPrimerPack()
	a := UL{0x01}
	tag1 := p.Register(a)
	tag2 := p.Register(a)
	if tag1 != tag2 {
		t.Errorf("registering the same UL twice gave different tags: %d, %d", tag1, tag2)
	}
	if tag1 == 0 {
		t.Error("tag 0x0000 is reserved and must never be assigned")
	}
}

func TestPrimerPackRegisterStaticPrefersExplicitTag(t *testing.T) {
	p := NewPrimerPack()
	uid := UL{0x02}
	got := p.RegisterStatic(uid, 0x0123)
	if got != 0x0123 {
		t.Fatalf("RegisterStatic = %#x, want 0x0123", got)
	}
	// Re-registering the same uid returns the same tag.
	if again := p.RegisterStatic(uid, 0x0123); again != 0x0123 {
		t.Errorf("RegisterStatic re-registration = %#x, want 0x0123", again)
	}
}

func TestPrimerPackRegisterStaticCollisionFallsBackToDynamic(t *testing.T) {
	p := NewPrimerPack()
	first := UL{0x01}
	second := UL{0x02}
	p.RegisterStatic(first, 0x0050)
	got := p.RegisterStatic(second, 0x0050)
	if got == 0x0050 {
		t.Error("expected a colliding static tag request to allocate a fresh dynamic tag instead")
	}
	if uid, ok := p.LookupUID(0x0050); !ok || uid != first {
		t.Error("the original static binding must be left untouched by the collision")
	}
}

func TestPrimerPackWriteReadRoundTrip(t *testing.T) {
	p := NewPrimerPack()
	a := UL{0x01, 0x02}
	b := UL{0x03, 0x04}
	tagA := p.Register(a)
	tagB := p.Register(b)

	var buf bytes.Buffer
	if err := WritePrimerPack(&buf, p); err != nil {
		t.Fatalf("WritePrimerPack: %v", err)
	}

	triple, err := ReadTriple(&buf)
	if err != nil {
		t.Fatalf("ReadTriple: %v", err)
	}
	if !IsPrimerPackKey(triple.Key) {
		t.Fatal("expected the emitted key to be the primer pack key")
	}
	value, err := drainValue(triple)
	if err != nil {
		t.Fatalf("drainValue: %v", err)
	}

	got, err := ReadPrimerPack(value)
	if err != nil {
		t.Fatalf("ReadPrimerPack: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if uid, ok := got.LookupUID(tagA); !ok || uid != a {
		t.Errorf("LookupUID(%#x) = (%v, %v), want (%v, true)", tagA, uid, ok, a)
	}
	if uid, ok := got.LookupUID(tagB); !ok || uid != b {
		t.Errorf("LookupUID(%#x) = (%v, %v), want (%v, true)", tagB, uid, ok, b)
	}
}

func TestReadPrimerPackKeepsFirstOnDuplicateTag(t *testing.T) {
	value := make([]byte, 8+18*2)
	value[3] = 2  // count = 2
	value[7] = 18 // entry size = 18

	a := UL{0xaa}
	b := UL{0xbb}
	copy(value[10:26], a[:])
	copy(value[28:44], b[:])
	// both entries claim tag 0x0001.
	value[8] = 0x00
	value[9] = 0x01
	value[26] = 0x00
	value[27] = 0x01

	p, err := ReadPrimerPack(value)
	if err != nil {
		t.Fatalf("ReadPrimerPack: %v", err)
	}
	uid, ok := p.LookupUID(0x0001)
	if !ok || uid != a {
		t.Errorf("LookupUID(0x0001) = (%v, %v), want (%v, true) (first entry must win)", uid, ok, a)
	}
}

func TestReadPrimerPackRejectsTruncatedValue(t *testing.T) {
	if _, err := ReadPrimerPack([]byte{0, 0}); err == nil {
		t.Error("expected an error reading a primer pack value shorter than the 8-byte header")
	}
}
