// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// UL is a 16-byte universal label, used both as a key tagging a KLV
// element and as a set/item/essence-container/operational-pattern
// identifier throughout the header metadata graph.
type UL [16]byte

// String renders the UL as 32 lowercase hex digits with no separators,
// e.g. "060e2b34...".
func (u UL) String() string {
	return hex.EncodeToString(u[:])
}

// Equal compares two ULs byte-for-byte.
func (u UL) Equal(other UL) bool {
	return u == other
}

// EqualIgnoringVersion compares two ULs ignoring byte 7, the registry
// version octet, per spec.md's "mod registry-version" equality rule.
func (u UL) EqualIgnoringVersion(other UL) bool {
	for i := range u {
		if i == 7 {
			continue
		}
		if u[i] != other[i] {
			return false
		}
	}
	return true
}

// IsNull reports whether the UL is all zero bytes.
func (u UL) IsNull() bool {
	return u == UL{}
}

// NewUL constructs a UL from 16 bytes. It panics if b is not exactly 16
// bytes long; callers pass fixed-size literals or validated slices.
func NewUL(b []byte) UL {
	if len(b) != 16 {
		panic(fmt.Sprintf("mxf: UL requires 16 bytes, got %d", len(b)))
	}
	var u UL
	copy(u[:], b)
	return u
}

// UUID is a 16-byte unique identifier for a metadata set instance.
type UUID [16]byte

// String renders the UUID in canonical 8-4-4-4-12 form.
func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// IsNull reports whether the UUID is all zero bytes.
func (u UUID) IsNull() bool {
	return u == UUID{}
}

// NewInstanceUID generates a fresh random instance UID, the identifier
// every metadata set is keyed by. Grounded on bmx's UniqueIdHelper, which
// generates material/instance numbers independently of the UMID's random
// material number.
func NewInstanceUID() UUID {
	return UUID(uuid.New())
}

// UMID is the 32-byte Unique Material Identifier: a 16-byte material
// number followed by a 16-byte instance/source number.
type UMID [32]byte

// MaterialNumber returns the first 16 bytes (the material number half).
func (m UMID) MaterialNumber() [16]byte {
	var b [16]byte
	copy(b[:], m[:16])
	return b
}

// InstanceNumber returns the last 16 bytes (the instance/source number
// half).
func (m UMID) InstanceNumber() [16]byte {
	var b [16]byte
	copy(b[:], m[16:])
	return b
}

// String renders the UMID as hex.
func (m UMID) String() string {
	return hex.EncodeToString(m[:])
}

// umidInstanceCounter is incremented per generated UMID within this
// process, matching bmx's UniqueIdHelper split of a random material number
// from a monotonic per-process instance/source number.
var umidInstanceCounter uint32

// NewUMID generates a UMID whose material number is a fresh random value
// and whose instance number increments monotonically for the lifetime of
// the process, as bmx's UniqueIdHelper does to keep material packages
// distinguishable across a single clip-writing session.
func NewUMID() UMID {
	var m UMID
	material := uuid.New()
	copy(m[:16], material[:])
	umidInstanceCounter++
	instance := uuid.New()
	copy(m[16:], instance[:])
	// Low 4 bytes of the instance half carry the monotonic counter so that
	// UMIDs minted in the same process are trivially orderable even if the
	// random halves happened to collide (vanishingly unlikely, but cheap
	// to make impossible).
	m[28] = byte(umidInstanceCounter >> 24)
	m[29] = byte(umidInstanceCounter >> 16)
	m[30] = byte(umidInstanceCounter >> 8)
	m[31] = byte(umidInstanceCounter)
	return m
}
