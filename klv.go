// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"io"
)

// fillerKey is the well-known key of a filler KLV triple. Filler triples
// carry no meaning; they exist to pad a partition out to a KAG multiple
// and are skipped on read.
var fillerKey = UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01,
	0x03, 0x01, 0x02, 0x10, 0x01, 0x00, 0x00, 0x00}

// partitionPackKeyPrefix is the first 13 bytes shared by every partition
// pack key variant (header/body/footer, open/closed, complete/incomplete).
// Recognition compares these bytes modulo the registry-version byte (7),
// per spec.md's UL equality rule.
var partitionPackKeyPrefix = [13]byte{
	0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0d, 0x01, 0x02, 0x01, 0x01,
}

// minFillerSize is the smallest legal filler KLV: a 16-byte key, a 1-byte
// short-form length of zero, and nothing else.
const minFillerSize = 16 + 1

// Triple is a decoded KLV header: the key, the declared length, and a
// reader that yields exactly that many value bytes before returning EOF.
type Triple struct {
	Key    UL
	Length uint64
	Value  io.Reader
}

// ReadTriple reads one KLV triple's key and BER length from r and returns
// a Triple whose Value is a bounded reader over the next Length bytes.
// Callers that don't need the value may discard it; the bounded reader
// still needs draining (or the stream seeked past it) before the next
// ReadTriple call.
func ReadTriple(r io.Reader) (Triple, error) {
	var keyBuf [16]byte
	if _, err := io.ReadFull(r, keyBuf[:]); err != nil {
		if err == io.EOF {
			return Triple{}, io.EOF
		}
		return Triple{}, newErr("ReadTriple", KindIO, ErrUnexpectedEOF)
	}

	length, _, err := readBERLength(r)
	if err != nil {
		return Triple{}, newErr("ReadTriple", KindMalformed, err)
	}

	return Triple{
		Key:    UL(keyBuf),
		Length: length,
		Value:  io.LimitReader(r, int64(length)),
	}, nil
}

// IsFiller reports whether key is the well-known filler key.
func IsFiller(key UL) bool {
	return key.Equal(fillerKey)
}

// IsPartitionPackKey reports whether key belongs to the partition-pack
// family, matching the first 13 bytes mod registry-version (byte 7).
// The primer pack, index table segment and random index pack keys share
// this same 13-byte prefix, so byte 13 (PartitionKind) must also fall in
// its valid range to tell a real partition pack apart from those siblings.
func IsPartitionPackKey(key UL) bool {
	for i := 0; i < 13; i++ {
		if i == 7 {
			continue
		}
		if key[i] != partitionPackKeyPrefix[i] {
			return false
		}
	}
	switch PartitionKind(key[13]) {
	case PartitionHeader, PartitionBody, PartitionFooter:
		return true
	default:
		return false
	}
}

// WriteTripleHeader writes a KLV key and BER length to w. When llenHint is
// 0, the minimal BER encoding is used. When llenHint > 0, a fixed-width
// long form with llenHint-1 length bytes is used instead, which lets a
// caller reserve space for a length that will be back-patched once the
// value's final size is known (spec.md §4.1, §4.5 "patch_back").
func WriteTripleHeader(w io.Writer, key UL, length uint64, llenHint int) error {
	if _, err := w.Write(key[:]); err != nil {
		return newErr("WriteTripleHeader", KindIO, err)
	}
	if err := writeBERLength(w, length, llenHint); err != nil {
		return newErr("WriteTripleHeader", KindMalformed, err)
	}
	return nil
}

// WriteTriple writes a complete KLV triple: key, BER length, then value.
func WriteTriple(w io.Writer, key UL, value []byte) error {
	if err := WriteTripleHeader(w, key, uint64(len(value)), 0); err != nil {
		return err
	}
	_, err := w.Write(value)
	if err != nil {
		return newErr("WriteTriple", KindIO, err)
	}
	return nil
}

// WriteFiller emits a filler KLV whose total on-disk size is exactly
// totalSize bytes: a 16-byte key, a BER length for the padding region,
// and that many zero bytes. totalSize must be at least minFillerSize.
func WriteFiller(w io.Writer, totalSize int) error {
	if totalSize < minFillerSize {
		return newErr("WriteFiller", KindLogicError, ErrMalformedBERLength)
	}

	// Use the narrowest length field that lets key, length and value add
	// up to totalSize: a 1-byte short form when the value length is below
	// 0x80, otherwise a long form of llen bytes, which may be wider than
	// the minimal encoding of the value length.
	headerLen := 16
	for llen := 1; ; llen++ {
		valueLen := totalSize - headerLen - llen
		if valueLen < 0 {
			return newErr("WriteFiller", KindLogicError, ErrMalformedBERLength)
		}
		hint := 0
		if llen > 1 {
			hint = llen
		}
		if (llen == 1 && valueLen < 0x80) || (llen > 1 && minimalLengthBytes(uint64(valueLen)) <= llen-1) {
			if _, err := w.Write(fillerKey[:]); err != nil {
				return newErr("WriteFiller", KindIO, err)
			}
			if err := writeBERLength(w, uint64(valueLen), hint); err != nil {
				return newErr("WriteFiller", KindMalformed, err)
			}
			if valueLen > 0 {
				if _, err := w.Write(make([]byte, valueLen)); err != nil {
					return newErr("WriteFiller", KindIO, err)
				}
			}
			return nil
		}
		if llen >= 9 {
			return newErr("WriteFiller", KindLogicError, ErrMalformedBERLength)
		}
	}
}

// drainValue reads and discards a Triple's value, returning its raw bytes.
// Useful for small, fully-buffered values such as primer entries or
// metadata set bodies.
func drainValue(t Triple) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, t.Value); err != nil {
		return nil, newErr("drainValue", KindIO, err)
	}
	return buf.Bytes(), nil
}
