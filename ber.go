// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"io"
)

// maxBERLength is the largest length a single KLV triple may declare,
// per spec.md §6 ("KLV length <= 2^63-1").
const maxBERLength = 1<<63 - 1

// readBERLength decodes a BER length from r. The first byte is either the
// length itself (short form, top bit clear) or 0x80|n, where n is the
// count of following big-endian bytes that hold the length (long form).
func readBERLength(r io.Reader) (uint64, int, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, 0, ErrUnexpectedEOF
	}

	if first[0]&0x80 == 0 {
		return uint64(first[0]), 1, nil
	}

	n := int(first[0] &^ 0x80)
	if n == 0 || n > 8 {
		return 0, 0, ErrMalformedBERLength
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, 0, ErrUnexpectedEOF
	}

	var length uint64
	for _, b := range buf {
		length = length<<8 | uint64(b)
	}
	if length > maxBERLength {
		return 0, 0, ErrLengthTooLarge
	}
	return length, n + 1, nil
}

// berLengthSize returns the number of bytes writeBERLength would emit for
// length using the minimal encoding (llen == 0) or a fixed long form with
// llen-1 length bytes.
func berLengthSize(length uint64, llen int) int {
	if llen > 0 {
		return llen
	}
	if length < 0x80 {
		return 1
	}
	return 1 + minimalLengthBytes(length)
}

// minimalLengthBytes returns how many big-endian bytes are required to
// hold length, at least 1.
func minimalLengthBytes(length uint64) int {
	n := 0
	for v := length; v > 0; v >>= 8 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// writeBERLength encodes length to w. When llenHint is 0 the minimal
// encoding is chosen. When llenHint > 0 a fixed long form with
// llenHint-1 big-endian length bytes is used regardless of how small
// length is — required for back-patching when the final length is not
// known at the point the header is first written (spec.md §4.1).
func writeBERLength(w io.Writer, length uint64, llenHint int) error {
	if length > maxBERLength {
		return ErrLengthTooLarge
	}

	if llenHint == 0 {
		if length < 0x80 {
			_, err := w.Write([]byte{byte(length)})
			return err
		}
		n := minimalLengthBytes(length)
		return writeLongFormLength(w, length, n)
	}

	n := llenHint - 1
	if n < 1 || n > 8 {
		return ErrMalformedBERLength
	}
	return writeLongFormLength(w, length, n)
}

func writeLongFormLength(w io.Writer, length uint64, n int) error {
	buf := make([]byte, n+1)
	buf[0] = 0x80 | byte(n)
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 8)
		buf[1+i] = byte(length >> shift)
	}
	_, err := w.Write(buf)
	return err
}
