// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"golang.org/x/text/encoding/unicode"
)

// utf16BEDecoder/utf16BEEncoder are shared transformers for the
// container's internal string encoding. Container-internal strings are
// UTF-16BE; conversion to/from Go's native UTF-8 strings happens only at
// the API boundary, per spec.md §9 ("Unicode strings"). The teacher pulls
// in the same golang.org/x/text/encoding/unicode package to decode
// VERSIONINFO strings in helper.go; reused here for the same concern.
var (
	utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	utf16BEEncoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
)

// UTF16BEToString decodes a UTF-16BE byte sequence (as stored inside a
// metadata item's value) into a Go string. No Unicode normalisation is
// applied — code units are preserved exactly.
func UTF16BEToString(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16BEDecoder.Bytes(b)
	if err != nil {
		return "", newErr("UTF16BEToString", KindMalformed, err)
	}
	return string(out), nil
}

// StringToUTF16BE encodes s into the container's internal UTF-16BE byte
// representation, ready to be stored as an item's value.
func StringToUTF16BE(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	out, err := utf16BEEncoder.Bytes([]byte(s))
	if err != nil {
		return nil, newErr("StringToUTF16BE", KindMalformed, err)
	}
	return out, nil
}
