// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindIO:                 "IO",
		KindMalformed:          "Malformed",
		KindTypeMismatch:       "TypeMismatch",
		KindBrokenReference:    "BrokenReference",
		KindUnsupportedVersion: "UnsupportedVersion",
		KindCapacityExceeded:   "CapacityExceeded",
		KindLogicError:         "LogicError",
		Kind(99):               "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := newErr("Open", KindMalformed, ErrSalvageTruncated)
	if !errors.Is(err, ErrSalvageTruncated) {
		t.Error("expected errors.Is to find the wrapped sentinel through Unwrap")
	}
}

func TestErrorMessageWithoutOffset(t *testing.T) {
	err := newErr("Open", KindIO, ErrNotSeekable)
	msg := err.Error()
	if !strings.Contains(msg, "Open") || !strings.Contains(msg, "IO") {
		t.Errorf("error message %q missing op/kind", msg)
	}
	if strings.Contains(msg, "partition") {
		t.Errorf("error message %q should omit the partition/offset breadcrumb when Offset is -1", msg)
	}
}

func TestErrorMessageWithOffset(t *testing.T) {
	err := newErrAt("ReadTriple", KindMalformed, 2, 128, ErrUnexpectedEOF)
	msg := err.Error()
	if !strings.Contains(msg, "partition 2") || !strings.Contains(msg, "offset 128") {
		t.Errorf("error message %q missing partition/offset breadcrumb", msg)
	}
}
