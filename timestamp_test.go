// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "testing"

func TestTimestampIsZero(t *testing.T) {
	var zero Timestamp
	if !zero.IsZero() {
		t.Error("the zero-value Timestamp should report IsZero")
	}
	set := Timestamp{Year: 2024, Month: 1, Day: 1}
	if set.IsZero() {
		t.Error("a populated Timestamp should not report IsZero")
	}
}

func TestTimestampString(t *testing.T) {
	ts := Timestamp{Year: 2024, Month: 3, Day: 9, Hour: 12, Minute: 5, Second: 7, QMillis: 10}
	want := "2024-03-09 12:05:07.040"
	if got := ts.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
