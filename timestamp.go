// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "fmt"

// Timestamp is the container-native date/time representation: year, month,
// day, hour, minute, second and quarter-millisecond fraction, stored
// exactly as the wire format rather than converted to a wall-clock type.
type Timestamp struct {
	Year    int16
	Month   uint8
	Day     uint8
	Hour    uint8
	Minute  uint8
	Second  uint8
	QMillis uint8 // Fraction of a second in units of 4ms (0-249).
}

// String renders the timestamp in an ISO-8601-like form for logging and
// JSON dumps.
func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, int(t.QMillis)*4)
}

// IsZero reports whether the timestamp is the all-zero sentinel used for
// "unknown".
func (t Timestamp) IsZero() bool {
	return t == Timestamp{}
}
