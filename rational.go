// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// Rational is a signed-numerator / unsigned-denominator fraction, used for
// edit rates and sample rates. Edit rates are always exact values, never
// approximated as floats.
type Rational struct {
	Numerator   int32
	Denominator uint32
}

// NewRational constructs a Rational, e.g. NewRational(30000, 1001) for
// 29.97 fps.
func NewRational(num int32, den uint32) Rational {
	return Rational{Numerator: num, Denominator: den}
}

// Equal compares two rationals by cross-multiplication, so 1/1 == 2/2.
func (r Rational) Equal(other Rational) bool {
	return int64(r.Numerator)*int64(other.Denominator) ==
		int64(other.Numerator)*int64(r.Denominator)
}

// Less reports whether r < other, by cross-multiplication. Denominators
// are unsigned and never zero for a valid rational, so the sign of the
// cross product is well defined.
func (r Rational) Less(other Rational) bool {
	return int64(r.Numerator)*int64(other.Denominator) <
		int64(other.Numerator)*int64(r.Denominator)
}

// Float64 renders the rational as a float64, for display purposes only;
// never used internally for exactness-sensitive comparisons.
func (r Rational) Float64() float64 {
	if r.Denominator == 0 {
		return 0
	}
	return float64(r.Numerator) / float64(r.Denominator)
}

// IsZero reports whether the rational is 0/x.
func (r Rational) IsZero() bool {
	return r.Numerator == 0
}
