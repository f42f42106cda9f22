// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

// TrackNumber is the 4-byte essence-element identifier carried in every
// frame-wrapped or clip-wrapped essence KLV key's last four bytes:
// item type, element count, element type, element number (spec.md §4.8).
type TrackNumber struct {
	ItemType     byte
	ElementCount byte
	ElementType  byte
	ElementNumber byte
}

// Encode packs the track number into its 4-byte wire form.
func (t TrackNumber) Encode() [4]byte {
	return [4]byte{t.ItemType, t.ElementCount, t.ElementType, t.ElementNumber}
}

// DecodeTrackNumber unpacks a 4-byte track number.
func DecodeTrackNumber(b [4]byte) TrackNumber {
	return TrackNumber{ItemType: b[0], ElementCount: b[1], ElementType: b[2], ElementNumber: b[3]}
}

// Essence item types, the first byte of a TrackNumber.
const (
	ItemTypePicture byte = 0x05
	ItemTypeSound   byte = 0x06
	ItemTypeData    byte = 0x07
	ItemTypeAuxBin  byte = 0x04
)

// SampleSequence is the fixed-length repeating cycle of per-edit-unit
// sample counts a non-integral sample-rate audio track must follow so
// that, over one full cycle, the played-out samples exactly match the
// container's edit rate. E.g. 48000 Hz sampled at 30000/1001 fps cycles
// through {1602, 1601, 1602, 1601, 1602} (spec.md §8 scenario 4).
type SampleSequence struct {
	Counts []int
}

// NewPALSampleSequence builds the sequence for an integral-ratio edit
// rate: every edit unit carries the same sample count.
func NewPALSampleSequence(samplesPerEditUnit int) SampleSequence {
	return SampleSequence{Counts: []int{samplesPerEditUnit}}
}

// NewNTSCSampleSequence derives the repeating sample-count cycle for
// sampleRate audio against an editRate of the form 30000/1001-family
// rates. It returns the minimal cycle satisfying
// sum(cycle)*editRate.Numerator == len(cycle)*sampleRate*editRate.Denominator,
// each count being the rounded cumulative total minus the previous one.
func NewNTSCSampleSequence(sampleRate uint32, editRate Rational) SampleSequence {
	if editRate.Numerator == 0 {
		return SampleSequence{Counts: []int{0}}
	}
	num := uint64(editRate.Denominator) * uint64(sampleRate)
	den := uint64(editRate.Numerator)

	g, r := den, num%den
	for r != 0 {
		g, r = r, g%r
	}
	cycleLen := int(den / g)
	counts := make([]int, cycleLen)
	var prev uint64
	for i := 0; i < cycleLen; i++ {
		cum := (2*uint64(i+1)*num + den) / (2 * den) // rounded cumulative total
		counts[i] = int(cum - prev)
		prev = cum
	}
	return SampleSequence{Counts: counts}
}

// At returns the sample count for the edit unit at position, cycling
// through Counts.
func (s SampleSequence) At(position int64) int {
	if len(s.Counts) == 0 {
		return 0
	}
	i := position % int64(len(s.Counts))
	if i < 0 {
		i += int64(len(s.Counts))
	}
	return s.Counts[i]
}

// CumulativeSamples returns the total sample count for edit units
// [0, position).
func (s SampleSequence) CumulativeSamples(position int64) int64 {
	if len(s.Counts) == 0 || position <= 0 {
		return 0
	}
	cycleLen := int64(len(s.Counts))
	fullCycles := position / cycleLen
	remainder := position % cycleLen

	var cycleTotal int64
	for _, c := range s.Counts {
		cycleTotal += int64(c)
	}

	total := fullCycles * cycleTotal
	for i := int64(0); i < remainder; i++ {
		total += int64(s.Counts[i])
	}
	return total
}

// Track is one essence track of a clip: its identity within the
// containing package, how its essence is framed on the wire, and the
// cursor a writer or reader advances as edit units are produced or
// consumed. Grounded on spec.md §4.8's per-track state, generalising
// the teacher's flat per-section bookkeeping (section.go) to a
// per-track equivalent.
type Track struct {
	PackageUID        UMID
	TrackID           uint32
	TrackName         string
	Number            TrackNumber
	DescriptorRef     UUID
	EditRate          Rational
	Origin            int64
	Samples           SampleSequence // zero value: one edit unit per frame.
	position          int64
}

// NewTrack returns a Track with the given identity and framing, position
// starting at zero.
func NewTrack(packageUID UMID, trackID uint32, name string, number TrackNumber, editRate Rational) *Track {
	return &Track{
		PackageUID: packageUID,
		TrackID:    trackID,
		TrackName:  name,
		Number:     number,
		EditRate:   editRate,
	}
}

// Position returns the next edit-unit position this track will write or
// read.
func (t *Track) Position() int64 { return t.position }

// Advance moves the track's position forward by n edit units.
func (t *Track) Advance(n int64) { t.position += n }

// SeekTo sets the track's position directly, used by a reader after an
// index-table-driven random-access seek.
func (t *Track) SeekTo(position int64) { t.position = position }

// SampleCountAt returns how many essence samples the edit unit at
// position carries, honouring Samples when set.
func (t *Track) SampleCountAt(position int64) int {
	if len(t.Samples.Counts) == 0 {
		return 1
	}
	return t.Samples.At(position)
}
