// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"io"
	"testing"
)

func TestMemoryFileWriteReadRoundTrip(t *testing.T) {
	m := NewMemoryFile()
	if _, err := m.Write([]byte("abcdef")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := m.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := make([]byte, 6)
	if _, err := io.ReadFull(m, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(got) != "abcdef" {
		t.Errorf("got %q, want %q", got, "abcdef")
	}
}

func TestMemoryFileWriteAtArbitraryPosition(t *testing.T) {
	m := NewMemoryFileFromBytes([]byte("0123456789"))
	if _, err := m.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := m.Write([]byte("XY")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "0123XY6789"
	if string(m.Bytes()) != want {
		t.Errorf("Bytes() = %q, want %q", m.Bytes(), want)
	}
}

func TestMemoryFileWritePastEndGrows(t *testing.T) {
	m := NewMemoryFile()
	if _, err := m.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := m.Write([]byte("Z")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	size, err := m.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 6 {
		t.Fatalf("Size() = %d, want 6", size)
	}
	if m.Bytes()[5] != 'Z' {
		t.Errorf("expected byte 5 to be 'Z'")
	}
}

func TestMemoryFileSeekWhenceVariants(t *testing.T) {
	m := NewMemoryFileFromBytes([]byte("0123456789"))

	if pos, err := m.Seek(3, io.SeekStart); err != nil || pos != 3 {
		t.Fatalf("SeekStart: pos=%d err=%v", pos, err)
	}
	if pos, err := m.Seek(2, io.SeekCurrent); err != nil || pos != 5 {
		t.Fatalf("SeekCurrent: pos=%d err=%v", pos, err)
	}
	if pos, err := m.Seek(-1, io.SeekEnd); err != nil || pos != 9 {
		t.Fatalf("SeekEnd: pos=%d err=%v", pos, err)
	}
	if _, err := m.Seek(-1, io.SeekStart); err == nil {
		t.Error("expected a negative resulting offset to be rejected")
	}
}

func TestMemoryFileTellAndSeekable(t *testing.T) {
	m := NewMemoryFile()
	if !m.Seekable() {
		t.Error("MemoryFile should always report Seekable() true")
	}
	if _, err := m.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	pos, err := m.Tell()
	if err != nil {
		t.Fatalf("Tell: %v", err)
	}
	if pos != 3 {
		t.Errorf("Tell() = %d, want 3", pos)
	}
}

func TestMemoryFileReadAtEOF(t *testing.T) {
	m := NewMemoryFileFromBytes([]byte("ab"))
	buf := make([]byte, 2)
	if _, err := io.ReadFull(m, buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if _, err := m.Read(buf); err != io.EOF {
		t.Errorf("Read past end = %v, want io.EOF", err)
	}
}

type fakeChecksumSink struct {
	sum int
}

func (f *fakeChecksumSink) Update(b []byte) {
	for _, c := range b {
		f.sum += int(c)
	}
}

func (f *fakeChecksumSink) Finalise() []byte {
	return []byte{byte(f.sum)}
}

func TestChecksumFileAccumulatesOverWritesAndReads(t *testing.T) {
	inner := NewMemoryFile()
	sink := &fakeChecksumSink{}
	cf := NewChecksumFile(inner, sink)

	payload := []byte{1, 2, 3, 4}
	if _, err := cf.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := inner.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	readBuf := make([]byte, len(payload))
	if _, err := io.ReadFull(cf, readBuf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}

	want := byte((1 + 2 + 3 + 4) * 2)
	if got := cf.Digest(); len(got) != 1 || got[0] != want {
		t.Errorf("Digest() = %v, want [%d]", got, want)
	}
}

func TestInterleavingFileWriteTrackAppendsInOrder(t *testing.T) {
	inner := NewMemoryFile()
	ifile := NewInterleavingFile(inner)

	if _, err := ifile.WriteTrack([]byte("A")); err != nil {
		t.Fatalf("WriteTrack: %v", err)
	}
	if _, err := ifile.WriteTrack([]byte("B")); err != nil {
		t.Fatalf("WriteTrack: %v", err)
	}
	if string(inner.Bytes()) != "AB" {
		t.Errorf("underlying bytes = %q, want %q", inner.Bytes(), "AB")
	}
	if ifile.Underlying() != inner {
		t.Error("Underlying() should return the wrapped File")
	}
}
