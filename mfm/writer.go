// Package mfm writes raw MFM floppy track images.
//
// A raw image is a sequence of equal-size tracks, each a stream of
// half-bit cells packed eight to a byte, most significant first. Every
// data bit occupies two cells: a clock cell, set only between two zero
// data bits, and the data cell itself. A track holds 102400 half-bit
// cells, 12800 bytes on disk.
package mfm

import (
	"bufio"
	"io"
)

// Track geometry of the raw image format.
const (
	// MaxTracks is how many tracks a full disk image holds.
	MaxTracks = 160
	// TrackHalfBits is the half-bit capacity of one track.
	TrackHalfBits = 12800 * 8
)

// Writer encodes half-bits, bits, and bytes onto an output stream.
// Output is buffered; the first write error sticks and is reported by
// Err, Flush, and WriteByte. The zero value is not usable, construct
// with NewWriter or bind a target with Reset.
type Writer struct {
	bw       *bufio.Writer
	last     int
	halfbits int
	acc      byte
	nacc     int
	err      error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Reset flushes buffered output, rewinds the track state, and directs
// subsequent output to w. The sticky error is kept.
func (m *Writer) Reset(w io.Writer) {
	if m.bw != nil {
		if err := m.bw.Flush(); err != nil && m.err == nil {
			m.err = err
		}
		m.bw.Reset(w)
	} else {
		m.bw = bufio.NewWriter(w)
	}
	m.last = 0
	m.halfbits = 0
	m.acc = 0
	m.nacc = 0
}

// WriteHalfBit appends one half-bit cell. Cells are emitted in groups
// of eight, most significant first; a partial group stays buffered
// until more cells arrive.
func (m *Writer) WriteHalfBit(v int) {
	if v != 0 {
		v = 1
	}
	m.acc = m.acc<<1 | byte(v)
	m.nacc++
	m.halfbits++
	m.last = v
	if m.nacc == 8 {
		if err := m.bw.WriteByte(m.acc); err != nil && m.err == nil {
			m.err = err
		}
		m.acc = 0
		m.nacc = 0
	}
}

// WriteBit appends one data bit as an MFM cell pair: the clock cell,
// set only when both the previous and the current data bits are zero,
// then the data cell.
func (m *Writer) WriteBit(v int) {
	if v != 0 {
		v = 1
	}
	clock := 0
	if m.last == 0 && v == 0 {
		clock = 1
	}
	m.WriteHalfBit(clock)
	m.WriteHalfBit(v)
}

// WriteByte appends one data byte, most significant bit first, and
// returns the sticky error.
func (m *Writer) WriteByte(b byte) error {
	for i := 7; i >= 0; i-- {
		m.WriteBit(int(b >> i & 1))
	}
	return m.err
}

// Write appends data bytes, satisfying io.Writer.
func (m *Writer) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := m.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteGap appends n repeated gap bytes.
func (m *Writer) WriteGap(n int, b byte) {
	for i := 0; i < n; i++ {
		if m.WriteByte(b) != nil {
			return
		}
	}
}

// FillTrack pads the current track with repeated bytes while a whole
// byte of capacity remains.
func (m *Writer) FillTrack(b byte) {
	for m.halfbits+16 <= TrackHalfBits {
		if m.WriteByte(b) != nil {
			return
		}
	}
}

// Last returns the most recently written half-bit.
func (m *Writer) Last() int { return m.last }

// HalfBits returns how many half-bits the current track holds.
func (m *Writer) HalfBits() int { return m.halfbits }

// Err returns the first write error.
func (m *Writer) Err() error { return m.err }

// Flush drains buffered whole bytes and returns the sticky error.
func (m *Writer) Flush() error {
	if m.bw != nil {
		if err := m.bw.Flush(); err != nil && m.err == nil {
			m.err = err
		}
	}
	return m.err
}
