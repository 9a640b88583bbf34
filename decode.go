package fluxgo

import (
	"errors"
	"io"
	"time"

	"github.com/fluxgo/fluxgo/mfm"
	"github.com/fluxgo/fluxgo/pll"
	"github.com/fluxgo/fluxgo/scp"
)

const (
	// TrackCount is the number of tracks in a decoded disk image.
	TrackCount = mfm.MaxTracks

	// TrackHalfBits is the fixed length of one decoded track.
	TrackHalfBits = mfm.TrackHalfBits

	// FillerBytes is the number of zero data bytes emitted for a track
	// the capture does not cover. Encoded as MFM it fills one track.
	FillerBytes = 6400
)

// Sink receives the decoded half-bit stream. *mfm.Writer implements it.
type Sink interface {
	// Reset rebinds the sink to w and rewinds its track state.
	Reset(w io.Writer)

	// WriteHalfBit appends a single half-bit cell, 0 or 1.
	WriteHalfBit(v int)

	// WriteByte appends one data byte as sixteen MFM cells.
	WriteByte(b byte) error

	// Last reports the most recent half-bit written.
	Last() int
}

// Decode runs the clock recovery over every track of the given
// revolution and streams the result into sink, resetting it onto out
// at each track boundary. Tracks outside the captured range, and
// tracks whose record is missing or damaged, are replaced with zero
// filler so the output geometry stays fixed. Read failures on the
// underlying image abort the decode.
func (d *Decoder) Decode(revolution int, sink Sink, out io.Writer) error {
	hdr := d.file.Header()
	if revolution < 0 || revolution >= int(hdr.Revolutions) {
		err := &RangeError{Revolution: revolution, Count: int(hdr.Revolutions)}
		d.logger.LogDecode(revolution, 0, 0, err)
		return err
	}

	var decoded, filled int
	for track := 0; track < TrackCount; track++ {
		sink.Reset(out)

		if track < int(hdr.StartTrack) || track >= int(hdr.EndTrack) {
			if err := d.fillTrack(sink, track, nil); err != nil {
				d.logger.LogDecode(revolution, decoded, filled, err)
				return err
			}
			filled++
			continue
		}

		start := time.Now()
		err := d.file.SelectTrack(track)
		d.metrics.RecordTrackLoad(time.Since(start), err)
		if err != nil {
			var trackErr *scp.TrackError
			if !errors.As(err, &trackErr) {
				d.logger.LogDecode(revolution, decoded, filled, err)
				return err
			}
			if err := d.fillTrack(sink, track, err); err != nil {
				d.logger.LogDecode(revolution, decoded, filled, err)
				return err
			}
			filled++
			continue
		}

		if !d.file.HasFlux(revolution) {
			err := &scp.TrackError{Track: track, Detail: "revolution holds no flux transitions"}
			if err := d.fillTrack(sink, track, err); err != nil {
				d.logger.LogDecode(revolution, decoded, filled, err)
				return err
			}
			filled++
			continue
		}

		d.decodeTrack(sink, track, revolution)
		decoded++
	}

	d.logger.LogDecode(revolution, decoded, filled, nil)
	return nil
}

// decodeTrack recovers the cell clock for one loaded track and writes
// its half-bit stream. Captures shorter than the nominal track are
// padded with alternating cells up to TrackHalfBits.
func (d *Decoder) decodeTrack(sink Sink, track, revolution int) {
	start := time.Now()

	d.file.Reset()
	p := pll.New(d.file.FluxSource(revolution))

	// The first cell straddles the seam where the recording started
	// and carries no usable timing.
	p.NextBit()

	n := 0
	for {
		sink.WriteHalfBit(p.NextBit())
		n++
		if !d.file.Pending() {
			break
		}
	}
	for n < TrackHalfBits {
		sink.WriteHalfBit(1 - sink.Last())
		n++
	}

	d.logger.LogTrackDecoded(track, revolution, n)
	d.metrics.RecordTrackDecode(n, time.Since(start), false)
}

func (d *Decoder) fillTrack(sink Sink, track int, reason error) error {
	start := time.Now()
	for i := 0; i < FillerBytes; i++ {
		if err := sink.WriteByte(0); err != nil {
			return err
		}
	}
	d.logger.LogTrackFilled(track, reason)
	d.metrics.RecordTrackDecode(TrackHalfBits, time.Since(start), true)
	return nil
}

// WriteMFM decodes one revolution of the whole image into a raw MFM
// disk image on w. The output is TrackCount tracks of TrackHalfBits/8
// bytes each.
func (d *Decoder) WriteMFM(w io.Writer, revolution int) error {
	sink := mfm.NewWriter(w)
	if err := d.Decode(revolution, sink, w); err != nil {
		return err
	}
	return sink.Flush()
}
