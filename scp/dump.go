package scp

import (
	"fmt"
	"io"
)

// DumpHeader writes the decoded image header to w, one field per line,
// followed by the full track offset table.
func (f *File) DumpHeader(w io.Writer) {
	h := f.header
	fmt.Fprintf(w, "Disk Header:\n")
	fmt.Fprintf(w, "    Signature: %c%c%c\n", Signature[0], Signature[1], Signature[2])
	fmt.Fprintf(w, "  SCP Version: %s\n", h.VersionString())
	fmt.Fprintf(w, "    Disk Type: %s\n", h.DiskTypeName())
	fmt.Fprintf(w, "  Revolutions: %d\n", h.Revolutions)
	fmt.Fprintf(w, "       Tracks: %d - %d\n", h.StartTrack, h.EndTrack)
	fmt.Fprintf(w, "        Flags: %x %s\n", h.Flags, h.FlagsString())
	fmt.Fprintf(w, "   Cell Width: %d\n", h.EffectiveCellWidth())
	fmt.Fprintf(w, "        Sides: %s\n", h.SidesName())
	fmt.Fprintf(w, "     Checksum: %08x\n", h.Checksum)

	fmt.Fprintf(w, "Track Offsets:")
	for i, off := range h.TrackOffsets {
		fmt.Fprintf(w, " %d", off)
		if i%10 == 9 {
			fmt.Fprintf(w, "\n              ")
		}
	}
	fmt.Fprintf(w, "\n")
}

// DumpTrack writes a summary of the selected track to w: per
// revolution the sample count, duration, absolute data offset, and the
// first four flux values as a preview. It rewinds the flux cursor.
// Nothing is written when no track is selected.
func (f *File) DumpTrack(w io.Writer) {
	if !f.loaded {
		return
	}
	fmt.Fprintf(w, "Track %d:\n", f.track.TrackNumber)
	for rev := 0; rev < int(f.header.Revolutions); rev++ {
		f.Reset()
		f1 := f.NextFlux(rev)
		f2 := f.NextFlux(rev)
		f3 := f.NextFlux(rev)
		f4 := f.NextFlux(rev)

		r := f.track.Revolutions[rev]
		fmt.Fprintf(w, "  Revolution %d: %d samples, %f msec, offset %d, data %d-%d-%d-%d...\n",
			rev, r.SampleCount, r.DurationMillis(), r.DataOffset, f1, f2, f3, f4)
	}
}
