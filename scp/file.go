package scp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/fluxgo/fluxgo/imagestore"
	"github.com/fluxgo/fluxgo/pll"
)

// maxTrackSamples bounds one track's total sample words. Real tracks
// stay under a million words; larger counts indicate a corrupt record
// header.
const maxTrackSamples = 1 << 26

// File is an open flux image. It holds the decoded header and, after
// SelectTrack, the concatenated sample words of one track.
//
// A File carries a single flux cursor shared by all revolutions, so it
// is not safe for concurrent use.
type File struct {
	path   string
	blob   imagestore.Blob
	header Header

	// Selected track state.
	track    TrackHeader
	trackNum int
	loaded   bool
	data     []uint16
	indexEnd [MaxRevolutions]int
	hasFlux  [MaxRevolutions]bool

	// Flux cursor.
	pos   int
	limit int
}

// Open opens an image file on the local filesystem. Compressed
// captures (gzip, zstd, lz4 frame) are decompressed transparently.
func Open(path string) (*File, error) {
	blob, err := imagestore.OpenFile(path)
	if err != nil {
		return nil, err
	}
	f, err := OpenBlob(blob, path)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return f, nil
}

// OpenBlob reads the image header from an already-open blob. name is
// used in error messages. The File takes ownership of the blob and
// releases it on Close.
func OpenBlob(blob imagestore.Blob, name string) (*File, error) {
	f := &File{path: name, blob: blob, trackNum: -1}
	buf := make([]byte, HeaderSize)
	if err := f.readAt(buf, 0); err != nil {
		return nil, fmt.Errorf("scp: %s: read header: %w", name, err)
	}
	h, err := DecodeHeader(buf, name)
	if err != nil {
		return nil, err
	}
	f.header = h
	return f, nil
}

// readAt fills buf from the blob at off. Reads at or past the end of
// the blob yield zero bytes, tolerating captures with truncated sample
// data. Genuine read errors are returned.
func (f *File) readAt(buf []byte, off int64) error {
	n, err := f.blob.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	clear(buf[n:])
	return nil
}

// Header returns the decoded image header.
func (f *File) Header() Header { return f.header }

// Track returns the record header of the selected track, or the zero
// value when no track is selected.
func (f *File) Track() TrackHeader {
	if !f.loaded {
		return TrackHeader{}
	}
	return f.track
}

// Path returns the name the image was opened under.
func (f *File) Path() string { return f.path }

// Close releases the underlying blob.
func (f *File) Close() error { return f.blob.Close() }

// SelectTrack loads track tn: its record header plus the sample words
// of every revolution. Re-selecting the already loaded track performs
// no reads. The flux cursor is rewound in either case.
//
// Tracks that are absent from the image or carry a malformed record
// yield a *TrackError; callers decoding whole disks substitute an
// unformatted track for those. Any other error is a genuine read
// failure.
func (f *File) SelectTrack(tn int) error {
	if f.loaded && f.trackNum == tn {
		f.Reset()
		return nil
	}

	f.loaded = false
	f.trackNum = -1
	f.data = nil

	if tn < 0 || tn >= MaxTracks {
		return &TrackError{Track: tn, Detail: "out of range"}
	}
	base := f.header.TrackOffsets[tn]
	if base == 0 {
		return &TrackError{Track: tn, Detail: "not recorded in image"}
	}

	revs := int(f.header.Revolutions)
	buf := make([]byte, TrackHeaderSize(revs))
	if err := f.readAt(buf, int64(base)); err != nil {
		return fmt.Errorf("scp: track %d: read record header: %w", tn, err)
	}
	th, err := DecodeTrackHeader(buf, revs, base)
	if err != nil {
		return &TrackError{Track: tn, Detail: err.Error()}
	}
	if int(th.TrackNumber) != tn {
		return &TrackError{Track: tn, Detail: fmt.Sprintf("record claims track %d", th.TrackNumber)}
	}

	var total uint64
	for rev := 0; rev < revs; rev++ {
		total += uint64(th.Revolutions[rev].SampleCount)
	}
	if total > maxTrackSamples {
		return &TrackError{Track: tn, Detail: fmt.Sprintf("%d sample words exceeds limit", total)}
	}

	data := make([]uint16, total)
	var indexEnd [MaxRevolutions]int
	var hasFlux [MaxRevolutions]bool
	pos := 0
	for rev := 0; rev < revs; rev++ {
		n := int(th.Revolutions[rev].SampleCount)
		if n > 0 {
			raw := make([]byte, 2*n)
			if err := f.readAt(raw, int64(th.Revolutions[rev].DataOffset)); err != nil {
				return fmt.Errorf("scp: track %d: read revolution %d: %w", tn, rev, err)
			}
			for i := 0; i < n; i++ {
				w := binary.BigEndian.Uint16(raw[2*i:])
				data[pos+i] = w
				if w != 0 {
					hasFlux[rev] = true
				}
			}
			pos += n
		}
		indexEnd[rev] = pos
	}

	f.track = th
	f.trackNum = tn
	f.data = data
	f.indexEnd = indexEnd
	f.hasFlux = hasFlux
	f.loaded = true
	f.Reset()
	return nil
}

// Reset rewinds the flux cursor; the next NextFlux call restarts from
// the beginning of its revolution. Call it before switching to a
// different revolution of the loaded track.
func (f *File) Reset() {
	f.pos = 0
	f.limit = 0
}

// NextFlux returns the next flux interval of revolution rev on the
// selected track, in 25ns ticks. Zero sample words mark 65536-tick
// spans without a transition and fold into the value that follows
// them. When the revolution's samples run out the cursor restarts from
// its beginning, so the stream never ends on its own; callers bound
// iteration with Pending.
//
// NextFlux returns 0 when no track is selected, rev is out of range,
// or the revolution holds no transitions at all.
func (f *File) NextFlux(rev int) uint32 {
	if !f.loaded || rev < 0 || rev >= int(f.header.Revolutions) {
		return 0
	}

	var val uint32
	wrapped := false
	for {
		if f.pos >= f.limit {
			if wrapped {
				return 0
			}
			wrapped = true
			start := 0
			if rev > 0 {
				start = f.indexEnd[rev-1]
			}
			f.pos = start
			f.limit = f.indexEnd[rev]
			val = 0
			if f.pos >= f.limit {
				return 0
			}
		}
		t := uint32(f.data[f.pos])
		f.pos++
		if t != 0 {
			return val + t
		}

		// Overflow marker.
		val += 0x10000
	}
}

// Pending reports whether the cursor still has sample words before the
// current revolution's end. It is the stop condition for decoding one
// full revolution.
func (f *File) Pending() bool { return f.pos < f.limit }

// HasFlux reports whether revolution rev of the selected track holds
// at least one transition. A revolution without one cannot drive the
// decoder: its restarting stream never accumulates time.
func (f *File) HasFlux(rev int) bool {
	if !f.loaded || rev < 0 || rev >= int(f.header.Revolutions) {
		return false
	}
	return f.hasFlux[rev]
}

// FluxSource adapts one revolution of the selected track to the clock
// recovery loop's input. All sources of a File share its cursor.
func (f *File) FluxSource(rev int) pll.Source {
	return &fluxSource{f: f, rev: rev}
}

type fluxSource struct {
	f   *File
	rev int
}

func (s *fluxSource) NextFlux() uint32 { return s.f.NextFlux(s.rev) }

// PresentTracks returns the set of track numbers the image records
// flux for.
func (f *File) PresentTracks() *roaring.Bitmap {
	present := roaring.New()
	for i, off := range f.header.TrackOffsets {
		if off != 0 {
			present.Add(uint32(i))
		}
	}
	return present
}

// VerifyChecksum recomputes the header checksum, the wrapping 32 bit
// sum of every byte after the descriptor, and compares it to the
// stored value. Writable images carry no checksum and always verify.
func (f *File) VerifyChecksum() error {
	if f.header.IsWritable() {
		return nil
	}
	var sum uint32
	size := f.blob.Size()
	buf := make([]byte, 64*1024)
	for off := int64(checksumStart); off < size; {
		chunk := buf
		if rem := size - off; rem < int64(len(chunk)) {
			chunk = buf[:rem]
		}
		if err := f.readAt(chunk, off); err != nil {
			return fmt.Errorf("scp: %s: read for checksum: %w", f.path, err)
		}
		for _, b := range chunk {
			sum += uint32(b)
		}
		off += int64(len(chunk))
	}
	if sum != f.header.Checksum {
		return &FormatError{
			Path:   f.path,
			Field:  "checksum",
			Detail: fmt.Sprintf("computed %08x, header says %08x", sum, f.header.Checksum),
		}
	}
	return nil
}
