package scp

import (
	"encoding/binary"
	"fmt"
)

// Image container constants.
const (
	// Signature opens every image file.
	Signature = "SCP"
	// TrackSignature opens every track record.
	TrackSignature = "TRK"

	// HeaderSize is the fixed image header: 16 descriptor bytes plus
	// the track offset table.
	HeaderSize = 0x10 + 4*MaxTracks

	// MaxTracks is the size of the track offset table. Images hold up
	// to 84 cylinders with two sides.
	MaxTracks = 168

	// MaxRevolutions is the most revolutions a track record can carry.
	MaxRevolutions = 5

	// checksumStart is the file offset where checksum coverage begins.
	checksumStart = 0x10
)

// Header flag bits.
const (
	// FlagIndex is set when capture started at the index pulse.
	FlagIndex = 0x01
	// FlagTPI is set for 96 TPI drives, clear for 48 TPI.
	FlagTPI = 0x02
	// FlagRPM is set for 360 RPM drives, clear for 300 RPM.
	FlagRPM = 0x04
	// FlagNormalized is set when flux timings were normalized, trading
	// fidelity for compressibility.
	FlagNormalized = 0x08
	// FlagWritable is set for read/write capable images. Such images
	// carry no checksum and a single revolution.
	FlagWritable = 0x10
	// FlagFooter is set when an extension footer follows the image.
	FlagFooter = 0x20
)

// Side values for Header.Sides.
const (
	SideBoth   = 0
	SideBottom = 1
	SideTop    = 2
)

// diskTypeNames maps the disk type byte to the capture software's
// platform names.
var diskTypeNames = map[uint8]string{
	0: "CBM",
	1: "AMIGA",
	2: "APPLE II",
	3: "ATARI ST",
	4: "ATARI 800",
	5: "MAC 800",
	6: "360K/720K",
	7: "1.44MB",
}

// Header is the decoded image header.
type Header struct {
	// Version holds the capture software version, high nibble major,
	// low nibble minor. Zero when a footer carries the version instead.
	Version uint8
	// DiskType identifies the source platform.
	DiskType uint8
	// Revolutions is how many revolutions each track record stores.
	Revolutions uint8
	// StartTrack and EndTrack bound the captured range. EndTrack is
	// exclusive.
	StartTrack uint8
	EndTrack   uint8
	// Flags describes the capture, see the Flag constants.
	Flags uint8
	// CellWidth is the sample word width in bits; zero means 16.
	CellWidth uint8
	// Sides records which disk sides are present.
	Sides uint8
	// Checksum sums all bytes after the descriptor, wrapping at 32
	// bits. Zero for writable images.
	Checksum uint32
	// TrackOffsets locates each track record in the file. Zero marks a
	// track with no captured flux.
	TrackOffsets [MaxTracks]uint32
}

// DecodeHeader parses an image header. path is used in error messages
// only.
func DecodeHeader(buf []byte, path string) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, &FormatError{Path: path, Field: "header", Detail: fmt.Sprintf("%d bytes, want %d", len(buf), HeaderSize)}
	}
	if string(buf[0:3]) != Signature {
		return h, &FormatError{Path: path, Field: "signature", Detail: fmt.Sprintf("%q", buf[0:3])}
	}

	h.Version = buf[3]
	h.DiskType = buf[4]
	h.Revolutions = buf[5]
	h.StartTrack = buf[6]
	h.EndTrack = buf[7]
	h.Flags = buf[8]
	h.CellWidth = buf[9]
	h.Sides = buf[10]
	h.Checksum = binary.LittleEndian.Uint32(buf[12:16])

	if h.Revolutions == 0 || h.Revolutions > MaxRevolutions {
		return h, &FormatError{Path: path, Field: "revolution count", Detail: fmt.Sprintf("%d", h.Revolutions)}
	}
	if h.CellWidth != 0 && h.CellWidth != 16 {
		return h, &FormatError{Path: path, Field: "cell width", Detail: fmt.Sprintf("%d bits unsupported", h.CellWidth)}
	}

	for i := 0; i < MaxTracks; i++ {
		h.TrackOffsets[i] = binary.LittleEndian.Uint32(buf[0x10+4*i:])
	}
	return h, nil
}

// EncodeHeader serializes an image header.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:3], Signature)
	buf[3] = h.Version
	buf[4] = h.DiskType
	buf[5] = h.Revolutions
	buf[6] = h.StartTrack
	buf[7] = h.EndTrack
	buf[8] = h.Flags
	buf[9] = h.CellWidth
	buf[10] = h.Sides
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksum)
	for i := 0; i < MaxTracks; i++ {
		binary.LittleEndian.PutUint32(buf[0x10+4*i:], h.TrackOffsets[i])
	}
	return buf
}

// VersionString renders the version byte as "major.minor".
func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Version>>4, h.Version&0xf)
}

// DiskTypeName returns the platform name for the disk type byte, or
// its decimal value when unknown.
func (h Header) DiskTypeName() string {
	if name, ok := diskTypeNames[h.DiskType]; ok {
		return name
	}
	return fmt.Sprintf("%d", h.DiskType)
}

// SidesName renders the sides byte.
func (h Header) SidesName() string {
	switch h.Sides {
	case SideBoth:
		return "Both"
	case SideBottom:
		return "Bottom only"
	case SideTop:
		return "Top only"
	default:
		return fmt.Sprintf("%d", h.Sides)
	}
}

// FlagsString renders the flags the way the capture software reports
// them, e.g. "<96TPI 300RPM Index>".
func (h Header) FlagsString() string {
	s := "<"
	if h.Flags&FlagTPI != 0 {
		s += "96TPI"
	} else {
		s += "48TPI"
	}
	if h.Flags&FlagRPM != 0 {
		s += " 360RPM"
	} else {
		s += " 300RPM"
	}
	if h.Flags&FlagIndex != 0 {
		s += " Index"
	}
	if h.Flags&FlagNormalized != 0 {
		s += " Normalized"
	}
	if h.Flags&FlagWritable != 0 {
		s += " Writeable"
	}
	if h.Flags&FlagFooter != 0 {
		s += " Footer"
	}
	return s + ">"
}

// EffectiveCellWidth returns the sample width in bits, resolving the
// zero default.
func (h Header) EffectiveCellWidth() int {
	if h.CellWidth == 0 {
		return 16
	}
	return int(h.CellWidth)
}

// IsWritable reports whether the image is read/write capable.
func (h Header) IsWritable() bool {
	return h.Flags&FlagWritable != 0
}

// Revolution describes one revolution within a track record.
type Revolution struct {
	// Duration is the index-to-index time in 25ns ticks.
	Duration uint32
	// SampleCount is the number of 16 bit sample words.
	SampleCount uint32
	// DataOffset locates the sample words. On disk it is relative to
	// the track record; DecodeTrackHeader rebases it to the file start.
	DataOffset uint32
}

// DurationMillis returns the revolution time in milliseconds.
func (r Revolution) DurationMillis() float64 {
	return float64(r.Duration) * 0.000025
}

// TrackHeader is a decoded track record header.
type TrackHeader struct {
	// TrackNumber is the track index; for double sided disks the
	// cylinder is TrackNumber/2 and the head TrackNumber%2.
	TrackNumber uint8
	// Revolutions holds per-revolution descriptors; only the image's
	// revolution count is meaningful.
	Revolutions [MaxRevolutions]Revolution
}

// TrackHeaderSize returns the on-disk size of a track record header for
// the given revolution count.
func TrackHeaderSize(revolutions int) int {
	return 4 + 12*revolutions
}

// DecodeTrackHeader parses a track record header holding revolutions
// entries, rebasing data offsets against base, the record's own file
// offset.
func DecodeTrackHeader(buf []byte, revolutions int, base uint32) (TrackHeader, error) {
	var th TrackHeader
	if len(buf) < TrackHeaderSize(revolutions) {
		return th, fmt.Errorf("track header: %d bytes, want %d", len(buf), TrackHeaderSize(revolutions))
	}
	if string(buf[0:3]) != TrackSignature {
		return th, fmt.Errorf("bad track signature %q", buf[0:3])
	}
	th.TrackNumber = buf[3]
	for i := 0; i < revolutions; i++ {
		rec := buf[4+12*i:]
		th.Revolutions[i] = Revolution{
			Duration:    binary.LittleEndian.Uint32(rec[0:4]),
			SampleCount: binary.LittleEndian.Uint32(rec[4:8]),
			DataOffset:  base + binary.LittleEndian.Uint32(rec[8:12]),
		}
	}
	return th, nil
}

// EncodeTrackHeader serializes a track record header with revolutions
// entries. DataOffsets are written as is; callers building images keep
// them relative to the record.
func EncodeTrackHeader(th TrackHeader, revolutions int) []byte {
	buf := make([]byte, TrackHeaderSize(revolutions))
	copy(buf[0:3], TrackSignature)
	buf[3] = th.TrackNumber
	for i := 0; i < revolutions; i++ {
		rec := buf[4+12*i:]
		binary.LittleEndian.PutUint32(rec[0:4], th.Revolutions[i].Duration)
		binary.LittleEndian.PutUint32(rec[4:8], th.Revolutions[i].SampleCount)
		binary.LittleEndian.PutUint32(rec[8:12], th.Revolutions[i].DataOffset)
	}
	return buf
}
