// Package scp reads SuperCard Pro flux capture images.
//
// An SCP image stores, per track, the raw timings between magnetic flux
// transitions as sampled by the capture hardware at 25ns resolution,
// for one to five revolutions of the disk. The package parses the
// container, loads track records on demand and iterates the timing
// stream of a chosen revolution:
//
//	f, err := scp.Open("disk.scp")
//	if err != nil { ... }
//	defer f.Close()
//
//	if err := f.SelectTrack(0); err != nil { ... }
//	f.Reset()
//	t := f.NextFlux(0) // ticks of 25ns until the next transition
//
// Sample words are big endian; a zero word is not a timing but an
// overflow marker adding 65536 ticks to the next value. When a
// revolution's samples run out, iteration restarts at the beginning of
// the same revolution so downstream consumers always see a continuous
// stream; Pending reports whether the current pass has data left.
//
// Images may come from the local filesystem or any imagestore.Store,
// including compressed (gzip, zstd, lz4) archives.
package scp
