// Package fluxgo decodes SuperCard Pro (SCP) flux capture images into
// raw MFM track images.
//
// An SCP image stores, for every disk track, the time between magnetic
// flux transitions across one or more revolutions, sampled in 25ns
// ticks. Package fluxgo recovers the bit clock from those timings with
// a software phase-locked loop and writes the demodulated half-bit
// stream as a raw image of 160 fixed-size tracks.
//
// # Quick Start
//
// Local file:
//
//	d, err := fluxgo.Open("disk.scp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	out, _ := os.Create("disk.mfm")
//	defer out.Close()
//	if err := d.WriteMFM(out, 0); err != nil {
//	    log.Fatal(err)
//	}
//
// Compressed captures (gzip, zstd, lz4 frame) are detected by magic
// bytes and decompressed transparently.
//
// Remote store:
//
//	client := s3.NewFromConfig(cfg)
//	store := s3store.NewStore(client, "captures", "amiga/")
//	d, err := fluxgo.OpenStore(ctx, store, "workbench.scp.gz")
//
// # Diagnostics
//
// Info prints the image header the way the capture software reports
// it; TrackInfo summarizes one track's revolutions:
//
//	d.Info(os.Stdout)
//	d.TrackInfo(os.Stdout, 0)
//
// # Observability
//
// Logging and metrics are off by default and opt in:
//
//	metrics := &fluxgo.BasicMetricsCollector{}
//	d, _ := fluxgo.Open("disk.scp",
//	    fluxgo.WithLogLevel(slog.LevelDebug),
//	    fluxgo.WithMetricsCollector(metrics),
//	)
//
// # Key Features
//
//   - Software PLL clock recovery (2us centre, 10% capture range)
//   - Multi-revolution captures, decode any recorded revolution
//   - Absent or damaged tracks substituted with unformatted filler
//   - mmap-backed zero-copy local reads
//   - Pluggable capture archives (local, memory, S3, MinIO) with
//     block caching and rate limiting
//   - Transparent gzip/zstd/lz4 decompression
package fluxgo
