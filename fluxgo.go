package fluxgo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fluxgo/fluxgo/imagestore"
	"github.com/fluxgo/fluxgo/scp"
)

// Decoder reads one flux capture image and produces raw MFM track
// images from it.
//
// A Decoder holds a single track buffer and flux cursor, so it is not
// safe for concurrent use.
type Decoder struct {
	file    *scp.File
	logger  *Logger
	metrics MetricsCollector
}

// Open opens a capture image from the local filesystem, or from the
// store configured with WithStore. Compressed captures are detected by
// magic bytes and decompressed transparently.
func Open(path string, optFns ...Option) (*Decoder, error) {
	opts := applyOptions(optFns)
	if opts.store != nil {
		return openStore(context.Background(), opts.store, path, opts)
	}

	start := time.Now()
	f, err := scp.Open(path)
	if err != nil {
		opts.metricsCollector.RecordOpen(time.Since(start), err)
		opts.logger.LogOpen(path, 0, err)
		return nil, err
	}
	return newDecoder(f, opts, start)
}

// OpenStore opens a capture image from a store. The context bounds the
// initial fetch only; later track loads read from the open blob.
func OpenStore(ctx context.Context, store imagestore.Store, name string, optFns ...Option) (*Decoder, error) {
	return openStore(ctx, store, name, applyOptions(optFns))
}

func openStore(ctx context.Context, store imagestore.Store, name string, opts options) (*Decoder, error) {
	start := time.Now()

	fail := func(err error) (*Decoder, error) {
		opts.metricsCollector.RecordOpen(time.Since(start), err)
		opts.logger.LogOpen(name, 0, err)
		return nil, err
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return fail(fmt.Errorf("fluxgo: open %s: %w", name, err))
	}
	blob, err = func() (imagestore.Blob, error) {
		d, err := imagestore.Decompress(blob)
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		return d, nil
	}()
	if err != nil {
		return fail(fmt.Errorf("fluxgo: open %s: %w", name, err))
	}

	f, err := scp.OpenBlob(blob, name)
	if err != nil {
		_ = blob.Close()
		return fail(err)
	}
	return newDecoder(f, opts, start)
}

func newDecoder(f *scp.File, opts options, start time.Time) (*Decoder, error) {
	if opts.verifyChecksum {
		if err := f.VerifyChecksum(); err != nil {
			_ = f.Close()
			opts.metricsCollector.RecordOpen(time.Since(start), err)
			opts.logger.LogOpen(f.Path(), 0, err)
			return nil, err
		}
	}

	d := &Decoder{
		file:    f,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
	d.metrics.RecordOpen(time.Since(start), nil)
	d.logger.LogOpen(f.Path(), f.PresentTracks().GetCardinality(), nil)
	return d, nil
}

// File exposes the underlying image for direct track access.
func (d *Decoder) File() *scp.File { return d.file }

// Info writes the image header summary to w.
func (d *Decoder) Info(w io.Writer) {
	d.file.DumpHeader(w)
}

// TrackInfo loads the given track and writes its revolution summary
// to w.
func (d *Decoder) TrackInfo(w io.Writer, track int) error {
	start := time.Now()
	err := d.file.SelectTrack(track)
	d.metrics.RecordTrackLoad(time.Since(start), err)
	if err != nil {
		return err
	}
	d.file.DumpTrack(w)
	return nil
}

// Close releases the image and its underlying blob.
func (d *Decoder) Close() error {
	if d == nil || d.file == nil {
		return nil
	}
	return d.file.Close()
}
