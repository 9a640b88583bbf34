package fluxgo_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fluxgo/fluxgo"
	"github.com/fluxgo/fluxgo/imagestore"
	"github.com/fluxgo/fluxgo/scp"
	"github.com/fluxgo/fluxgo/testutil"
)

// exampleImage builds a two track capture with one revolution per
// track, every flux interval sitting exactly on the nominal cell clock.
func exampleImage() []byte {
	return testutil.BuildImage(testutil.Header(1, 2), map[int][][]uint16{
		0: {testutil.Steady(101, 80)},
		1: {testutil.Steady(101, 80)},
	})
}

// Example demonstrates decoding a capture image into a raw MFM disk
// image.
func Example() {
	ctx := context.Background()
	store := imagestore.NewMemory()
	_ = store.Put(ctx, "game.scp", exampleImage())

	decoder, err := fluxgo.OpenStore(ctx, store, "game.scp")
	if err != nil {
		log.Fatal(err)
	}
	defer decoder.Close()

	// Decode the first revolution of every track
	var disk bytes.Buffer
	if err := decoder.WriteMFM(&disk, 0); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Decoded %d bytes\n", disk.Len())
	// Output: Decoded 2048000 bytes
}

// Example_header demonstrates inspecting a capture before decoding it.
func Example_header() {
	ctx := context.Background()
	store := imagestore.NewMemory()
	_ = store.Put(ctx, "game.scp", exampleImage())

	decoder, err := fluxgo.OpenStore(ctx, store, "game.scp")
	if err != nil {
		log.Fatal(err)
	}
	defer decoder.Close()

	h := decoder.File().Header()
	fmt.Println(h.DiskTypeName())
	fmt.Println(h.Revolutions)
	fmt.Println(decoder.File().PresentTracks().ToArray())
	// Output:
	// ATARI 800
	// 1
	// [0 1]
}

// Example_metrics demonstrates collecting decode metrics.
func Example_metrics() {
	ctx := context.Background()
	store := imagestore.NewMemory()
	_ = store.Put(ctx, "game.scp", exampleImage())

	collector := &fluxgo.BasicMetricsCollector{}
	decoder, err := fluxgo.OpenStore(ctx, store, "game.scp",
		fluxgo.WithMetricsCollector(collector),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer decoder.Close()

	if err := decoder.WriteMFM(io.Discard, 0); err != nil {
		log.Fatal(err)
	}

	stats := collector.GetStats()
	fmt.Printf("decoded=%d filled=%d\n", stats.TrackDecodeCount-stats.TrackFilledCount, stats.TrackFilledCount)
	// Output: decoded=2 filled=158
}

// Example_verifyChecksum demonstrates rejecting damaged images up front.
func Example_verifyChecksum() {
	ctx := context.Background()
	store := imagestore.NewMemory()

	damaged := exampleImage()
	damaged[len(damaged)-1]++
	_ = store.Put(ctx, "game.scp", damaged)

	_, err := fluxgo.OpenStore(ctx, store, "game.scp",
		fluxgo.WithVerifyChecksum(true),
	)
	var ferr *scp.FormatError
	if errors.As(err, &ferr) {
		fmt.Println("invalid", ferr.Field)
	}
	// Output: invalid checksum
}
