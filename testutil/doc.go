// Package testutil builds synthetic capture images for tests and
// benchmarks.
//
// This package is intended for use in tests and benchmarks only.
// Images are assembled entirely in memory with valid headers, track
// records and checksums, so they open through the same code paths as
// real captures.
//
// # Building Images
//
//	img := testutil.BuildImage(testutil.Header(1, 2), map[int][][]uint16{
//	    0: {testutil.Steady(101, 80)},
//	    1: {testutil.Steady(101, 80)},
//	})
//
// # Flux Streams
//
//	testutil.Steady(101, 80)          // cells exactly on the nominal clock
//	testutil.Jittered(7, 101, 80, 5)  // cells with seeded uniform jitter
package testutil
