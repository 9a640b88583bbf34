package benchmark_test

import (
	"context"
	"io"
	"testing"

	"github.com/fluxgo/fluxgo"
	"github.com/fluxgo/fluxgo/imagestore"
	"github.com/fluxgo/fluxgo/internal/cache"
	"github.com/fluxgo/fluxgo/pll"
	"github.com/fluxgo/fluxgo/testutil"
)

// cellTicks is the 2us double density MFM cell in 25ns capture ticks.
const cellTicks = 80

const benchTracks = 84

func buildStore(b *testing.B, revolutions uint8, samples, jitter int) imagestore.Store {
	b.Helper()

	tracks := map[int][][]uint16{}
	for track := 0; track < benchTracks; track++ {
		revs := make([][]uint16, revolutions)
		for r := range revs {
			if jitter > 0 {
				revs[r] = testutil.Jittered(int64(track*8+r), samples, cellTicks, jitter)
			} else {
				revs[r] = testutil.Steady(samples, cellTicks)
			}
		}
		tracks[track] = revs
	}

	store := imagestore.NewMemory()
	img := testutil.BuildImage(testutil.Header(revolutions, benchTracks), tracks)
	if err := store.Put(context.Background(), "bench.scp", img); err != nil {
		b.Fatal(err)
	}
	return store
}

func openBench(b *testing.B, store imagestore.Store) *fluxgo.Decoder {
	b.Helper()

	d, err := fluxgo.OpenStore(context.Background(), store, "bench.scp")
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { d.Close() })
	return d
}

func BenchmarkWriteMFM(b *testing.B) {
	b.ReportAllocs()

	d := openBench(b, buildStore(b, 1, 50000, 0))

	b.SetBytes(int64(fluxgo.TrackCount) * fluxgo.TrackHalfBits / 8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.WriteMFM(io.Discard, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteMFM_Jittered(b *testing.B) {
	b.ReportAllocs()

	d := openBench(b, buildStore(b, 1, 50000, 5))

	b.SetBytes(int64(fluxgo.TrackCount) * fluxgo.TrackHalfBits / 8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.WriteMFM(io.Discard, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteMFM_Cached(b *testing.B) {
	b.ReportAllocs()

	inner := buildStore(b, 1, 50000, 0)
	store := imagestore.NewCachingStore(inner, cache.NewLRU(64<<20), imagestore.DefaultBlockSize)
	d := openBench(b, store)

	// Prime the cache so the loop measures the hit path.
	if err := d.WriteMFM(io.Discard, 0); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(fluxgo.TrackCount) * fluxgo.TrackHalfBits / 8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.WriteMFM(io.Discard, 0); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSelectTrack alternates between two tracks so every call
// takes the record load path rather than the reselect fast path.
func BenchmarkSelectTrack(b *testing.B) {
	b.ReportAllocs()

	d := openBench(b, buildStore(b, 1, 50000, 0))
	f := d.File()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.SelectTrack(i % 2); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOpen(b *testing.B) {
	b.ReportAllocs()

	store := buildStore(b, 1, 50000, 0)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, err := fluxgo.OpenStore(ctx, store, "bench.scp")
		if err != nil {
			b.Fatal(err)
		}
		d.Close()
	}
}

type loopSource struct {
	words []uint16
	i     int
}

func (s *loopSource) NextFlux() uint32 {
	w := s.words[s.i%len(s.words)]
	s.i++
	return uint32(w)
}

func BenchmarkPLL(b *testing.B) {
	b.ReportAllocs()

	p := pll.New(&loopSource{words: testutil.Jittered(1, 1<<16, cellTicks, 5)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.NextBit()
	}
}
