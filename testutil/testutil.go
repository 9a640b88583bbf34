package testutil

import (
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/fluxgo/fluxgo/scp"
)

// Header returns a baseline image header for synthetic captures: a
// 96 TPI index-aligned capture of an 8 bit Atari disk.
func Header(revolutions, endTrack uint8) scp.Header {
	return scp.Header{
		Version:     0x19,
		DiskType:    4,
		Revolutions: revolutions,
		EndTrack:    endTrack,
		Flags:       scp.FlagIndex | scp.FlagTPI,
		Sides:       scp.SideBoth,
	}
}

// BuildImage assembles a complete capture image in memory: the header,
// one record per track keyed by track number, and big endian sample
// words per revolution. Revolution durations are derived from the
// sample words and the header checksum is patched in, so the result
// verifies.
func BuildImage(h scp.Header, tracks map[int][][]uint16) []byte {
	revs := int(h.Revolutions)

	nums := make([]int, 0, len(tracks))
	for tn := range tracks {
		nums = append(nums, tn)
	}
	sort.Ints(nums)

	var body []byte
	for _, tn := range nums {
		h.TrackOffsets[tn] = uint32(scp.HeaderSize + len(body))

		th := scp.TrackHeader{TrackNumber: uint8(tn)}
		rel := uint32(scp.TrackHeaderSize(revs))
		var samples []byte
		for rev := 0; rev < revs; rev++ {
			var words []uint16
			if rev < len(tracks[tn]) {
				words = tracks[tn][rev]
			}
			th.Revolutions[rev] = scp.Revolution{
				Duration:    revolutionTicks(words),
				SampleCount: uint32(len(words)),
				DataOffset:  rel,
			}
			for _, w := range words {
				samples = binary.BigEndian.AppendUint16(samples, w)
			}
			rel += uint32(2 * len(words))
		}
		body = append(body, scp.EncodeTrackHeader(th, revs)...)
		body = append(body, samples...)
	}

	img := append(scp.EncodeHeader(h), body...)
	var sum uint32
	for _, b := range img[0x10:] {
		sum += uint32(b)
	}
	binary.LittleEndian.PutUint32(img[12:16], sum)
	return img
}

// revolutionTicks sums a revolution's sample words the way the capture
// hardware reports its duration, counting zero words as full 65536
// tick spans.
func revolutionTicks(words []uint16) uint32 {
	var total uint32
	for _, w := range words {
		if w == 0 {
			total += 0x10000
		} else {
			total += uint32(w)
		}
	}
	return total
}

// Steady returns one revolution of count identical sample words.
func Steady(count int, ticks uint16) []uint16 {
	words := make([]uint16, count)
	for i := range words {
		words[i] = ticks
	}
	return words
}

// Jittered returns one revolution of count sample words spread
// uniformly within amplitude ticks of the nominal value. The same seed
// yields the same stream.
func Jittered(seed int64, count int, ticks uint16, amplitude int) []uint16 {
	rng := rand.New(rand.NewSource(seed))
	words := make([]uint16, count)
	for i := range words {
		words[i] = uint16(int(ticks) + rng.Intn(2*amplitude+1) - amplitude)
	}
	return words
}
