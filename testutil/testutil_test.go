package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxgo/fluxgo/scp"
)

func TestBuildImage_DecodesBack(t *testing.T) {
	img := BuildImage(Header(2, 2), map[int][][]uint16{
		0: {{100, 200}, {300}},
		1: {Steady(4, 80)},
	})

	h, err := scp.DecodeHeader(img, "synthetic")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), h.Revolutions)
	assert.NotZero(t, h.TrackOffsets[0])
	assert.NotZero(t, h.TrackOffsets[1])
	assert.Zero(t, h.TrackOffsets[2])

	// Track 0's record directly follows the header.
	base := h.TrackOffsets[0]
	th, err := scp.DecodeTrackHeader(img[base:], 2, base)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), th.TrackNumber)
	assert.Equal(t, uint32(2), th.Revolutions[0].SampleCount)
	assert.Equal(t, uint32(300), th.Revolutions[1].Duration)
}

func TestBuildImage_ChecksumVerifies(t *testing.T) {
	img := BuildImage(Header(1, 1), map[int][][]uint16{0: {{100, 0, 200}}})

	var sum uint32
	for _, b := range img[0x10:] {
		sum += uint32(b)
	}
	h, err := scp.DecodeHeader(img, "synthetic")
	require.NoError(t, err)
	assert.Equal(t, sum, h.Checksum)

	// Zero words count as full overflow spans.
	base := h.TrackOffsets[0]
	th, err := scp.DecodeTrackHeader(img[base:], 1, base)
	require.NoError(t, err)
	assert.Equal(t, uint32(100+0x10000+200), th.Revolutions[0].Duration)
}

func TestSteady(t *testing.T) {
	words := Steady(3, 80)
	assert.Equal(t, []uint16{80, 80, 80}, words)
}

func TestJittered(t *testing.T) {
	a := Jittered(7, 100, 80, 5)
	b := Jittered(7, 100, 80, 5)
	assert.Equal(t, a, b)

	for _, w := range a {
		assert.GreaterOrEqual(t, w, uint16(75))
		assert.LessOrEqual(t, w, uint16(85))
	}
	assert.NotEqual(t, Steady(100, 80), a)
}
