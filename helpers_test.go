package fluxgo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluxgo/fluxgo"
	"github.com/fluxgo/fluxgo/imagestore"
)

func openDecoder(t *testing.T, img []byte, opts ...fluxgo.Option) *fluxgo.Decoder {
	t.Helper()
	store := imagestore.NewMemory()
	require.NoError(t, store.Put(context.Background(), "test.scp", img))
	d, err := fluxgo.OpenStore(context.Background(), store, "test.scp", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// expectFilled asserts every byte of b equals want.
func expectFilled(t *testing.T, b []byte, want byte) {
	t.Helper()
	for i, got := range b {
		if got != want {
			t.Fatalf("byte %d: got %#02x, want %#02x", i, got, want)
		}
	}
}
