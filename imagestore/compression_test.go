package imagestore

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, codec Codec, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch codec {
	case CodecGzip:
		w = gzip.NewWriter(&buf)
	case CodecZstd:
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = enc
	case CodecLZ4:
		w = lz4.NewWriter(&buf)
	default:
		t.Fatalf("no writer for codec %s", codec)
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectCodec(t *testing.T) {
	payload := []byte("0123456789abcdef")

	tests := []struct {
		name string
		data []byte
		want Codec
	}{
		{name: "plain", data: payload, want: CodecNone},
		{name: "gzip", data: compress(t, CodecGzip, payload), want: CodecGzip},
		{name: "zstd", data: compress(t, CodecZstd, payload), want: CodecZstd},
		{name: "lz4", data: compress(t, CodecLZ4, payload), want: CodecLZ4},
		{name: "short", data: []byte{0x28}, want: CodecNone},
		{name: "empty", data: nil, want: CodecNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectCodec(&memoryBlob{data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecompress_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("flux sample stream "), 512)

	for _, codec := range []Codec{CodecGzip, CodecZstd, CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			blob, err := Decompress(&memoryBlob{data: compress(t, codec, payload)})
			require.NoError(t, err)
			defer blob.Close()

			assert.Equal(t, int64(len(payload)), blob.Size())

			got := make([]byte, len(payload))
			_, err = blob.ReadAt(got, 0)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			// Decompressed images stay mappable for the zero-copy path.
			_, ok := blob.(Mappable)
			assert.True(t, ok)
		})
	}
}

func TestDecompress_PassthroughUncompressed(t *testing.T) {
	orig := &memoryBlob{data: []byte("SCP uncompressed")}

	blob, err := Decompress(orig)
	require.NoError(t, err)
	assert.Same(t, orig, blob)
}

func TestDecompress_TruncatedStream(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)
	data := compress(t, CodecGzip, payload)

	_, err := Decompress(&memoryBlob{data: data[:len(data)/2]})
	require.Error(t, err)
}
