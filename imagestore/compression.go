package imagestore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to a stored image.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// maxImageBytes bounds the decompressed image size. Real captures stay
// well under 100 MiB even at 5 revolutions of HD media; anything larger
// is a corrupt or hostile stream.
const maxImageBytes = 1 << 30

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DetectCodec sniffs the leading magic bytes of an image.
func DetectCodec(b Blob) (Codec, error) {
	var magic [4]byte
	n, err := b.ReadAt(magic[:], 0)
	if err != nil && err != io.EOF {
		return CodecNone, err
	}
	switch {
	case n >= 2 && bytes.Equal(magic[:2], gzipMagic):
		return CodecGzip, nil
	case n >= 4 && bytes.Equal(magic[:4], zstdMagic):
		return CodecZstd, nil
	case n >= 4 && bytes.Equal(magic[:4], lz4Magic):
		return CodecLZ4, nil
	}
	return CodecNone, nil
}

// Decompress returns a Blob exposing the decompressed contents of b.
// Uncompressed images are returned unchanged; compressed ones are
// expanded into memory and the original blob is closed. Capture records
// need random access, which none of the stream codecs provide directly.
func Decompress(b Blob) (Blob, error) {
	codec, err := DetectCodec(b)
	if err != nil {
		return nil, err
	}
	if codec == CodecNone {
		return b, nil
	}

	src := io.NewSectionReader(b, 0, b.Size())

	var r io.Reader
	switch codec {
	case CodecGzip:
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("imagestore: gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case CodecZstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("imagestore: zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	case CodecLZ4:
		r = lz4.NewReader(src)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imagestore: decompress %s: %w", codec, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("imagestore: decompress %s: image exceeds %d bytes", codec, int64(maxImageBytes))
	}

	if err := b.Close(); err != nil {
		return nil, err
	}
	return &memoryBlob{data: data}, nil
}
