package imagestore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named image does not exist.
//
// Implementations should return an error satisfying
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for accessing immutable capture images.
type Store interface {
	// Open opens an image for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens an image for writing. The image becomes visible on
	// Close; partially written images must never be observable.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes an image atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes an image.
	Delete(ctx context.Context, name string) error
	// List returns image names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a capture image.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the image in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs that expose their
// contents as a byte slice without copying.
type Mappable interface {
	// Bytes returns the underlying byte slice. The slice is valid until
	// the Blob is closed.
	Bytes() ([]byte, error)
}

// WritableBlob is a write-only handle to an image being created.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync flushes written data to stable storage where the backend
	// supports it.
	Sync() error
}
