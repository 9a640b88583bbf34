package imagestore

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore wraps a Store with a byte-rate limit shared by all
// blobs it opens. It keeps bulk decodes from saturating the uplink to a
// remote backend.
type ThrottledStore struct {
	inner   Store
	limiter *rate.Limiter
}

var _ Store = (*ThrottledStore)(nil)

// NewThrottledStore creates a throttling wrapper allowing bytesPerSec
// of combined read and write traffic.
func NewThrottledStore(inner Store, bytesPerSec int) *ThrottledStore {
	return &ThrottledStore{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

// Open opens an image whose reads count against the rate limit.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{inner: b, limiter: s.limiter}, nil
}

// Create opens an image whose writes count against the rate limit.
func (s *ThrottledStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledWritableBlob{inner: w, limiter: s.limiter}, nil
}

// Put writes an image, waiting for rate-limit capacity first.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := waitBytes(ctx, s.limiter, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Delete passes through to the inner store.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// waitBytes blocks until n bytes of capacity are available, reserving
// at most a burst at a time so requests larger than the burst still
// make progress.
func waitBytes(ctx context.Context, l *rate.Limiter, n int) error {
	for n > 0 {
		chunk := min(n, l.Burst())
		if err := l.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

type throttledBlob struct {
	inner   Blob
	limiter *rate.Limiter
}

func (b *throttledBlob) ReadAt(p []byte, off int64) (int, error) {
	if err := waitBytes(context.Background(), b.limiter, len(p)); err != nil {
		return 0, err
	}
	return b.inner.ReadAt(p, off)
}

func (b *throttledBlob) Close() error {
	return b.inner.Close()
}

func (b *throttledBlob) Size() int64 {
	return b.inner.Size()
}

type throttledWritableBlob struct {
	inner   WritableBlob
	limiter *rate.Limiter
}

func (b *throttledWritableBlob) Write(p []byte) (int, error) {
	if err := waitBytes(context.Background(), b.limiter, len(p)); err != nil {
		return 0, err
	}
	return b.inner.Write(p)
}

func (b *throttledWritableBlob) Sync() error {
	return b.inner.Sync()
}

func (b *throttledWritableBlob) Close() error {
	return b.inner.Close()
}
