package imagestore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/fluxgo/fluxgo/internal/cache"
)

// DefaultBlockSize is the cache block granularity. Track records run
// from a few KiB to ~1 MiB, so 256 KiB keeps a whole revolution's worth
// of samples in one or two blocks without over-fetching on header reads.
const DefaultBlockSize = 256 << 10

// fetchConcurrency bounds parallel backend reads during cache fill.
const fetchConcurrency = 8

// CachingStore wraps a Store with a read-through block cache. It is
// meant for remote backends where every ReadAt is a network round trip.
type CachingStore struct {
	inner     Store
	cache     cache.BlockCache
	blockSize int64
}

var _ Store = (*CachingStore)(nil)

// NewCachingStore creates a caching wrapper around inner. A blockSize
// of zero or less selects DefaultBlockSize.
func NewCachingStore(inner Store, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{inner: inner, cache: c, blockSize: blockSize}
}

// Open opens an image for reading through the cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		name:      name,
		inner:     b,
		cache:     s.cache,
		blockSize: s.blockSize,
		size:      b.Size(),
	}, nil
}

// Create passes through to the inner store.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put writes through to the inner store and drops stale cached blocks.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	s.cache.Invalidate(func(key cache.Key) bool { return key.Image == name })
	return nil
}

// Delete removes the image and its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.inner.Delete(ctx, name); err != nil {
		return err
	}
	s.cache.Invalidate(func(key cache.Key) bool { return key.Image == name })
	return nil
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// CachingBlob serves ReadAt from block-aligned cache entries, fetching
// missing runs of blocks from the backend in parallel.
type CachingBlob struct {
	name      string
	inner     Blob
	cache     cache.BlockCache
	blockSize int64
	size      int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.size
}

func (b *CachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, errors.New("imagestore: negative read offset")
	}
	if off >= b.size {
		return 0, io.EOF
	}

	ctx := context.Background()

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersection of this block with the requested range.
		copyStart := max(blkStart, off)
		copyEnd := min(blkStart+b.blockSize, off+int64(len(p)))
		if copyEnd <= copyStart {
			continue
		}

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}

		srcOff := copyStart - blkStart
		if srcOff >= int64(len(data)) {
			break
		}
		n := copy(p[copyStart-off:copyEnd-off], data[srcOff:])
		total += n
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads every missing block in [startBlock, endBlock],
// coalescing contiguous misses into single backend reads.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct {
		start, count int64
	}

	var missing []run
	cur := run{start: -1}
	for blk := startBlock; blk <= endBlock; blk++ {
		key := cache.Key{Image: b.name, Block: uint64(blk)}
		if _, ok := b.cache.Get(ctx, key); ok {
			if cur.start != -1 {
				missing = append(missing, cur)
				cur = run{start: -1}
			}
			continue
		}
		if cur.start == -1 {
			cur = run{start: blk, count: 1}
		} else {
			cur.count++
		}
	}
	if cur.start != -1 {
		missing = append(missing, cur)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteLen := r.count * b.blockSize
			if byteStart >= b.size {
				return nil
			}
			if byteStart+byteLen > b.size {
				byteLen = b.size - byteStart
			}

			buf := make([]byte, byteLen)
			n, err := b.inner.ReadAt(buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))

				// Copy each block out so the run buffer is not pinned.
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])
				b.cache.Set(ctx, cache.Key{Image: b.name, Block: uint64(r.start + i)}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := cache.Key{Image: b.name, Block: uint64(blk)}
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, buf)
	}
	return buf, nil
}
