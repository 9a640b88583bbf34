package cache

import "context"

// Key identifies one fixed-size block of a named image.
type Key struct {
	// Image is the store-relative name of the capture image.
	Image string
	// Block is the block index within the image.
	Block uint64
}

// BlockCache is a cache for immutable image blocks. Returned slices must
// be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok is false if the block is missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. The cache retains b; callers must not modify it.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns hit and miss counts.
	Stats() (hits, misses int64)
	// Close releases any resources held by the cache.
	Close() error
}
