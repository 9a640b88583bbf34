// Package imagestore provides storage abstraction for flux capture images.
//
// Store is the interface for reading and writing immutable capture
// images. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - Local: local filesystem, mmap-backed reads
//   - Memory: in-memory store for tests
//   - s3.Store: Amazon S3 with ranged reads and streaming uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Wrappers
//
//   - NewCachingStore: block cache in front of a remote store
//   - NewThrottledStore: byte-rate limit on reads and writes
//   - NewFaultyStore: error injection for exercising failure paths
//
// Decompress wraps a Blob holding a gzip, zstd or lz4 compressed image
// and presents the decompressed bytes. Capture tools commonly compress
// images for archival; decoding works on the expanded form only.
package imagestore
