// Package cache provides a byte-oriented block cache for remote image
// access. Capture images are immutable, so entries never go stale; they
// are only dropped under memory pressure or when an image is deleted.
package cache
