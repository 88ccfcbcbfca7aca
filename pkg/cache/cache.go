// Package cache implements the content-addressed reference cache
// (spec.md §4.4): a TOCTOU-safe local store giving the diff engine a
// validated path to the bytes of a reference blob, keyed by deltaspace.
package cache

import "context"

// Key identifies a cached reference by deltaspace and expected content.
type Key struct {
	Bucket string
	Prefix string
	SHA256 string
}

// Cache is the reference cache port (spec.md §4.4).
type Cache interface {
	// HasRef reports whether a file is present for (bucket, prefix) and its
	// content SHA-256 equals sha.
	HasRef(ctx context.Context, bucket, prefix, sha string) (bool, error)

	// WriteRef copies src into the cache, indexed by the deltaspace pair,
	// and returns the path it was written to.
	WriteRef(ctx context.Context, bucket, prefix, src string) (string, error)

	// GetValidatedRef returns a path that, when opened, is guaranteed to be
	// the bytes whose SHA-256 is sha, along with a release func the caller
	// must invoke once done with the path. Implementations must prevent a
	// TOCTOU race where another actor swaps the cache entry between check
	// and use (spec.md §4.4's TOCTOU invariant): callers never observe
	// content whose SHA differs from the requested SHA, even under
	// concurrent cache mutation.
	GetValidatedRef(ctx context.Context, bucket, prefix, sha string) (path string, release func(), err error)

	// Evict removes the cache entry for (bucket, prefix).
	Evict(ctx context.Context, bucket, prefix string) error
}
