package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync/atomic"

	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/helper/log"
)

type memEntry struct {
	data   []byte
	sha256 string
}

// MemoryCache is an in-process reference cache backed by the generic
// LRUCache (pkg/cache/lru_cache.go), keyed by deltaspace. Selected by
// DG_CACHE_BACKEND=memory and sized via DG_CACHE_MEMORY_SIZE_MB; entries
// are materialized to a tempfile on GetValidatedRef since the diff engine
// ports operate on paths. totalBytes tracks the aggregate size of cached
// references, since the LRU's capacity is an entry count and a handful of
// large deltaspace references can dwarf DG_CACHE_MEMORY_SIZE_MB on its own.
type MemoryCache struct {
	entries    *LRUCache[string, memEntry]
	totalBytes int64
	logger     log.Logger
}

// NewMemoryCache creates a MemoryCache holding at most maxEntries deltaspace
// references. DG_CACHE_MEMORY_SIZE_MB is translated into an entry count by
// the caller (cmd/service.go's buildCache); logger receives a debug line whenever capacity
// eviction drops a reference, since that forces the next GetValidatedRef for
// that deltaspace to re-fetch or re-derive it.
func NewMemoryCache(maxEntries int, logger log.Logger) *MemoryCache {
	c := &MemoryCache{entries: NewLRUCache[string, memEntry](maxEntries), logger: logger}
	c.entries.SetOnEvict(func(key string, value memEntry) {
		atomic.AddInt64(&c.totalBytes, -int64(len(value.data)))
		c.logger.WithFields(map[string]interface{}{
			"deltaspace": key,
			"bytes":      len(value.data),
		}).Debug("evicted deltaspace reference from memory cache")
	})
	return c
}

// Footprint reports the current entry count and aggregate byte size of
// cached references. adminserver's healthz handler surfaces this for
// operators sizing DG_CACHE_MEMORY_SIZE_MB, when the configured cache
// backend is memory.
func (c *MemoryCache) Footprint() (entries int, bytes int64) {
	return c.entries.Size(), atomic.LoadInt64(&c.totalBytes)
}

func memKey(bucket, prefix string) string { return bucket + "\x00" + prefix }

func (c *MemoryCache) HasRef(_ context.Context, bucket, prefix, sha string) (bool, error) {
	e, ok := c.entries.Get(memKey(bucket, prefix))
	if !ok {
		return false, nil
	}
	return e.sha256 == sha, nil
}

func (c *MemoryCache) WriteRef(_ context.Context, bucket, prefix, src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", errors.StoreErrorf(err, "read ref source %s", src)
	}
	sum := sha256.Sum256(data)
	key := memKey(bucket, prefix)
	if old, ok := c.entries.Get(key); ok {
		atomic.AddInt64(&c.totalBytes, -int64(len(old.data)))
	}
	c.entries.Put(key, memEntry{data: data, sha256: hex.EncodeToString(sum[:])})
	atomic.AddInt64(&c.totalBytes, int64(len(data)))
	return "memory://" + key, nil
}

// GetValidatedRef materializes the cached bytes to a caller-private temp
// file and verifies SHA-256 against the handle held by the LRU entry, which
// cannot be mutated in place (Put always replaces the map value wholesale),
// satisfying the TOCTOU invariant for the in-memory backend.
func (c *MemoryCache) GetValidatedRef(_ context.Context, bucket, prefix, sha string) (string, func(), error) {
	e, ok := c.entries.Get(memKey(bucket, prefix))
	if !ok {
		return "", nil, errors.StoreErrorf(nil, "no cache entry for %s/%s", bucket, prefix)
	}
	if e.sha256 != sha {
		return "", nil, errors.IntegrityMismatchf("cache entry %s/%s: expected sha256 %s, got %s", bucket, prefix, sha, e.sha256)
	}

	scratch, err := os.CreateTemp("", "deltaglider-ref-*.bin")
	if err != nil {
		return "", nil, errors.StoreErrorf(err, "create scratch ref file")
	}
	if _, err := scratch.Write(e.data); err != nil {
		scratch.Close()
		os.Remove(scratch.Name())
		return "", nil, errors.StoreErrorf(err, "write scratch ref file")
	}
	scratch.Close()

	path := scratch.Name()
	return path, func() { os.Remove(path) }, nil
}

func (c *MemoryCache) Evict(_ context.Context, bucket, prefix string) error {
	key := memKey(bucket, prefix)
	if old, ok := c.entries.Get(key); ok {
		atomic.AddInt64(&c.totalBytes, -int64(len(old.data)))
	}
	c.entries.Remove(key)
	return nil
}
