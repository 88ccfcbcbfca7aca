package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/helper/log"
)

// FilesystemCache is a directory-per-deltaspace reference cache, adapted
// from the teacher's ContentAddressableStore (pkg/storage/cas.go): each
// deltaspace holds one reference.bin whose SHA-256 is checked on every
// read, and writes land through a rename so readers never observe a
// partially written file. The deltaspace directory name is sharded by an
// xxhash of (bucket, prefix) to bound directory fan-out.
type FilesystemCache struct {
	baseDir string
	logger  log.Logger

	mu sync.Mutex
}

// NewFilesystemCache roots the cache under baseDir, creating it if absent.
func NewFilesystemCache(baseDir string, logger log.Logger) (*FilesystemCache, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.StoreErrorf(err, "create cache base dir %s", baseDir)
	}
	return &FilesystemCache{baseDir: baseDir, logger: logger}, nil
}

func deltaspaceDir(baseDir, bucket, prefix string) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(bucket + "/" + prefix))
	shard := fmt.Sprintf("%016x", h.Sum64())
	return filepath.Join(baseDir, shard[:2], shard)
}

func refPath(baseDir, bucket, prefix string) string {
	return filepath.Join(deltaspaceDir(baseDir, bucket, prefix), "reference.bin")
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *FilesystemCache) HasRef(_ context.Context, bucket, prefix, sha string) (bool, error) {
	path := refPath(c.baseDir, bucket, prefix)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.StoreErrorf(err, "stat cache entry %s", path)
	}

	actual, err := sha256File(path)
	if err != nil {
		return false, errors.StoreErrorf(err, "hash cache entry %s", path)
	}
	return actual == sha, nil
}

// WriteRef copies src into the cache via write-to-temp-then-rename, so a
// concurrent reader via GetValidatedRef never observes a half-written file.
func (c *FilesystemCache) WriteRef(_ context.Context, bucket, prefix, src string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := deltaspaceDir(c.baseDir, bucket, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.StoreErrorf(err, "create deltaspace dir %s", dir)
	}

	dest := filepath.Join(dir, "reference.bin")
	tmp := dest + ".tmp-" + randSuffix()

	if err := copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return "", errors.StoreErrorf(err, "stage cache write for %s", dest)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", errors.StoreErrorf(err, "commit cache write for %s", dest)
	}

	c.logger.WithFields(map[string]interface{}{"bucket": bucket, "prefix": prefix}).Debug("wrote reference cache entry")
	return dest, nil
}

// GetValidatedRef copies the cache entry into a caller-private scratch file
// and verifies its SHA-256 before returning, so the returned path can never
// be swapped out from under the caller after validation (spec.md §4.4's
// TOCTOU invariant). The release func removes the scratch copy.
func (c *FilesystemCache) GetValidatedRef(_ context.Context, bucket, prefix, sha string) (string, func(), error) {
	src := refPath(c.baseDir, bucket, prefix)

	scratch, err := os.CreateTemp("", "deltaglider-ref-*.bin")
	if err != nil {
		return "", nil, errors.StoreErrorf(err, "create scratch ref file")
	}
	scratchPath := scratch.Name()
	scratch.Close()

	if err := copyFile(src, scratchPath); err != nil {
		os.Remove(scratchPath)
		return "", nil, errors.StoreErrorf(err, "copy cache entry %s to scratch", src)
	}

	actual, err := sha256File(scratchPath)
	if err != nil {
		os.Remove(scratchPath)
		return "", nil, errors.StoreErrorf(err, "hash scratch ref copy")
	}
	if actual != sha {
		os.Remove(scratchPath)
		return "", nil, errors.IntegrityMismatchf("cache entry %s/%s: expected sha256 %s, got %s", bucket, prefix, sha, actual)
	}

	release := func() { os.Remove(scratchPath) }
	return scratchPath, release, nil
}

func (c *FilesystemCache) Evict(_ context.Context, bucket, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := deltaspaceDir(c.baseDir, bucket, prefix)
	if err := os.RemoveAll(dir); err != nil {
		return errors.StoreErrorf(err, "evict cache dir %s", dir)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

var randSuffixCounter uint64
var randSuffixMu sync.Mutex

// randSuffix avoids pulling in a random-number dependency for scratch-file
// uniqueness; the cache already serializes WriteRef under c.mu, so a
// monotonic counter is sufficient to avoid collisions.
func randSuffix() string {
	randSuffixMu.Lock()
	defer randSuffixMu.Unlock()
	randSuffixCounter++
	return fmt.Sprintf("%d-%d", os.Getpid(), randSuffixCounter)
}
