package objectstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"deltaglider/pkg/helper/errors"
)

// MemoryStore is an in-process Store implementation used by tests. It
// mirrors S3 list/head/get/put/delete/copy semantics closely enough to
// exercise the delta service without a network dependency, grounded on
// other_examples' geckos3 filesystem-backed Storage (bucket/key tree,
// lexicographic listing, metadata sidecar) reduced to memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*memObject
}

type memObject struct {
	body         []byte
	metadata     map[string]string
	lastModified time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*memObject)}
}

func cloneMeta(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) Head(_ context.Context, fullKey string) (*ObjectMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[fullKey]
	if !ok {
		return nil, nil
	}
	return &ObjectMeta{
		Size:         int64(len(obj.body)),
		Metadata:     cloneMeta(obj.metadata),
		LastModified: obj.lastModified,
	}, nil
}

func (m *MemoryStore) Get(_ context.Context, fullKey string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[fullKey]
	if !ok {
		return nil, errors.NotFoundf("object %s not found", fullKey)
	}
	return io.NopCloser(bytes.NewReader(obj.body)), nil
}

func (m *MemoryStore) Put(_ context.Context, fullKey string, body io.Reader, _ int64, metadata map[string]string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "read put body")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[fullKey] = &memObject{body: data, metadata: cloneMeta(metadata), lastModified: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string, opts ListOptions) (ListResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	startIdx := 0
	if opts.StartAfter != "" {
		for i, k := range keys {
			if k > opts.StartAfter {
				startIdx = i
				break
			}
		}
	}
	if opts.ContinuationToken != "" {
		for i, k := range keys {
			if k == opts.ContinuationToken {
				startIdx = i
				break
			}
		}
	}
	keys = keys[startIdx:]

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	truncated := len(keys) > maxKeys
	if truncated {
		keys = keys[:maxKeys]
	}

	result := ListResult{IsTruncated: truncated}
	for _, k := range keys {
		obj := m.objects[k]
		result.Objects = append(result.Objects, ObjectSummary{
			Key:          k,
			Size:         int64(len(obj.body)),
			LastModified: obj.lastModified,
		})
	}
	if truncated {
		result.NextContinuationToken = keys[len(keys)-1]
	}
	return result, nil
}

func (m *MemoryStore) Delete(_ context.Context, fullKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, fullKey)
	return nil
}

func (m *MemoryStore) Copy(_ context.Context, srcFullKey, dstFullKey string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.objects[srcFullKey]
	if !ok {
		return errors.NotFoundf("object %s not found", srcFullKey)
	}
	meta := metadata
	if meta == nil {
		meta = cloneMeta(src.metadata)
	}
	body := make([]byte, len(src.body))
	copy(body, src.body)
	m.objects[dstFullKey] = &memObject{body: body, metadata: meta, lastModified: time.Now().UTC()}
	return nil
}
