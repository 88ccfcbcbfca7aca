package stats

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"deltaglider/pkg/cache"
	"deltaglider/pkg/clock"
	"deltaglider/pkg/deltaservice"
	"deltaglider/pkg/diffengine"
	"deltaglider/pkg/hash"
	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/metrics"
	"deltaglider/pkg/objectstore"
)

func newTestAggregator(t *testing.T) (*Aggregator, objectstore.Store, *deltaservice.Service) {
	t.Helper()
	store := objectstore.NewMemoryStore()
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	svc := deltaservice.New(store, cache.NewMemoryCache(16, logger), diffengine.NewInProcessEngine(), hash.NewSHA256Hasher(),
		clock.NewUTCClock(), logger, metrics.NewNoopSink(), 0.9)
	agg := &Aggregator{Store: store, Logger: logger}
	return agg, store, svc
}

func TestComputeAggregatesDirectAndDeltaObjects(t *testing.T) {
	agg, store, svc := newTestAggregator(t)
	ctx := context.Background()
	dir := t.TempDir()

	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("plain content"), 0o644))
	_, err := svc.Put(ctx, plain, deltaservice.DeltaSpace{Bucket: "b", Prefix: "docs"}, deltaservice.PutOptions{})
	require.NoError(t, err)

	base := bytes.Repeat([]byte("release-bytes-"), 1000)
	first := filepath.Join(dir, "app-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(first, base, 0o644))
	_, err = svc.Put(ctx, first, deltaservice.DeltaSpace{Bucket: "b", Prefix: "releases/app"}, deltaservice.PutOptions{})
	require.NoError(t, err)

	second := filepath.Join(dir, "app-1.0.1.tar.gz")
	require.NoError(t, os.WriteFile(second, append(append([]byte{}, base...), []byte("-patch")...), 0o644))
	_, err = svc.Put(ctx, second, deltaservice.DeltaSpace{Bucket: "b", Prefix: "releases/app"}, deltaservice.PutOptions{})
	require.NoError(t, err)

	result, err := agg.Compute(ctx, "b", "", Options{})
	require.NoError(t, err)

	require.Equal(t, 1, result.DirectObjects)
	require.Equal(t, 2, result.DeltaObjects)
	require.Greater(t, result.TotalSize, int64(0))
	require.GreaterOrEqual(t, result.CompressedSize, int64(0))
	_ = store
}

func TestComputeWarnsOnOrphanedReference(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b/orphan/reference.bin", bytes.NewReader([]byte("reference-bytes")), 16,
		map[string]string{"dg-tool": "deltaglider-go/1.0", "dg-file-sha256": "deadbeef"}))

	result, err := agg.Compute(ctx, "b", "orphan", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, result.ObjectCount)

	var warned bool
	for _, w := range result.Warnings {
		if w == "orphan/reference.bin: reference has no referencing delta in scan scope; likely orphaned storage waste" {
			warned = true
		}
	}
	require.True(t, warned)
}

func TestComputeDetailedRecoversOriginalSizeFromHead(t *testing.T) {
	agg, _, svc := newTestAggregator(t)
	ctx := context.Background()
	dir := t.TempDir()

	base := bytes.Repeat([]byte("release-bytes-"), 1000)
	first := filepath.Join(dir, "app-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(first, base, 0o644))
	_, err := svc.Put(ctx, first, deltaservice.DeltaSpace{Bucket: "b", Prefix: "releases/app"}, deltaservice.PutOptions{})
	require.NoError(t, err)

	result, err := agg.Compute(ctx, "b", "releases/app", Options{Detailed: true})
	require.NoError(t, err)
	require.Equal(t, 1, result.DeltaObjects)
	require.Equal(t, int64(len(base)), result.TotalSize)
}
