package facade

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

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := objectstore.NewMemoryStore()
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	svc := deltaservice.New(store, cache.NewMemoryCache(16, logger), diffengine.NewInProcessEngine(), hash.NewSHA256Hasher(),
		clock.NewUTCClock(), logger, metrics.NewNoopSink(), 0.9)
	return New(svc, store)
}

func TestPutObjectGetObjectRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	dir := t.TempDir()

	data := bytes.Repeat([]byte("payload-bytes-"), 500)
	src := filepath.Join(dir, "app-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	out, err := c.PutObject(ctx, PutObjectInput{Bucket: "b", Key: "releases/app/app-1.0.0.tar.gz", LocalPath: src})
	require.NoError(t, err)
	require.Equal(t, deltaservice.OpCreateReference, out.Operation)

	dst := filepath.Join(dir, "out.tar.gz")
	err = c.GetObject(ctx, GetObjectInput{Bucket: "b", Key: "releases/app/app-1.0.0.tar.gz.delta"}, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestListObjectsV2HidesReferenceAndPresentsLogicalDeltaName(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	dir := t.TempDir()

	base := bytes.Repeat([]byte("release-bytes-"), 1000)
	first := filepath.Join(dir, "app-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(first, base, 0o644))
	_, err := c.PutObject(ctx, PutObjectInput{Bucket: "b", Key: "releases/app/app-1.0.0.tar.gz", LocalPath: first})
	require.NoError(t, err)

	resp, err := c.ListObjectsV2(ctx, ListObjectsV2Input{Bucket: "b", Prefix: "releases/app/"})
	require.NoError(t, err)

	var sawLogicalName, sawReference bool
	for _, obj := range resp.Contents {
		if obj.Key == "releases/app/reference.bin" {
			sawReference = true
		}
		if obj.Key == "releases/app/app-1.0.0.tar.gz" {
			sawLogicalName = true
			require.NotNil(t, obj.DeltaGlider)
			require.True(t, obj.DeltaGlider.IsDelta)
			require.Equal(t, int64(len(base)), obj.Size)
		}
	}
	require.True(t, sawLogicalName)
	require.False(t, sawReference)
}

func TestHeadObjectFallsBackToDeltaSuffix(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	dir := t.TempDir()

	base := bytes.Repeat([]byte("release-bytes-"), 1000)
	first := filepath.Join(dir, "app-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(first, base, 0o644))
	_, err := c.PutObject(ctx, PutObjectInput{Bucket: "b", Key: "releases/app/app-1.0.0.tar.gz", LocalPath: first})
	require.NoError(t, err)

	obj, found, err := c.HeadObject(ctx, "b", "releases/app/app-1.0.0.tar.gz")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(len(base)), obj.Size)
}
