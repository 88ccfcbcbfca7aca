package adminserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/objectstore"
	"deltaglider/pkg/stats"
)

func TestHealthzReturnsOK(t *testing.T) {
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	agg := &stats.Aggregator{Store: objectstore.NewMemoryStore(), Logger: logger}
	s := New(Options{Port: 0, Logger: logger, Aggregator: agg})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzIncludesCacheFootprintWhenConfigured(t *testing.T) {
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	agg := &stats.Aggregator{Store: objectstore.NewMemoryStore(), Logger: logger}
	s := New(Options{
		Port: 0, Logger: logger, Aggregator: agg,
		CacheFootprint: func() (int, int64) { return 3, 4096 },
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"entries":3`)
	require.Contains(t, rec.Body.String(), `"bytes":4096`)
}

func TestBucketStatsReturnsJSON(t *testing.T) {
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	store := objectstore.NewMemoryStore()
	agg := &stats.Aggregator{Store: store, Logger: logger}
	s := New(Options{Port: 0, Logger: logger, Aggregator: agg})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats/mybucket", nil)
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestMetricsRouteAbsentWithoutRegistry(t *testing.T) {
	logger := log.NewBasicLoggerWithWriter(log.ErrorLevel, io.Discard)
	agg := &stats.Aggregator{Store: objectstore.NewMemoryStore(), Logger: logger}
	s := New(Options{Port: 0, Logger: logger, Aggregator: agg})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
