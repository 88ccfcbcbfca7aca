package deltaservice

import (
	"deltaglider/pkg/cache"
	"deltaglider/pkg/clock"
	"deltaglider/pkg/diffengine"
	"deltaglider/pkg/hash"
	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/metrics"
	"deltaglider/pkg/objectstore"
)

// Service orchestrates put/get/verify/delete against a DeltaSpace,
// wiring together the object store, reference cache, diff engine, hasher,
// clock, logger, and metrics ports (spec.md §4).
type Service struct {
	Store   objectstore.Store
	Cache   cache.Cache
	Engine  diffengine.Engine
	Hasher  hash.Hasher
	Clock   clock.Clock
	Logger  log.Logger
	Metrics metrics.Sink

	// MaxRatio is the default policy threshold, overridable per-Put via
	// PutOptions.MaxRatio.
	MaxRatio float64
}

// New constructs a Service from its component ports. A nil Metrics sink is
// replaced with a no-op sink so callers never need a nil check.
func New(store objectstore.Store, c cache.Cache, engine diffengine.Engine, hasher hash.Hasher, clk clock.Clock, logger log.Logger, sink metrics.Sink, maxRatio float64) *Service {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	return &Service{
		Store:    store,
		Cache:    c,
		Engine:   engine,
		Hasher:   hasher,
		Clock:    clk,
		Logger:   logger,
		Metrics:  sink,
		MaxRatio: maxRatio,
	}
}

// deltaspaceOf derives a DeltaSpace from a key by dropping its basename.
// Shared by deleteDelta and DeleteRecursive's orphan-reference pass so the
// deltaspace-from-key rule lives in exactly one place.
func deltaspaceOf(bucket, key string) DeltaSpace {
	idx := lastSlash(key)
	if idx < 0 {
		return DeltaSpace{Bucket: bucket, Prefix: ""}
	}
	return DeltaSpace{Bucket: bucket, Prefix: key[:idx]}
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
