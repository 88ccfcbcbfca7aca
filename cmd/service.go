package cmd

import (
	"context"
	"strings"

	"deltaglider/pkg/cache"
	"deltaglider/pkg/clock"
	"deltaglider/pkg/config"
	"deltaglider/pkg/deltaservice"
	"deltaglider/pkg/diffengine"
	"deltaglider/pkg/facade"
	"deltaglider/pkg/hash"
	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/metrics"
	"deltaglider/pkg/objectstore"
)

// buildClient wires the full capability set (store, cache, diff engine,
// hasher, clock, metrics sink) per the resolved configuration into a
// deltaservice.Service, then wraps it in a facade.Client. This is the
// construction point every CLI command shares (spec.md §9's ports-and-
// adapters: implementations are chosen once, at the boundary).
func buildClient(ctx context.Context, resolved *config.Config, logger log.Logger) (*facade.Client, error) {
	store, err := objectstore.NewS3Store(ctx, objectstore.S3Options{
		Region:      resolved.Store.Region,
		Profile:     resolved.Store.Profile,
		EndpointURL: resolved.Store.EndpointURL,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "construct object store")
	}

	c, err := buildCache(resolved, logger)
	if err != nil {
		return nil, err
	}

	engine := buildDiffEngine(resolved)
	sink := buildMetricsSink(resolved, logger)

	svc := deltaservice.New(store, c, engine, hash.NewSHA256Hasher(), clock.NewUTCClock(), logger, sink, resolved.Delta.MaxRatio)
	return facade.New(svc, store), nil
}

func buildCache(resolved *config.Config, logger log.Logger) (cache.Cache, error) {
	switch resolved.Cache.Backend {
	case "memory":
		entries := resolved.Cache.MemorySizeMB * 16
		if entries <= 0 {
			entries = 1600
		}
		return cache.NewMemoryCache(entries, logger), nil
	default:
		fsCache, err := cache.NewFilesystemCache(config.ExpandHomeDir(resolved.Cache.Dir), logger)
		if err != nil {
			return nil, errors.Wrap(err, "construct filesystem cache")
		}
		return fsCache, nil
	}
}

func buildDiffEngine(resolved *config.Config) diffengine.Engine {
	if resolved.Delta.Engine == "inprocess" {
		return diffengine.NewInProcessEngine()
	}
	return diffengine.NewXDelta3Engine()
}

func buildMetricsSink(resolved *config.Config, logger log.Logger) metrics.Sink {
	switch resolved.Metrics.Type {
	case "prometheus":
		return metrics.NewPrometheusSink(resolved.Metrics.Namespace)
	case "cloudwatch":
		return metrics.NewCloudWatchSink(logger, resolved.Metrics.Namespace)
	case "noop":
		return metrics.NewNoopSink()
	default:
		return metrics.NewLoggingSink(logger, resolved.Metrics.Namespace)
	}
}

// parseS3URL splits "s3://bucket/key" into its bucket and key parts.
func parseS3URL(raw string) (bucket, key string, err error) {
	if !strings.HasPrefix(raw, "s3://") {
		return "", "", errors.Configurationf("not an s3:// URL: %s", raw)
	}
	rest := strings.TrimPrefix(raw, "s3://")
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		if rest == "" {
			return "", "", errors.Configurationf("missing bucket in s3:// URL: %s", raw)
		}
		return rest, "", nil
	}
	bucket = rest[:idx]
	key = rest[idx+1:]
	if bucket == "" {
		return "", "", errors.Configurationf("missing bucket in s3:// URL: %s", raw)
	}
	return bucket, key, nil
}
