package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"deltaglider/pkg/adminserver"
	"deltaglider/pkg/cache"
	"deltaglider/pkg/metrics"
	"deltaglider/pkg/stats"
)

// newServeCmd starts the admin daemon: a health/stats/metrics HTTP surface
// plus, optionally, a scheduled temp-file purge job (spec.md §4.9's
// rehydrated-temp-file lifecycle run on a cron rather than per-request).
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP daemon (health, bucket stats, metrics, scheduled temp-file purge)",
		RunE: func(c *cobra.Command, args []string) error {
			resolved, err := resolveConfig()
			if err != nil {
				return err
			}
			logger, ctx, cancel := setupCommand(c.Context(), resolved)
			defer cancel()

			client, err := buildClient(ctx, resolved, logger)
			if err != nil {
				return err
			}

			aggregator := stats.NewAggregator(client.Store, logger)

			var registry *prometheus.Registry
			sink := buildMetricsSink(resolved, logger)
			if promSink, ok := sink.(*metrics.PrometheusSink); ok {
				registry = promSink.Registry()
			}

			var cacheFootprint func() (int, int64)
			if memCache, ok := client.Service.Cache.(*cache.MemoryCache); ok {
				cacheFootprint = memCache.Footprint
			}

			if resolved.Serve.EnablePurgeJob {
				if resolved.Serve.PurgeBucket == "" {
					return fmt.Errorf("--purge-bucket is required when --enable-purge-job is set")
				}
				sched := cron.New()
				bucket := resolved.Serve.PurgeBucket
				_, err := sched.AddFunc(resolved.Serve.PurgeSchedule, func() {
					result, err := client.Service.PurgeTempFiles(ctx, bucket)
					if err != nil {
						logger.WithFields(map[string]interface{}{"bucket": bucket}).Error("scheduled temp-file purge failed", err)
						return
					}
					logger.WithFields(map[string]interface{}{
						"bucket":       bucket,
						"purged_count": result.PurgedCount,
						"bytes_freed":  result.BytesFreed,
					}).Info("scheduled temp-file purge completed")
				})
				if err != nil {
					return fmt.Errorf("invalid purge-schedule %q: %w", resolved.Serve.PurgeSchedule, err)
				}
				sched.Start()
				defer sched.Stop()
			}

			srv := adminserver.New(adminserver.Options{
				Port:           resolved.Serve.Port,
				Logger:         logger,
				Aggregator:     aggregator,
				Registry:       registry,
				CacheFootprint: cacheFootprint,
			})

			if err := srv.Start(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				os.Exit(1)
			}
			return nil
		},
	}

	cfg.AddServeFlags(cmd)
	return cmd
}
