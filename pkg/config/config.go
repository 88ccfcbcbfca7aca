// Package config centralizes DeltaGlider's runtime configuration: cache
// behavior, delta policy, logging, and metrics, resolved from defaults,
// an optional YAML file, environment variables, and CLI flags in that
// order of increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Config is the fully resolved DeltaGlider configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Cache   CacheConfig   `yaml:"cache"`
	Delta   DeltaConfig   `yaml:"delta"`
	Metrics MetricsConfig `yaml:"metrics"`
	Store   StoreConfig   `yaml:"store"`
	Serve   ServeConfig   `yaml:"serve"`
}

// CacheConfig controls the reference cache backend.
type CacheConfig struct {
	// Dir is the filesystem cache root, used when Backend == "filesystem".
	Dir string `yaml:"dir"`
	// Backend is "filesystem" or "memory".
	Backend string `yaml:"backend"`
	// MemorySizeMB sizes the in-memory backend. It is translated into an
	// LRU entry count (16 entries per MB, see cmd/service.go's buildCache);
	// it is not a byte bound on the cached references.
	MemorySizeMB int `yaml:"memory_size_mb"`
}

// DeltaConfig controls delta-encoding policy.
type DeltaConfig struct {
	// MaxRatio is the delta_size/file_size threshold above which a
	// PolicyViolation warning is attached to the put result.
	MaxRatio float64 `yaml:"max_ratio"`
	// Engine selects the diff engine adapter: "xdelta3" or "inprocess".
	Engine string `yaml:"engine"`
}

// MetricsConfig controls the metrics sink.
type MetricsConfig struct {
	// Type is "noop", "logging", "prometheus", or "cloudwatch".
	Type      string `yaml:"type"`
	Namespace string `yaml:"namespace"`
}

// StoreConfig carries S3 client construction parameters. These are
// typically supplied as CLI flags rather than environment variables,
// mirroring the original source's DeltaGliderConfig connection params.
type StoreConfig struct {
	EndpointURL string `yaml:"endpoint_url"`
	Region      string `yaml:"region"`
	Profile     string `yaml:"profile"`
}

// ServeConfig controls the long-running admin daemon (cmd serve).
type ServeConfig struct {
	Port            int    `yaml:"port"`
	PurgeSchedule   string `yaml:"purge_schedule"`
	PurgeBucket     string `yaml:"purge_bucket"`
	EnablePurgeJob  bool   `yaml:"enable_purge_job"`
}

// NewDefaultConfig returns the configuration defaults documented in
// spec.md §6.3.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Cache: CacheConfig{
			Dir:          "/tmp/.deltaglider/reference_cache",
			Backend:      "filesystem",
			MemorySizeMB: 100,
		},
		Delta: DeltaConfig{
			MaxRatio: 0.5,
			Engine:   "xdelta3",
		},
		Metrics: MetricsConfig{
			Type:      "logging",
			Namespace: "DeltaGlider",
		},
		Serve: ServeConfig{
			Port:           8080,
			PurgeSchedule:  "@hourly",
			EnablePurgeJob: false,
		},
	}
}

// AddFlagsToCommand binds configuration flags onto a cobra command,
// following the teacher's persistent-flag-per-field idiom.
func (c *Config) AddFlagsToCommand(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&c.Cache.Dir, "cache-dir", c.Cache.Dir, "Filesystem cache root for reference blobs")
	cmd.PersistentFlags().StringVar(&c.Cache.Backend, "cache-backend", c.Cache.Backend, "Reference cache backend (filesystem, memory)")
	cmd.PersistentFlags().IntVar(&c.Cache.MemorySizeMB, "cache-memory-size-mb", c.Cache.MemorySizeMB, "In-memory cache capacity in MB")
	cmd.PersistentFlags().Float64Var(&c.Delta.MaxRatio, "max-ratio", c.Delta.MaxRatio, "Max delta/file size ratio before a policy-violation warning")
	cmd.PersistentFlags().StringVar(&c.Delta.Engine, "diff-engine", c.Delta.Engine, "Diff engine adapter (xdelta3, inprocess)")
	cmd.PersistentFlags().StringVar(&c.Metrics.Type, "metrics", c.Metrics.Type, "Metrics backend (noop, logging, prometheus, cloudwatch)")
	cmd.PersistentFlags().StringVar(&c.Metrics.Namespace, "metrics-namespace", c.Metrics.Namespace, "Metrics namespace")
	cmd.PersistentFlags().StringVar(&c.Store.EndpointURL, "endpoint-url", c.Store.EndpointURL, "S3-compatible endpoint URL override")
	cmd.PersistentFlags().StringVar(&c.Store.Region, "region", c.Store.Region, "AWS region")
	cmd.PersistentFlags().StringVar(&c.Store.Profile, "profile", c.Store.Profile, "AWS credentials profile")
}

// AddServeFlags binds flags specific to the serve daemon.
func (c *Config) AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&c.Serve.Port, "port", c.Serve.Port, "Admin HTTP server listening port")
	cmd.Flags().StringVar(&c.Serve.PurgeSchedule, "purge-schedule", c.Serve.PurgeSchedule, "Cron schedule for the temp-file purge job")
	cmd.Flags().StringVar(&c.Serve.PurgeBucket, "purge-bucket", c.Serve.PurgeBucket, "Bucket to purge expired rehydrated temp files from")
	cmd.Flags().BoolVar(&c.Serve.EnablePurgeJob, "enable-purge-job", c.Serve.EnablePurgeJob, "Run the scheduled temp-file purge job")
}

// ExpandHomeDir expands ~ or ${HOME} at the start of a path.
func ExpandHomeDir(path string) string {
	if path == "" {
		return path
	}
	if strings.Contains(path, "${HOME}") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "${HOME}", home)
		}
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
