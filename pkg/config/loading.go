package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"deltaglider/pkg/helper/errors"
)

// LoadFromFile resolves configuration from defaults, then an optional YAML
// file, then environment variables, validating the result.
func LoadFromFile(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configPath != "" {
		expanded := ExpandHomeDir(configPath)
		if _, err := os.Stat(expanded); os.IsNotExist(err) {
			return nil, errors.NotFoundf("configuration file not found: %s", expanded)
		}

		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, errors.Wrap(err, "read configuration file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse configuration file")
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv overlays the DG_* environment variables documented in
// spec.md §6.3 onto cfg.
func loadFromEnv(cfg *Config) error {
	strVars := map[string]*string{
		"DG_CACHE_DIR":          &cfg.Cache.Dir,
		"DG_LOG_LEVEL":          &cfg.LogLevel,
		"DG_CACHE_BACKEND":      &cfg.Cache.Backend,
		"DG_METRICS":            &cfg.Metrics.Type,
		"DG_METRICS_NAMESPACE":  &cfg.Metrics.Namespace,
	}
	for env, field := range strVars {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("DG_MAX_RATIO"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Configurationf("DG_MAX_RATIO must be a float: %q", v)
		}
		cfg.Delta.MaxRatio = f
	}

	if v, ok := os.LookupEnv("DG_CACHE_MEMORY_SIZE_MB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Configurationf("DG_CACHE_MEMORY_SIZE_MB must be an integer: %q", v)
		}
		cfg.Cache.MemorySizeMB = n
	}

	return nil
}

// SaveToFile persists cfg as YAML, creating parent directories as needed.
// The result can be read back with LoadFromFile.
func (c *Config) SaveToFile(path string) error {
	expanded := ExpandHomeDir(path)
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return errors.Wrap(err, "create configuration directory")
	}

	f, err := os.Create(expanded)
	if err != nil {
		return errors.Wrap(err, "create configuration file")
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode configuration")
	}
	return nil
}

// Validate checks the resolved configuration for internal consistency,
// matching the ranges documented by the original source's
// DeltaGliderConfig (DG_MAX_RATIO in [0,1]; DG_CACHE_MEMORY_SIZE_MB > 0,
// checked only when the memory cache backend is selected).
func (c *Config) Validate() error {
	level := strings.ToLower(c.LogLevel)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return errors.Configurationf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.Delta.MaxRatio < 0 || c.Delta.MaxRatio > 1 {
		return errors.Configurationf("max-ratio must be between 0.0 and 1.0, got %v", c.Delta.MaxRatio)
	}

	switch c.Cache.Backend {
	case "filesystem", "memory":
	default:
		return errors.Configurationf("invalid cache backend: %s (must be one of: filesystem, memory)", c.Cache.Backend)
	}
	if c.Cache.Backend == "memory" && c.Cache.MemorySizeMB <= 0 {
		return errors.Configurationf("cache-memory-size-mb must be positive when cache backend is memory")
	}
	if c.Cache.Backend == "filesystem" && c.Cache.Dir == "" {
		return errors.Configurationf("cache-dir must be set when cache backend is filesystem")
	}

	switch c.Metrics.Type {
	case "noop", "logging", "prometheus", "cloudwatch":
	default:
		return errors.Configurationf("invalid metrics backend: %s (must be one of: noop, logging, prometheus, cloudwatch)", c.Metrics.Type)
	}

	switch c.Delta.Engine {
	case "xdelta3", "inprocess":
	default:
		return errors.Configurationf("invalid diff engine: %s (must be one of: xdelta3, inprocess)", c.Delta.Engine)
	}

	return nil
}
