package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFileDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Cache.Backend != "filesystem" {
		t.Errorf("Cache.Backend = %q, want filesystem (unset fields keep defaults)", cfg.Cache.Backend)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadFromFileEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("LoadFromFile(\"\") failed: %v", err)
	}
	if cfg.Delta.MaxRatio != 0.5 {
		t.Errorf("Delta.MaxRatio = %v, want 0.5", cfg.Delta.MaxRatio)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml\n  missing: bracket\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := []string{"DG_CACHE_DIR", "DG_LOG_LEVEL", "DG_CACHE_BACKEND", "DG_METRICS", "DG_METRICS_NAMESPACE", "DG_MAX_RATIO", "DG_CACHE_MEMORY_SIZE_MB"}
	original := make(map[string]string, len(envVars))
	for _, env := range envVars {
		original[env] = os.Getenv(env)
	}
	defer func() {
		for _, env := range envVars {
			if v := original[env]; v != "" {
				os.Setenv(env, v)
			} else {
				os.Unsetenv(env)
			}
		}
	}()

	os.Setenv("DG_LOG_LEVEL", "warn")
	os.Setenv("DG_CACHE_DIR", "/var/cache/deltaglider")
	os.Setenv("DG_CACHE_BACKEND", "memory")
	os.Setenv("DG_METRICS", "prometheus")
	os.Setenv("DG_METRICS_NAMESPACE", "Custom")
	os.Setenv("DG_MAX_RATIO", "0.25")
	os.Setenv("DG_CACHE_MEMORY_SIZE_MB", "256")

	cfg := NewDefaultConfig()
	if err := loadFromEnv(cfg); err != nil {
		t.Fatalf("loadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Cache.Dir != "/var/cache/deltaglider" {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Metrics.Type != "prometheus" {
		t.Errorf("Metrics.Type = %q, want prometheus", cfg.Metrics.Type)
	}
	if cfg.Metrics.Namespace != "Custom" {
		t.Errorf("Metrics.Namespace = %q, want Custom", cfg.Metrics.Namespace)
	}
	if cfg.Delta.MaxRatio != 0.25 {
		t.Errorf("Delta.MaxRatio = %v, want 0.25", cfg.Delta.MaxRatio)
	}
	if cfg.Cache.MemorySizeMB != 256 {
		t.Errorf("Cache.MemorySizeMB = %v, want 256", cfg.Cache.MemorySizeMB)
	}
}

func TestLoadFromEnvRejectsMalformedMaxRatio(t *testing.T) {
	os.Setenv("DG_MAX_RATIO", "not-a-float")
	defer os.Unsetenv("DG_MAX_RATIO")

	cfg := NewDefaultConfig()
	if err := loadFromEnv(cfg); err == nil {
		t.Error("expected error for malformed DG_MAX_RATIO")
	}
}

func TestValidateRejectsOutOfRangeMaxRatio(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Delta.MaxRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max-ratio > 1.0")
	}
}

func TestValidateRejectsUnknownCacheBackend(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown cache backend")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := NewDefaultConfig()
	cfg.LogLevel = "debug"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", loaded.LogLevel)
	}
}
