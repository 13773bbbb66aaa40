// Package config loads runtime configuration: coded defaults, overlaid by
// an optional YAML file, overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Registry  RegistryConfig  `yaml:"registry"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"BM_SERVER_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BM_SERVER_SHUTDOWN_TIMEOUT"`
}

// RegistryConfig points at the application's own Postgres database, where
// imported project records live.
type RegistryConfig struct {
	DSN string `yaml:"dsn" env:"BM_REGISTRY_DSN"`

	// WaitForReady blocks startup until the database answers a liveness
	// probe. Useful when the database container starts alongside the app.
	WaitForReady bool `yaml:"wait_for_ready" env:"BM_REGISTRY_WAIT_FOR_READY"`
}

// OptimizerConfig holds the optimization analyzer's tunables. The numeric
// thresholds are business heuristics with no derived "correct" value, so
// they stay configurable rather than hardcoded.
type OptimizerConfig struct {
	// AdvisorURL is the remote advisory API URL template. It may contain
	// {projectId}, {databaseName}, {neonProjectId}, and {branchId}
	// placeholders; without placeholders the values are appended as query
	// parameters. Empty disables the remote advisor.
	AdvisorURL string `yaml:"advisor_url" env:"BM_OPTIMIZER_ADVISOR_URL"`

	// AdvisorTimeout bounds the remote advisory fetch.
	AdvisorTimeout time.Duration `yaml:"advisor_timeout" env:"BM_OPTIMIZER_ADVISOR_TIMEOUT"`

	// RowThreshold is the minimum live-row estimate for a table to be
	// considered for a missing-index suggestion.
	RowThreshold int64 `yaml:"row_threshold" env:"BM_OPTIMIZER_ROW_THRESHOLD"`

	// ScanRatio requires seq_scan > idx_scan * ScanRatio before a table is
	// suggested (index usage already adequate otherwise).
	ScanRatio int64 `yaml:"scan_ratio" env:"BM_OPTIMIZER_SCAN_RATIO"`

	// MaxSuggestions caps missing-index and duplicate-record suggestions.
	MaxSuggestions int `yaml:"max_suggestions" env:"BM_OPTIMIZER_MAX_SUGGESTIONS"`
}

// ExportConfig controls where CSV export artifacts are archived.
// Endpoint empty disables object-store uploads; exports are still streamed
// to the caller.
type ExportConfig struct {
	Endpoint  string `yaml:"endpoint"   env:"BM_EXPORT_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"BM_EXPORT_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"BM_EXPORT_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"BM_EXPORT_BUCKET"`
	UseSSL    bool   `yaml:"use_ssl"    env:"BM_EXPORT_USE_SSL"`
}

// LogConfig controls the zerolog wrapper.
type LogConfig struct {
	Level  string `yaml:"level"  env:"BM_LOG_LEVEL"`
	Format string `yaml:"format" env:"BM_LOG_FORMAT"`
}

// Default returns the coded defaults applied before any overlay.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Optimizer: OptimizerConfig{
			AdvisorTimeout: 8 * time.Second,
			RowThreshold:   100,
			ScanRatio:      2,
			MaxSuggestions: 5,
		},
		Export: ExportConfig{
			Bucket: "exports",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// non-empty and present), and environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Optimizer.RowThreshold < 0 {
		return fmt.Errorf("optimizer row_threshold must be >= 0, got %d", c.Optimizer.RowThreshold)
	}
	if c.Optimizer.ScanRatio < 1 {
		return fmt.Errorf("optimizer scan_ratio must be >= 1, got %d", c.Optimizer.ScanRatio)
	}
	if c.Optimizer.MaxSuggestions < 1 {
		return fmt.Errorf("optimizer max_suggestions must be >= 1, got %d", c.Optimizer.MaxSuggestions)
	}
	return nil
}
