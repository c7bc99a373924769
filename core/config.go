package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the extraction service.
//
// Resolution order: built-in defaults, then an optional YAML config
// file, then environment variable overrides. Environment always wins so
// deployments can tweak a packaged config without editing it.
type Config struct {
	// HTTP server
	Port int `yaml:"port"`

	// Storage
	DatabasePath   string `yaml:"database_path"`
	MigrationsPath string `yaml:"migrations_path"` // file:// source URL
	RetentionDays  int    `yaml:"retention_days"`  // extraction history retention

	// Logging
	LogFilePath string `yaml:"log_file_path"`
	DevMode     bool   `yaml:"dev_mode"`

	// Document fetching
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
	FetchFallbackTimeout time.Duration `yaml:"fetch_fallback_timeout"`
	MaxFetchBytes        int64         `yaml:"max_fetch_bytes"`

	// Extraction engine
	LoadTimeout      time.Duration `yaml:"load_timeout"`
	LineTolerance    float64       `yaml:"line_tolerance"`
	MaxParallelPages int           `yaml:"max_parallel_pages"`
}

// yamlConfig mirrors Config with pointer fields so the file overlay can
// distinguish "not set" from zero values.
type yamlConfig struct {
	Port                 *int     `yaml:"port"`
	DatabasePath         *string  `yaml:"database_path"`
	MigrationsPath       *string  `yaml:"migrations_path"`
	RetentionDays        *int     `yaml:"retention_days"`
	LogFilePath          *string  `yaml:"log_file_path"`
	DevMode              *bool    `yaml:"dev_mode"`
	FetchTimeoutSec      *int     `yaml:"fetch_timeout_seconds"`
	FallbackTimeoutSec   *int     `yaml:"fetch_fallback_timeout_seconds"`
	MaxFetchBytes        *int64   `yaml:"max_fetch_bytes"`
	LoadTimeoutSec       *int     `yaml:"load_timeout_seconds"`
	LineTolerance        *float64 `yaml:"line_tolerance"`
	MaxParallelPages     *int     `yaml:"max_parallel_pages"`
}

// DefaultConfig returns the built-in defaults: a local SQLite database,
// production logging, and extraction budgets sized for typical book
// PDFs.
func DefaultConfig() *Config {
	return &Config{
		Port:                 3001,
		DatabasePath:         "./data/docextract.db",
		MigrationsPath:       "file://db/migrations",
		RetentionDays:        30,
		LogFilePath:          "./logs/docextract.log",
		DevMode:              false,
		FetchTimeout:         30 * time.Second,
		FetchFallbackTimeout: 10 * time.Second,
		MaxFetchBytes:        100 << 20,
		LoadTimeout:          30 * time.Second,
		LineTolerance:        5.0,
		MaxParallelPages:     4,
	}
}

// LoadConfig builds the effective configuration: defaults, then the
// YAML file named by CONFIG_FILE (or ./config.yaml when present), then
// environment overrides. Returns an error when the result fails
// validation.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}
	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Port != nil {
		c.Port = *file.Port
	}
	if file.DatabasePath != nil {
		c.DatabasePath = *file.DatabasePath
	}
	if file.MigrationsPath != nil {
		c.MigrationsPath = *file.MigrationsPath
	}
	if file.RetentionDays != nil {
		c.RetentionDays = *file.RetentionDays
	}
	if file.LogFilePath != nil {
		c.LogFilePath = *file.LogFilePath
	}
	if file.DevMode != nil {
		c.DevMode = *file.DevMode
	}
	if file.FetchTimeoutSec != nil {
		c.FetchTimeout = time.Duration(*file.FetchTimeoutSec) * time.Second
	}
	if file.FallbackTimeoutSec != nil {
		c.FetchFallbackTimeout = time.Duration(*file.FallbackTimeoutSec) * time.Second
	}
	if file.MaxFetchBytes != nil {
		c.MaxFetchBytes = *file.MaxFetchBytes
	}
	if file.LoadTimeoutSec != nil {
		c.LoadTimeout = time.Duration(*file.LoadTimeoutSec) * time.Second
	}
	if file.LineTolerance != nil {
		c.LineTolerance = *file.LineTolerance
	}
	if file.MaxParallelPages != nil {
		c.MaxParallelPages = *file.MaxParallelPages
	}
	return nil
}

// applyEnv overlays environment variable overrides.
func (c *Config) applyEnv() {
	c.Port = ParseIntEnv("PORT", c.Port)
	c.DatabasePath = GetEnvOrDefault("DATABASE_PATH", c.DatabasePath)
	c.MigrationsPath = GetEnvOrDefault("MIGRATIONS_PATH", c.MigrationsPath)
	c.RetentionDays = ParseIntEnv("RETENTION_DAYS", c.RetentionDays)
	c.LogFilePath = GetEnvOrDefault("LOG_FILE_PATH", c.LogFilePath)
	c.DevMode = ParseBoolEnv("DEV_MODE", c.DevMode)
	c.FetchTimeout = ParseDurationEnv("FETCH_TIMEOUT", int(c.FetchTimeout/time.Second))
	c.FetchFallbackTimeout = ParseDurationEnv("FETCH_FALLBACK_TIMEOUT", int(c.FetchFallbackTimeout/time.Second))
	c.MaxFetchBytes = ParseInt64Env("MAX_FETCH_BYTES", c.MaxFetchBytes)
	c.LoadTimeout = ParseDurationEnv("LOAD_TIMEOUT", int(c.LoadTimeout/time.Second))
	c.LineTolerance = ParseFloat64Env("LINE_TOLERANCE", c.LineTolerance)
	c.MaxParallelPages = ParseIntEnv("MAX_PARALLEL_PAGES", c.MaxParallelPages)
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retention days must be positive, got %d", c.RetentionDays)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.FetchFallbackTimeout <= 0 {
		return fmt.Errorf("fetch fallback timeout must be positive, got %v", c.FetchFallbackTimeout)
	}
	if c.FetchFallbackTimeout > c.FetchTimeout {
		return fmt.Errorf("fetch fallback timeout %v exceeds primary timeout %v", c.FetchFallbackTimeout, c.FetchTimeout)
	}
	if c.MaxFetchBytes < 1 {
		return fmt.Errorf("max fetch bytes must be positive, got %d", c.MaxFetchBytes)
	}
	if c.LoadTimeout <= 0 {
		return fmt.Errorf("load timeout must be positive, got %v", c.LoadTimeout)
	}
	if c.LineTolerance <= 0 {
		return fmt.Errorf("line tolerance must be positive, got %v", c.LineTolerance)
	}
	if c.MaxParallelPages < 1 {
		return fmt.Errorf("max parallel pages must be at least 1, got %d", c.MaxParallelPages)
	}
	return nil
}
