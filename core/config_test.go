package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 3001 {
		t.Errorf("Port = %d, want 3001", cfg.Port)
	}
	if cfg.LoadTimeout != 30*time.Second {
		t.Errorf("LoadTimeout = %v, want 30s", cfg.LoadTimeout)
	}
	if cfg.LineTolerance != 5.0 {
		t.Errorf("LineTolerance = %v, want 5.0", cfg.LineTolerance)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("LOAD_TIMEOUT", "5")
	t.Setenv("MAX_PARALLEL_PAGES", "8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !cfg.DevMode {
		t.Error("DevMode = false, want true")
	}
	if cfg.LoadTimeout != 5*time.Second {
		t.Errorf("LoadTimeout = %v, want 5s", cfg.LoadTimeout)
	}
	if cfg.MaxParallelPages != 8 {
		t.Errorf("MaxParallelPages = %d, want 8", cfg.MaxParallelPages)
	}
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yaml := `
port: 4000
database_path: /var/lib/docextract/app.db
fetch_timeout_seconds: 45
line_tolerance: 3.5
`
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000 from file", cfg.Port)
	}
	if cfg.DatabasePath != "/var/lib/docextract/app.db" {
		t.Errorf("DatabasePath = %q, want file value", cfg.DatabasePath)
	}
	if cfg.FetchTimeout != 45*time.Second {
		t.Errorf("FetchTimeout = %v, want 45s from file", cfg.FetchTimeout)
	}
	if cfg.LineTolerance != 3.5 {
		t.Errorf("LineTolerance = %v, want 3.5 from file", cfg.LineTolerance)
	}
	// Unset file keys keep their defaults.
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want default 30", cfg.RetentionDays)
	}
}

func TestLoadConfigEnvWinsOverFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("port: 4000\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want env override 9000", cfg.Port)
	}
}

func TestLoadConfigRejectsBadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("port: [not a number\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() error = nil, want parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"zero retention", func(c *Config) { c.RetentionDays = 0 }, true},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -time.Second }, true},
		{"fallback exceeds primary", func(c *Config) {
			c.FetchTimeout = 5 * time.Second
			c.FetchFallbackTimeout = 10 * time.Second
		}, true},
		{"zero load timeout", func(c *Config) { c.LoadTimeout = 0 }, true},
		{"zero line tolerance", func(c *Config) { c.LineTolerance = 0 }, true},
		{"zero parallel pages", func(c *Config) { c.MaxParallelPages = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
