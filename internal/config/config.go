// SPDX-License-Identifier: MIT

// Package config loads daemon configuration from an optional YAML file
// with ARCOBS_-prefixed environment overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	// DataDir holds the badger blob store.
	DataDir string `yaml:"dataDir"`
	// CatalogPath is the sqlite product catalog file.
	CatalogPath string `yaml:"catalogPath"`
	// InboxDir, when set, is watched for arriving raw instrument files.
	InboxDir string `yaml:"inboxDir"`
	// Routes bind inbox subdirectories to observatory containers.
	Routes []Route `yaml:"routes"`
	// Listen is the HTTP API address.
	Listen string `yaml:"listen"`

	LogLevel string `yaml:"logLevel"`

	Redis RedisConfig `yaml:"redis"`

	// ListingTTL bounds how long container listings are cached.
	ListingTTL time.Duration `yaml:"listingTTL"`
	// DownloadWorkers bounds concurrent blob downloads per job.
	DownloadWorkers int `yaml:"downloadWorkers"`
	// UploadRate limits product uploads per second; zero disables the
	// limiter.
	UploadRate  float64 `yaml:"uploadRate"`
	UploadBurst int     `yaml:"uploadBurst"`

	// APIRequestsPerMinute limits each client IP; zero disables.
	APIRequestsPerMinute int `yaml:"apiRequestsPerMinute"`
}

// Route names one ingest destination: files appearing under
// inbox/<observatory>/<instrument>/ upload to that observatory's raw
// container. Format and Year rename files whose names lack the
// canonical stamp.
type Route struct {
	Observatory string `yaml:"observatory"`
	Instrument  string `yaml:"instrument"`
	Format      string `yaml:"format"`
	Year        int    `yaml:"year"`
}

// RedisConfig enables the shared listing cache. An empty Addr selects
// the in-process cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:              "/var/lib/arcobs/blobs",
		CatalogPath:          "/var/lib/arcobs/catalog.db",
		Listen:               ":8080",
		LogLevel:             "info",
		ListingTTL:           5 * time.Minute,
		DownloadWorkers:      4,
		UploadRate:           8,
		UploadBurst:          4,
		APIRequestsPerMinute: 120,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// when non-empty, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DataDir = ParseString("ARCOBS_DATA_DIR", cfg.DataDir)
	cfg.CatalogPath = ParseString("ARCOBS_CATALOG_PATH", cfg.CatalogPath)
	cfg.InboxDir = ParseString("ARCOBS_INBOX_DIR", cfg.InboxDir)
	cfg.Listen = ParseString("ARCOBS_LISTEN", cfg.Listen)
	cfg.LogLevel = ParseString("ARCOBS_LOG_LEVEL", cfg.LogLevel)
	cfg.Redis.Addr = ParseString("ARCOBS_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = ParseString("ARCOBS_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = ParseInt("ARCOBS_REDIS_DB", cfg.Redis.DB)
	cfg.ListingTTL = ParseDuration("ARCOBS_LISTING_TTL", cfg.ListingTTL)
	cfg.DownloadWorkers = ParseInt("ARCOBS_DOWNLOAD_WORKERS", cfg.DownloadWorkers)
	cfg.UploadRate = ParseFloat("ARCOBS_UPLOAD_RATE", cfg.UploadRate)
	cfg.UploadBurst = ParseInt("ARCOBS_UPLOAD_BURST", cfg.UploadBurst)
	cfg.APIRequestsPerMinute = ParseInt("ARCOBS_API_REQUESTS_PER_MINUTE", cfg.APIRequestsPerMinute)
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: dataDir must be set")
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("config: catalogPath must be set")
	}
	if c.Listen == "" {
		return fmt.Errorf("config: listen must be set")
	}
	if c.DownloadWorkers < 1 {
		return fmt.Errorf("config: downloadWorkers must be at least 1, got %d", c.DownloadWorkers)
	}
	if c.ListingTTL < 0 {
		return fmt.Errorf("config: listingTTL must not be negative")
	}
	if c.UploadRate < 0 {
		return fmt.Errorf("config: uploadRate must not be negative")
	}
	if c.UploadRate > 0 && c.UploadBurst < 1 {
		return fmt.Errorf("config: uploadBurst must be at least 1 when uploadRate is set")
	}
	if c.APIRequestsPerMinute < 0 {
		return fmt.Errorf("config: apiRequestsPerMinute must not be negative")
	}
	if c.InboxDir != "" && len(c.Routes) == 0 {
		return fmt.Errorf("config: inboxDir is set but no routes are configured")
	}
	for i, r := range c.Routes {
		if r.Observatory == "" || r.Instrument == "" {
			return fmt.Errorf("config: route %d needs observatory and instrument", i)
		}
	}
	return nil
}
