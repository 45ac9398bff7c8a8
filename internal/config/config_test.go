// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/arcobs/blobs", cfg.DataDir)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 5*time.Minute, cfg.ListingTTL)
	assert.Equal(t, 4, cfg.DownloadWorkers)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcobs.yaml")
	body := `
dataDir: /srv/arcobs/blobs
catalogPath: /srv/arcobs/catalog.db
inboxDir: /srv/arcobs/inbox
routes:
  - observatory: sheba
    instrument: mmcr
    format: mmddhhmm
    year: 1997
listen: ":9000"
logLevel: debug
listingTTL: 1m
downloadWorkers: 8
redis:
  addr: localhost:6379
  db: 2
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/arcobs/blobs", cfg.DataDir)
	assert.Equal(t, "/srv/arcobs/inbox", cfg.InboxDir)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, time.Minute, cfg.ListingTTL)
	assert.Equal(t, 8, cfg.DownloadWorkers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, Route{Observatory: "sheba", Instrument: "mmcr", Format: "mmddhhmm", Year: 1997}, cfg.Routes[0])
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\n"), 0o644))

	t.Setenv("ARCOBS_LISTEN", ":7070")
	t.Setenv("ARCOBS_DOWNLOAD_WORKERS", "2")
	t.Setenv("ARCOBS_LISTING_TTL", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, 2, cfg.DownloadWorkers)
	assert.Equal(t, 30*time.Second, cfg.ListingTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseIntInvalid(t *testing.T) {
	t.Setenv("ARCOBS_DOWNLOAD_WORKERS", "not-a-number")
	assert.Equal(t, 4, ParseInt("ARCOBS_DOWNLOAD_WORKERS", 4))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: true},
		{name: "empty catalog", mutate: func(c *Config) { c.CatalogPath = "" }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.DownloadWorkers = 0 }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.ListingTTL = -time.Second }, wantErr: true},
		{name: "rate without burst", mutate: func(c *Config) { c.UploadRate = 1; c.UploadBurst = 0 }, wantErr: true},
		{name: "rate disabled", mutate: func(c *Config) { c.UploadRate = 0; c.UploadBurst = 0 }},
		{name: "inbox without routes", mutate: func(c *Config) { c.InboxDir = "/srv/inbox" }, wantErr: true},
		{name: "route missing instrument", mutate: func(c *Config) {
			c.Routes = []Route{{Observatory: "sheba"}}
		}, wantErr: true},
		{name: "inbox with route", mutate: func(c *Config) {
			c.InboxDir = "/srv/inbox"
			c.Routes = []Route{{Observatory: "sheba", Instrument: "mmcr"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
