// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Plane.URL = "https://plane.example.com"
	cfg.Plane.APIKey = "key"
	cfg.Plane.WorkspaceSlug = "acme"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"all plane settings missing", func(c *Config) { c.Plane = PlaneConfig{RetryBaseDelay: time.Second, Timeout: time.Second} }, ""},
		{"partial plane settings", func(c *Config) { c.Plane.APIKey = ""; c.Plane.WorkspaceSlug = "" },
			"PLANE_API_KEY, PLANE_WORKSPACE_SLUG required"},
		{"bad plane scheme", func(c *Config) { c.Plane.URL = "ftp://plane.example.com" }, "scheme must be http or https"},
		{"plane url with query", func(c *Config) { c.Plane.URL = "https://plane.example.com?x=1" }, "query parameters"},
		{"plane url with path", func(c *Config) { c.Plane.URL = "https://example.com/plane" }, ""},
		{"negative retries", func(c *Config) { c.Plane.MaxRetries = -1 }, "PLANE_MAX_RETRIES"},
		{"zero base delay", func(c *Config) { c.Plane.RetryBaseDelay = 0 }, "PLANE_RETRY_BASE_DELAY"},
		{"unknown persistence mode", func(c *Config) { c.Persistence.Mode = "s3" }, "PERSISTENCE_MODE"},
		{"remote without url", func(c *Config) { c.Persistence.Mode = PersistenceRemote }, "PERSISTENCE_URL is required"},
		{"remote with path", func(c *Config) {
			c.Persistence.Mode = PersistenceRemote
			c.Persistence.RemoteURL = "http://backend:3001/api"
		}, "remove path"},
		{"remote valid", func(c *Config) {
			c.Persistence.Mode = PersistenceRemote
			c.Persistence.RemoteURL = "http://backend:3001"
		}, ""},
		{"cache without path", func(c *Config) { c.Cache.Path = "" }, "CACHE_PATH"},
		{"in-memory cache without path", func(c *Config) { c.Cache.Path = ""; c.Cache.InMemory = true }, ""},
		{"zero progress interval", func(c *Config) { c.Sync.ProgressInterval = 0 }, "PROGRESS_SYNC_INTERVAL"},
		{"zero progress interval disabled", func(c *Config) { c.Sync.ProgressInterval = 0; c.Sync.ProgressEnabled = false }, ""},
		{"zero refresh interval", func(c *Config) { c.Sync.RefreshInterval = 0 }, "PROJECT_REFRESH_INTERVAL"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRequests = 0 }, "RATE_LIMIT_REQUESTS"},
		{"zero rate limit disabled", func(c *Config) { c.Security.RateLimitRequests = 0; c.Security.RateLimitDisabled = true }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3001}
	if got := s.Addr(); got != "127.0.0.1:3001" {
		t.Errorf("Addr() = %q", got)
	}
}
