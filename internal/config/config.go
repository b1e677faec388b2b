// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Validation:
// Load() returns an error when the Plane connection settings are missing
// (PLANE_API_URL, PLANE_API_KEY, PLANE_WORKSPACE_SLUG) or when a value is
// malformed. The application refuses to start rather than issue requests
// that cannot succeed.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Plane       PlaneConfig       `koanf:"plane"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Cache       CacheConfig       `koanf:"cache"`
	Sync        SyncConfig        `koanf:"sync"`
	Server      ServerConfig      `koanf:"server"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	MCP         MCPConfig         `koanf:"mcp"`
}

// PlaneConfig configures the Plane.so REST client.
//
// Every request is queued behind a single global FIFO. RequestDelay is the
// pause after each completed request. HTTP 429 answers are retried
// MaxRetries times, waiting RetryBaseDelay * 2^attempt plus a random
// jitter of at most RetryMaxJitter.
type PlaneConfig struct {
	URL            string        `koanf:"url"`
	APIKey         string        `koanf:"api_key"`
	WorkspaceSlug  string        `koanf:"workspace_slug"`
	RequestDelay   time.Duration `koanf:"request_delay"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	RetryMaxJitter time.Duration `koanf:"retry_max_jitter"`
	Timeout        time.Duration `koanf:"timeout"`
	CircuitBreaker bool          `koanf:"circuit_breaker"`
}

// Persistence modes.
const (
	PersistenceLocal  = "local"
	PersistenceRemote = "remote"
)

// PersistenceConfig selects where the snapshot is saved.
//
// In local mode the snapshot is written to DataDir as four JSON files. In
// remote mode it is sent to another instance's /api/save-data endpoint.
type PersistenceConfig struct {
	Mode      string `koanf:"mode"`
	DataDir   string `koanf:"data_dir"`
	RemoteURL string `koanf:"remote_url"`
}

// CacheConfig configures the redundant BadgerDB snapshot cache.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SyncConfig configures the background jobs.
type SyncConfig struct {
	ProgressEnabled  bool          `koanf:"progress_enabled"`
	ProgressInterval time.Duration `koanf:"progress_interval"`
	ProjectDelay     time.Duration `koanf:"project_delay"`
	RefreshEnabled   bool          `koanf:"refresh_enabled"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MCPConfig toggles the MCP tool endpoint.
type MCPConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
