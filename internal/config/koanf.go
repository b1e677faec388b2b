// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/planemanager/config.yaml",
	"/etc/planemanager/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Plane: PlaneConfig{
			URL:            "", // required for remote sync
			APIKey:         "", // required for remote sync
			WorkspaceSlug:  "", // required for remote sync
			RequestDelay:   200 * time.Millisecond,
			MaxRetries:     3,
			RetryBaseDelay: time.Second,
			RetryMaxJitter: time.Second,
			Timeout:        30 * time.Second,
			CircuitBreaker: true,
		},
		Persistence: PersistenceConfig{
			Mode:      PersistenceLocal,
			DataDir:   "data",
			RemoteURL: "",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Path:     "data/cache",
			InMemory: false,
		},
		Sync: SyncConfig{
			ProgressEnabled:  true,
			ProgressInterval: 5 * time.Minute,
			ProjectDelay:     time.Second,
			RefreshEnabled:   true,
			RefreshInterval:  30 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// PLANE_API_KEY -> plane.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Plane.URL = strings.TrimRight(cfg.Plane.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// The VITE_ names are accepted for compatibility with existing .env files.
var envMappings = map[string]string{
	"plane_api_url":             "plane.url",
	"plane_api_key":             "plane.api_key",
	"plane_workspace_slug":      "plane.workspace_slug",
	"vite_plane_api_url":        "plane.url",
	"vite_plane_api_key":        "plane.api_key",
	"vite_plane_workspace_slug": "plane.workspace_slug",
	"plane_request_delay":       "plane.request_delay",
	"plane_max_retries":         "plane.max_retries",
	"plane_retry_base_delay":    "plane.retry_base_delay",
	"plane_retry_max_jitter":    "plane.retry_max_jitter",
	"plane_timeout":             "plane.timeout",
	"plane_circuit_breaker":     "plane.circuit_breaker",

	"persistence_mode": "persistence.mode",
	"data_dir":         "persistence.data_dir",
	"persistence_url":  "persistence.remote_url",

	"cache_enabled":   "cache.enabled",
	"cache_path":      "cache.path",
	"cache_in_memory": "cache.in_memory",

	"progress_sync_enabled":       "sync.progress_enabled",
	"progress_sync_interval":      "sync.progress_interval",
	"progress_sync_project_delay": "sync.project_delay",
	"project_refresh_enabled":     "sync.refresh_enabled",
	"project_refresh_interval":    "sync.refresh_interval",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"port":             "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"mcp_enabled": "mcp.enabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// does not pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
