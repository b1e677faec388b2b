// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the three Plane connection variables.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PLANE_API_URL", "https://plane.example.com/")
	t.Setenv("PLANE_API_KEY", "plane_api_test")
	t.Setenv("PLANE_WORKSPACE_SLUG", "acme")
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Plane.URL != "" || cfg.Plane.APIKey != "" || cfg.Plane.WorkspaceSlug != "" {
		t.Error("Plane connection settings should be empty by default")
	}
	if cfg.Plane.RequestDelay != 200*time.Millisecond {
		t.Errorf("Plane.RequestDelay = %v, want 200ms", cfg.Plane.RequestDelay)
	}
	if cfg.Plane.MaxRetries != 3 {
		t.Errorf("Plane.MaxRetries = %d, want 3", cfg.Plane.MaxRetries)
	}
	if cfg.Plane.RetryBaseDelay != time.Second || cfg.Plane.RetryMaxJitter != time.Second {
		t.Errorf("retry delays = %v/%v, want 1s/1s", cfg.Plane.RetryBaseDelay, cfg.Plane.RetryMaxJitter)
	}
	if cfg.Persistence.Mode != PersistenceLocal || cfg.Persistence.DataDir != "data" {
		t.Errorf("Persistence = %+v, want local/data", cfg.Persistence)
	}
	if cfg.Sync.ProgressInterval != 5*time.Minute {
		t.Errorf("Sync.ProgressInterval = %v, want 5m", cfg.Sync.ProgressInterval)
	}
	if cfg.Sync.ProjectDelay != time.Second {
		t.Errorf("Sync.ProjectDelay = %v, want 1s", cfg.Sync.ProjectDelay)
	}
	if cfg.Sync.RefreshInterval != 30*time.Minute {
		t.Errorf("Sync.RefreshInterval = %v, want 30m", cfg.Sync.RefreshInterval)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadWithKoanf_FromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLANE_REQUEST_DELAY", "50ms")
	t.Setenv("PROGRESS_SYNC_INTERVAL", "10m")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://pm.example.com")
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Plane.URL != "https://plane.example.com" {
		t.Errorf("Plane.URL = %q, want trailing slash trimmed", cfg.Plane.URL)
	}
	if cfg.Plane.APIKey != "plane_api_test" || cfg.Plane.WorkspaceSlug != "acme" {
		t.Errorf("Plane = %+v", cfg.Plane)
	}
	if cfg.Plane.RequestDelay != 50*time.Millisecond {
		t.Errorf("Plane.RequestDelay = %v, want 50ms", cfg.Plane.RequestDelay)
	}
	if cfg.Sync.ProgressInterval != 10*time.Minute {
		t.Errorf("Sync.ProgressInterval = %v, want 10m", cfg.Sync.ProgressInterval)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://pm.example.com" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("Security.RateLimitDisabled should be true")
	}
}

func TestLoadWithKoanf_LegacyViteNames(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PLANE_API_URL", "")
	t.Setenv("PLANE_API_KEY", "")
	t.Setenv("PLANE_WORKSPACE_SLUG", "")
	t.Setenv("VITE_PLANE_API_URL", "https://plane.example.com")
	t.Setenv("VITE_PLANE_API_KEY", "key")
	t.Setenv("VITE_PLANE_WORKSPACE_SLUG", "acme")

	// t.Setenv above restores the originals after the test.
	for _, name := range []string{"PLANE_API_URL", "PLANE_API_KEY", "PLANE_WORKSPACE_SLUG"} {
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("Unsetenv(%s): %v", name, err)
		}
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Plane.WorkspaceSlug != "acme" {
		t.Errorf("Plane.WorkspaceSlug = %q, want acme", cfg.Plane.WorkspaceSlug)
	}
}

func TestLoadWithKoanf_MissingPlaneSettings(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantMsg string
	}{
		{"missing url", "PLANE_API_URL", "PLANE_API_URL"},
		{"missing key", "PLANE_API_KEY", "PLANE_API_KEY"},
		{"missing slug", "PLANE_WORKSPACE_SLUG", "PLANE_WORKSPACE_SLUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %s", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
plane:
  url: https://plane.internal
  api_key: from-file
  workspace_slug: file-workspace
  max_retries: 5
persistence:
  data_dir: /srv/planemanager
sync:
  refresh_interval: 1h
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PLANE_API_URL", "")
	t.Setenv("PLANE_API_KEY", "")
	t.Setenv("PLANE_WORKSPACE_SLUG", "")
	for _, name := range []string{"PLANE_API_URL", "PLANE_API_KEY", "PLANE_WORKSPACE_SLUG"} {
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("Unsetenv(%s): %v", name, err)
		}
	}
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Plane.APIKey != "from-file" || cfg.Plane.MaxRetries != 5 {
		t.Errorf("Plane = %+v", cfg.Plane)
	}
	if cfg.Persistence.DataDir != "/srv/planemanager" {
		t.Errorf("Persistence.DataDir = %q", cfg.Persistence.DataDir)
	}
	if cfg.Sync.RefreshInterval != time.Hour {
		t.Errorf("Sync.RefreshInterval = %v, want 1h", cfg.Sync.RefreshInterval)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want env override warn", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PLANE_API_KEY":          "plane.api_key",
		"plane_workspace_slug":   "plane.workspace_slug",
		"DATA_DIR":               "persistence.data_dir",
		"PROGRESS_SYNC_INTERVAL": "sync.progress_interval",
		"PORT":                   "server.port",
		"HOME":                   "",
		"PATH":                   "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
