// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	// Without any Plane setting the server runs on local data only.
	if c.Plane.Configured() {
		if err := c.Plane.Validate(); err != nil {
			return err
		}
	}

	if err := c.validatePlaneTuning(); err != nil {
		return err
	}

	if err := c.validatePersistence(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// Configured reports whether any Plane connection setting is present.
func (p *PlaneConfig) Configured() bool {
	return strings.TrimSpace(p.URL) != "" ||
		strings.TrimSpace(p.APIKey) != "" ||
		strings.TrimSpace(p.WorkspaceSlug) != ""
}

// Validate checks the three Plane connection settings. The client calls it
// before any request so a missing setting never reaches the network.
func (p *PlaneConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(p.URL) == "" {
		missing = append(missing, "PLANE_API_URL")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		missing = append(missing, "PLANE_API_KEY")
	}
	if strings.TrimSpace(p.WorkspaceSlug) == "" {
		missing = append(missing, "PLANE_WORKSPACE_SLUG")
	}
	if len(missing) > 0 {
		return fmt.Errorf("plane connection is not configured: %s required", strings.Join(missing, ", "))
	}

	if err := validateHTTPURL(p.URL, "PLANE_API_URL"); err != nil {
		return fmt.Errorf("PLANE_API_URL is invalid: %w", err)
	}
	return nil
}

// validatePlaneTuning validates pacing and retry settings
func (c *Config) validatePlaneTuning() error {
	if c.Plane.RequestDelay < 0 {
		return fmt.Errorf("PLANE_REQUEST_DELAY must not be negative")
	}
	if c.Plane.MaxRetries < 0 {
		return fmt.Errorf("PLANE_MAX_RETRIES must not be negative")
	}
	if c.Plane.RetryBaseDelay <= 0 {
		return fmt.Errorf("PLANE_RETRY_BASE_DELAY must be positive")
	}
	if c.Plane.RetryMaxJitter < 0 {
		return fmt.Errorf("PLANE_RETRY_MAX_JITTER must not be negative")
	}
	if c.Plane.Timeout <= 0 {
		return fmt.Errorf("PLANE_TIMEOUT must be positive")
	}
	return nil
}

// validatePersistence validates the snapshot persistence settings
func (c *Config) validatePersistence() error {
	switch c.Persistence.Mode {
	case PersistenceLocal:
		if strings.TrimSpace(c.Persistence.DataDir) == "" {
			return fmt.Errorf("DATA_DIR is required when PERSISTENCE_MODE=local")
		}
	case PersistenceRemote:
		if c.Persistence.RemoteURL == "" {
			return fmt.Errorf("PERSISTENCE_URL is required when PERSISTENCE_MODE=remote")
		}
		if err := validateBaseURL(c.Persistence.RemoteURL, "PERSISTENCE_URL"); err != nil {
			return fmt.Errorf("PERSISTENCE_URL is invalid: %w", err)
		}
	default:
		return fmt.Errorf("PERSISTENCE_MODE must be one of: local, remote")
	}

	if c.Cache.Enabled && !c.Cache.InMemory && strings.TrimSpace(c.Cache.Path) == "" {
		return fmt.Errorf("CACHE_PATH is required when CACHE_ENABLED=true")
	}
	return nil
}

// validateSync validates background job intervals
func (c *Config) validateSync() error {
	if c.Sync.ProgressEnabled && c.Sync.ProgressInterval <= 0 {
		return fmt.Errorf("PROGRESS_SYNC_INTERVAL must be positive when PROGRESS_SYNC_ENABLED=true")
	}
	if c.Sync.ProjectDelay < 0 {
		return fmt.Errorf("PROGRESS_SYNC_PROJECT_DELAY must not be negative")
	}
	if c.Sync.RefreshEnabled && c.Sync.RefreshInterval <= 0 {
		return fmt.Errorf("PROJECT_REFRESH_INTERVAL must be positive when PROJECT_REFRESH_ENABLED=true")
	}
	return nil
}

// validateServer validates the HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates rate limiting
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
