// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package persistence

import (
	"context"
	"fmt"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/models"
)

// File names inside the data directory.
const (
	TeamsFile     = "teams.json"
	TemplatesFile = "module-templates.json"
	ProjectsFile  = "projects.json"
	MetadataFile  = "metadata.json"
)

// Gateway persists whole snapshots.
type Gateway interface {
	Save(ctx context.Context, snap models.Snapshot) error
	Load(ctx context.Context) (models.Snapshot, error)
}

// New returns the gateway selected by cfg.Mode.
func New(cfg *config.PersistenceConfig) (Gateway, error) {
	switch cfg.Mode {
	case config.PersistenceLocal, "":
		return NewFileGateway(cfg.DataDir), nil
	case config.PersistenceRemote:
		g, err := NewHTTPGateway(cfg.RemoteURL, nil)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown persistence mode %q", cfg.Mode)
	}
}
