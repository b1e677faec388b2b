// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/planemanager/internal/cache"
	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

const (
	remoteProjectsKey = "plane:projects"

	// MissingRemoteMessage is the syncError of a project whose Plane
	// project no longer exists.
	MissingRemoteMessage = "project no longer exists in Plane"

	backgroundRefreshTimeout = 2 * time.Minute
)

// RefreshResult summarizes one project list refresh.
type RefreshResult struct {
	Remote  int `json:"remote"`
	Updated int `json:"updated"`
	Missing int `json:"missing"`
	Skipped int `json:"skipped"`
}

// ProjectRefresher periodically reads the Plane project list, caches it
// and reconciles local projects with it.
type ProjectRefresher struct {
	store  *store.Store
	client PlaneClientInterface
	cache  *cache.TTL[[]plane.Project]

	bgPending atomic.Bool
	bgWg      sync.WaitGroup

	job periodicJob
}

// NewProjectRefresher creates a refresher. Cached lists expire after the
// refresh interval.
func NewProjectRefresher(st *store.Store, client PlaneClientInterface, cfg config.SyncConfig) *ProjectRefresher {
	ttl := cfg.RefreshInterval
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	r := &ProjectRefresher{
		store:  st,
		client: client,
		cache:  cache.NewTTL[[]plane.Project](ttl),
	}
	r.job = periodicJob{name: "project refresh", interval: cfg.RefreshInterval, run: r.runOnce}
	return r
}

// Start refreshes immediately and then every refresh interval.
func (r *ProjectRefresher) Start(ctx context.Context) error {
	return r.job.start(ctx)
}

// Stop stops the periodic refresh.
func (r *ProjectRefresher) Stop() error {
	return r.job.stop()
}

// Close waits for background refreshes and releases the cache.
func (r *ProjectRefresher) Close() {
	r.bgWg.Wait()
	r.cache.Close()
}

func (r *ProjectRefresher) runOnce(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Project refresh failed")
	}
}

// Refresh lists the Plane projects, caches them and reconciles the local
// projects. Identifier changes are adopted and projects whose Plane
// counterpart is gone are flagged with syncStatus error. Every write is
// conditional on the version read, so a project changed meanwhile is
// skipped.
func (r *ProjectRefresher) Refresh(ctx context.Context) (RefreshResult, error) {
	remote, err := r.client.ListProjects(ctx)
	metrics.RecordProjectRefresh(err)
	if err != nil {
		return RefreshResult{}, err
	}
	r.cache.Set(remoteProjectsKey, remote)

	result := r.reconcile(ctx, remote)
	logging.Ctx(ctx).Info().
		Int("remote", result.Remote).
		Int("updated", result.Updated).
		Int("missing", result.Missing).
		Int("skipped", result.Skipped).
		Msg("Project list refreshed")
	return result, nil
}

func (r *ProjectRefresher) reconcile(ctx context.Context, remote []plane.Project) RefreshResult {
	result := RefreshResult{Remote: len(remote)}
	byID := make(map[string]plane.Project, len(remote))
	for _, p := range remote {
		byID[p.ID] = p
	}

	for _, local := range r.store.Projects() {
		planeProjectID, err := remoteProjectID(local)
		if err != nil || local.IsDeleting || local.SyncStatus == models.SyncSyncing {
			continue
		}

		rp, found := byID[planeProjectID]
		var apply func(p *models.Project) error
		switch {
		case !found && local.SyncStatus != models.SyncError:
			apply = func(p *models.Project) error {
				p.SyncStatus = models.SyncError
				p.SyncError = MissingRemoteMessage
				return nil
			}
		case found && local.SyncError == MissingRemoteMessage:
			apply = func(p *models.Project) error {
				p.SyncStatus = models.SyncSynced
				p.SyncError = ""
				return nil
			}
		case found && rp.Identifier != "" && rp.Identifier != local.Identifier:
			identifier := rp.Identifier
			apply = func(p *models.Project) error {
				p.Identifier = identifier
				return nil
			}
		default:
			continue
		}

		_, err = r.store.UpdateProjectIfVersion(local.ID, local.Version, apply)
		switch {
		case err == nil:
			result.Updated++
			if !found {
				result.Missing++
			}
		case errors.Is(err, store.ErrVersionConflict), errors.Is(err, store.ErrNotFound):
			result.Skipped++
			logging.Ctx(ctx).Debug().Str("project_id", local.ID).Msg("Project changed during refresh, skipped")
		default:
			logging.Ctx(ctx).Warn().Err(err).Str("project_id", local.ID).Msg("Failed to reconcile project")
		}
	}
	return result
}

// RemoteProjects returns the cached Plane project list. A stale list is
// returned as is while a refresh runs in the background; without any
// cached list the refresh runs synchronously.
func (r *ProjectRefresher) RemoteProjects(ctx context.Context) ([]plane.Project, error) {
	projects, stale, ok := r.cache.GetStale(remoteProjectsKey)
	if !ok {
		if _, err := r.Refresh(ctx); err != nil {
			return nil, err
		}
		projects, _, _ = r.cache.GetStale(remoteProjectsKey)
		return projects, nil
	}
	if stale && r.bgPending.CompareAndSwap(false, true) {
		r.bgWg.Add(1)
		go func() {
			defer r.bgWg.Done()
			defer r.bgPending.Store(false)
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundRefreshTimeout)
			defer cancel()
			r.runOnce(bgCtx)
		}()
	}
	return projects, nil
}
