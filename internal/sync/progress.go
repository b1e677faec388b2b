// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

// StatusProgress maps Plane state groups to completion values.
var StatusProgress = map[string]int{
	plane.GroupBacklog:   0,
	plane.GroupUnstarted: 0,
	plane.GroupStarted:   50,
	plane.GroupCompleted: 100,
	plane.GroupCancelled: 100,
}

// ProgressResult is the outcome of one project's progress sync.
type ProgressResult struct {
	ProjectID      string `json:"projectId"`
	PlaneProjectID string `json:"planeProjectId"`
	OldProgress    int    `json:"oldProgress"`
	NewProgress    int    `json:"newProgress"`
	Issues         int    `json:"issues"`
	Updated        bool   `json:"updated"`
	Error          string `json:"error,omitempty"`
}

// ProgressSyncer recomputes project progress from Plane issue states.
// Remote state is authoritative for progress only.
type ProgressSyncer struct {
	store    *store.Store
	client   PlaneClientInterface
	limiter  *rate.Limiter
	notifier Notifier
	now      func() time.Time

	syncing atomic.Bool

	groupsMu sync.Mutex
	groups   map[string]string // state id -> inferred group
	sampled  bool

	job periodicJob
}

// ProgressOption customizes a ProgressSyncer.
type ProgressOption func(*ProgressSyncer)

// WithProgressNotifier reports runs that changed progress.
func WithProgressNotifier(n Notifier) ProgressOption {
	return func(s *ProgressSyncer) { s.notifier = n }
}

// WithProgressClock replaces the clock used for lastSync.
func WithProgressClock(now func() time.Time) ProgressOption {
	return func(s *ProgressSyncer) { s.now = now }
}

// NewProgressSyncer creates a syncer using the interval and per-project
// delay of cfg.
func NewProgressSyncer(st *store.Store, client PlaneClientInterface, cfg config.SyncConfig, opts ...ProgressOption) *ProgressSyncer {
	s := &ProgressSyncer{
		store:   st,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(cfg.ProjectDelay), 1),
		now:     time.Now,
		groups:  make(map[string]string),
	}
	s.job = periodicJob{name: "progress sync", interval: cfg.ProgressInterval, run: s.runOnce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSyncing reports whether a SyncAllProjects run is in progress.
func (s *ProgressSyncer) IsSyncing() bool {
	return s.syncing.Load()
}

// SyncProjectProgress recomputes the progress of the project linked to
// planeProjectID. The value is written only when it changed and only if
// the project was not modified meanwhile; a conflicting write is retried
// once against the newer version. A project without issues is left alone.
func (s *ProgressSyncer) SyncProjectProgress(ctx context.Context, planeProjectID string) (ProgressResult, error) {
	project, ok := s.store.ProjectByPlaneID(planeProjectID)
	if !ok {
		return ProgressResult{PlaneProjectID: planeProjectID}, fmt.Errorf("plane project %q: %w", planeProjectID, store.ErrNotFound)
	}
	result := ProgressResult{
		ProjectID:      project.ID,
		PlaneProjectID: planeProjectID,
		OldProgress:    project.Progress,
		NewProgress:    project.Progress,
	}

	issues, err := s.client.ListIssues(ctx, planeProjectID)
	if err != nil {
		return result, fmt.Errorf("list issues of %q: %w", planeProjectID, err)
	}
	result.Issues = len(issues)
	if len(issues) == 0 {
		return result, nil
	}
	s.sampleStates(issues)

	total := 0
	for i := range issues {
		total += StatusProgress[s.issueGroup(&issues[i])]
	}
	result.NewProgress = models.RoundedAverage(total, len(issues))

	for attempt := 0; attempt < 2; attempt++ {
		_, changed, err := s.store.SetProjectProgress(project.ID, project.Version, result.NewProgress)
		if err == nil {
			result.Updated = changed
			break
		}
		if !errors.Is(err, store.ErrVersionConflict) || attempt == 1 {
			return result, err
		}
		current, ok := s.store.ProjectByID(project.ID)
		if !ok {
			return result, fmt.Errorf("project %q: %w", project.ID, store.ErrNotFound)
		}
		project = current
		result.OldProgress = project.Progress
	}

	if result.Updated {
		logging.Ctx(ctx).Info().
			Str("project_id", project.ID).
			Int("old_progress", result.OldProgress).
			Int("new_progress", result.NewProgress).
			Msg("Project progress updated from Plane")
	}
	return result, nil
}

// sampleStates builds the state to group mapping from the first issue list
// seen. Plane's issue listing only carries state ids, so the group is
// inferred from the completion and start timestamps.
func (s *ProgressSyncer) sampleStates(issues []plane.Issue) {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()
	if s.sampled {
		return
	}
	for i := range issues {
		id := issues[i].State.ID
		if id == "" {
			continue
		}
		if _, seen := s.groups[id]; !seen {
			s.groups[id] = groupFromTimestamps(&issues[i])
		}
	}
	s.sampled = true
}

// issueGroup returns the state group of an issue: the expanded group when
// Plane sent one, else the sampled mapping, else the issue's timestamps.
func (s *ProgressSyncer) issueGroup(issue *plane.Issue) string {
	if issue.State.Group != "" {
		return issue.State.Group
	}
	s.groupsMu.Lock()
	group, ok := s.groups[issue.State.ID]
	s.groupsMu.Unlock()
	if ok {
		return group
	}
	return groupFromTimestamps(issue)
}

func groupFromTimestamps(issue *plane.Issue) string {
	switch {
	case issue.CompletedAt != nil && *issue.CompletedAt != "":
		return plane.GroupCompleted
	case issue.StartedAt != nil && *issue.StartedAt != "":
		return plane.GroupStarted
	default:
		return plane.GroupUnstarted
	}
}

// SyncAllProjects syncs every project linked to Plane, one at a time and
// spaced by the project delay. A call made while a run is in progress
// returns an empty result immediately. Per-project failures are reported
// in the results; the returned error is only set when ctx ends the run.
func (s *ProgressSyncer) SyncAllProjects(ctx context.Context) ([]ProgressResult, error) {
	if !s.syncing.CompareAndSwap(false, true) {
		metrics.RecordProgressSyncSkipped()
		logging.Ctx(ctx).Debug().Msg("Progress sync already running, skipping")
		return []ProgressResult{}, nil
	}
	defer s.syncing.Store(false)

	start := time.Now()
	log := logging.Ctx(ctx)
	results := []ProgressResult{}
	updated, failed := 0, 0

	for _, p := range s.store.Projects() {
		planeProjectID, err := remoteProjectID(p)
		if err != nil || p.IsDeleting {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}

		res, err := s.SyncProjectProgress(ctx, planeProjectID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			failed++
			res.Error = err.Error()
			log.Warn().Err(err).Str("project_id", p.ID).Msg("Progress sync failed for project")
		}
		if res.Updated {
			updated++
		}
		results = append(results, res)
	}

	if err := s.store.SetLastSync(s.now().UTC()); err != nil {
		log.Warn().Err(err).Msg("Failed to record last sync time")
	}
	metrics.RecordProgressSync(time.Since(start), updated, failed)
	log.Info().
		Int("projects", len(results)).
		Int("updated", updated).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Progress sync completed")

	if s.notifier != nil && updated > 0 {
		s.notifier.Notify(ctx, Notification{
			Level:     NotifyInfo,
			Operation: "sync_progress",
			Message:   fmt.Sprintf("Progress updated for %d project(s)", updated),
			Time:      s.now().UTC(),
		})
	}
	return results, nil
}

// TriggerSync runs a manual progress sync.
func (s *ProgressSyncer) TriggerSync(ctx context.Context) ([]ProgressResult, error) {
	return s.SyncAllProjects(ctx)
}

// Start runs a sync immediately and then every interval until Stop is
// called or ctx is cancelled.
func (s *ProgressSyncer) Start(ctx context.Context) error {
	return s.job.start(ctx)
}

// Stop stops the periodic sync and waits for a running pass to finish.
func (s *ProgressSyncer) Stop() error {
	return s.job.stop()
}

func (s *ProgressSyncer) runOnce(ctx context.Context) {
	if _, err := s.SyncAllProjects(ctx); err != nil && ctx.Err() == nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Progress sync failed")
	}
}
