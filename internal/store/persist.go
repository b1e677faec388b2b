// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/planemanager/internal/cache"
	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
	"github.com/tomtom215/planemanager/internal/models"
)

// asyncSaveTimeout bounds a fire-and-forget save.
const asyncSaveTimeout = 30 * time.Second

// Save persists the current snapshot and waits for the result. Saves are
// serialized and always write the latest snapshot; when a previous save
// already wrote everything up to now, Save returns nil without writing.
// The cache copy is best effort.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	target := s.gen
	s.mu.RUnlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.savedGen >= target && target > 0 {
		return nil
	}

	s.mu.RLock()
	snap := s.snap.Normalize()
	gen := s.gen
	s.mu.RUnlock()

	start := time.Now()
	err := s.gateway.Save(ctx, snap)
	metrics.RecordPersistenceSave(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.savedGen = gen

	if s.cache != nil {
		if err := s.cache.Put(snap); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to update snapshot cache")
		}
	}
	return nil
}

// SaveAsync saves in the background. Failures are logged only; the
// in-memory snapshot stays authoritative.
func (s *Store) SaveAsync() {
	s.saveWg.Add(1)
	go func() {
		defer s.saveWg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), asyncSaveTimeout)
		defer cancel()
		if err := s.Save(ctx); err != nil {
			logging.Error().Err(err).Msg("Auto-save failed")
		}
	}()
}

// Flush waits for background saves to finish or ctx to end.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.saveWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush store: %w", ctx.Err())
	}
}

// Bootstrap loads the persisted snapshot into the store. An empty gateway
// snapshot is replaced, once, by a non-empty cached one, which is then
// saved back to the gateway. Legacy team references are migrated. Teams
// with a malformed or duplicate trigramme fail the bootstrap.
func (s *Store) Bootstrap(ctx context.Context) error {
	snap, err := s.gateway.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	snap = snap.Normalize()

	needsSave := false
	if snap.IsEmpty() && s.cache != nil {
		if cached, ok := s.adoptCachedSnapshot(ctx); ok {
			snap = cached
			needsSave = true
		}
	}
	if err := checkTrigrammes(snap.Teams); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if n := MigrateTeamReferences(&snap); n > 0 {
		logging.Ctx(ctx).Info().Int("references", n).Msg("Migrated legacy team references")
		needsSave = true
	}

	s.mu.Lock()
	s.snap = snap
	s.gen++
	if !needsSave {
		s.savedGen = s.gen
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventImported, Entity: EntitySnapshot})
	logging.Ctx(ctx).Info().
		Int("teams", len(snap.Teams)).
		Int("templates", len(snap.ModuleTemplates)).
		Int("projects", len(snap.Projects)).
		Msg("Store bootstrapped")

	if needsSave {
		return s.Save(ctx)
	}
	return nil
}

// adoptCachedSnapshot runs the one-shot empty state migration check.
func (s *Store) adoptCachedSnapshot(ctx context.Context) (models.Snapshot, bool) {
	log := logging.Ctx(ctx)

	done, err := s.cache.EmptyStateMigrated()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read empty state migration marker")
		return models.Snapshot{}, false
	}
	if done {
		return models.Snapshot{}, false
	}

	cached, err := s.cache.Get()
	adopted := err == nil && !cached.IsEmpty()
	switch {
	case err != nil && !errors.Is(err, cache.ErrNoSnapshot):
		log.Warn().Err(err).Msg("Failed to read cached snapshot")
	case adopted:
		log.Info().
			Int("teams", len(cached.Teams)).
			Int("templates", len(cached.ModuleTemplates)).
			Int("projects", len(cached.Projects)).
			Msg("Persisted data is empty, restoring snapshot from cache")
	}

	if err := s.cache.MarkEmptyStateMigrated(); err != nil {
		log.Warn().Err(err).Msg("Failed to record empty state migration")
	}
	if !adopted {
		return models.Snapshot{}, false
	}
	return cached.Normalize(), true
}
