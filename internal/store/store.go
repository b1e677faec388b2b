// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/persistence"
)

// EventType is the kind of change a subscriber is told about.
type EventType string

// Event types.
const (
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
	EventReplaced EventType = "replaced"
	EventImported EventType = "imported"
	EventCleared  EventType = "cleared"
)

// Entity names the kind of object an event refers to.
type Entity string

// Entities.
const (
	EntityTeam     Entity = "team"
	EntityTemplate Entity = "template"
	EntityProject  Entity = "project"
	EntityModule   Entity = "module"
	EntityTask     Entity = "task"
	EntitySubTask  Entity = "subtask"
	EntitySnapshot Entity = "snapshot"
)

// Event describes one committed mutation.
type Event struct {
	Type      EventType `json:"type"`
	Entity    Entity    `json:"entity"`
	ID        string    `json:"id,omitempty"`
	ProjectID string    `json:"projectId,omitempty"`
	// PreviousID is set when a project is replaced under a new id.
	PreviousID string `json:"previousId,omitempty"`
	Version    uint64 `json:"version,omitempty"`
}

// SnapshotCache is the redundant local copy of the snapshot.
// Implemented by cache.SnapshotCache.
type SnapshotCache interface {
	Put(snap models.Snapshot) error
	Get() (models.Snapshot, error)
	EmptyStateMigrated() (bool, error)
	MarkEmptyStateMigrated() error
}

// Store is the application state container.
type Store struct {
	gateway  persistence.Gateway
	cache    SnapshotCache
	now      func() time.Time
	newID    func() string
	autoSave bool

	mu   sync.RWMutex
	snap models.Snapshot
	gen  uint64 // incremented on every mutation

	subMu   sync.RWMutex
	subs    map[int]func(Event)
	nextSub int

	saveMu   sync.Mutex // serializes writes to the gateway
	savedGen uint64
	saveWg   sync.WaitGroup
}

// Option customizes a Store.
type Option func(*Store)

// WithCache adds the redundant snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(s *Store) { s.cache = c }
}

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the id generator (uuid by default).
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithAutoSave enables or disables the save scheduled after each mutation.
// It is enabled by default.
func WithAutoSave(enabled bool) Option {
	return func(s *Store) { s.autoSave = enabled }
}

// New creates an empty store persisting through gateway.
func New(gateway persistence.Gateway, opts ...Option) *Store {
	s := &Store{
		gateway:  gateway,
		now:      time.Now,
		newID:    uuid.NewString,
		autoSave: true,
		snap:     models.EmptySnapshot(),
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh entity id from the store's generator.
func (s *Store) NewID() string {
	return s.newID()
}

// Subscribe registers fn to be called after every committed mutation.
// Callbacks run synchronously on the mutating goroutine, outside the store
// lock, in registration order. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.RLock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// mutate applies fn to a copy of the snapshot and installs the copy when fn
// succeeds. The event fn returns is published after the lock is released.
func (s *Store) mutate(fn func(snap *models.Snapshot) (Event, error)) (Event, error) {
	s.mu.Lock()
	next := s.snap.Clone()
	ev, err := fn(&next)
	if err != nil {
		s.mu.Unlock()
		return Event{}, err
	}
	s.snap = next
	s.gen++
	s.mu.Unlock()

	metrics.RecordStoreMutation(string(ev.Entity), string(ev.Type))
	s.publish(ev)
	if s.autoSave {
		s.SaveAsync()
	}
	return ev, nil
}

// read runs fn under the read lock.
func (s *Store) read(fn func(snap *models.Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.snap)
}

// ExportData returns a deep copy of the whole snapshot.
func (s *Store) ExportData() models.Snapshot {
	var out models.Snapshot
	s.read(func(snap *models.Snapshot) { out = snap.Normalize() })
	return out
}

// ImportData replaces the whole snapshot. Legacy team name references are
// resolved to ids on the way in. A snapshot with a malformed or duplicate
// trigramme is rejected and the store is left unchanged.
func (s *Store) ImportData(snap models.Snapshot) error {
	imported := snap.Normalize()
	if err := checkTrigrammes(imported.Teams); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if n := MigrateTeamReferences(&imported); n > 0 {
		logging.Info().Int("references", n).Msg("Migrated legacy team references on import")
	}
	_, err := s.mutate(func(cur *models.Snapshot) (Event, error) {
		*cur = imported
		return Event{Type: EventImported, Entity: EntitySnapshot}, nil
	})
	return err
}

// ClearAllData resets the store to the empty snapshot.
func (s *Store) ClearAllData() error {
	_, err := s.mutate(func(cur *models.Snapshot) (Event, error) {
		*cur = models.EmptySnapshot()
		return Event{Type: EventCleared, Entity: EntitySnapshot}, nil
	})
	return err
}

// LastSync returns the time of the last completed progress sync, if any.
func (s *Store) LastSync() *time.Time {
	var out *time.Time
	s.read(func(snap *models.Snapshot) {
		if snap.LastSync != nil {
			ts := *snap.LastSync
			out = &ts
		}
	})
	return out
}

// SetLastSync records the time of a completed progress sync.
func (s *Store) SetLastSync(t time.Time) error {
	t = t.UTC()
	_, err := s.mutate(func(cur *models.Snapshot) (Event, error) {
		cur.LastSync = &t
		return Event{Type: EventUpdated, Entity: EntitySnapshot}, nil
	})
	return err
}
