// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
)

// Badger keys.
const (
	snapshotKey   = "snapshot:current"
	savedAtKey    = "snapshot:saved_at"
	migrationsKey = "snapshot:migrated_empty_state"
)

// ErrNoSnapshot is returned by Get when nothing has been cached yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// SnapshotCacheConfig configures the BadgerDB snapshot cache.
type SnapshotCacheConfig struct {
	Path     string
	InMemory bool
}

// SnapshotCache keeps the latest snapshot in an embedded BadgerDB.
type SnapshotCache struct {
	db *badger.DB
}

// OpenSnapshotCache opens (or creates) the cache database.
func OpenSnapshotCache(cfg SnapshotCacheConfig) (*SnapshotCache, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Snapshot cache opened")
	return NewSnapshotCache(db), nil
}

// NewSnapshotCache wraps an already opened database.
func NewSnapshotCache(db *badger.DB) *SnapshotCache {
	return &SnapshotCache{db: db}
}

// Put replaces the cached snapshot.
func (c *SnapshotCache) Put(snap models.Snapshot) error {
	data, err := json.Marshal(snap.Normalize())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	stamp, err := time.Now().UTC().MarshalText()
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotKey), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return txn.Set([]byte(savedAtKey), stamp)
	})
}

// Get returns the cached snapshot, or ErrNoSnapshot.
func (c *SnapshotCache) Get() (models.Snapshot, error) {
	var snap models.Snapshot

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap.Normalize(), nil
}

// SavedAt returns when the snapshot was last cached.
func (c *SnapshotCache) SavedAt() (time.Time, error) {
	var ts time.Time
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(savedAtKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}
		return item.Value(ts.UnmarshalText)
	})
	return ts, err
}

// MarkEmptyStateMigrated records that the one-shot empty state migration
// ran, so it is never repeated.
func (c *SnapshotCache) MarkEmptyStateMigrated() error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(migrationsKey), []byte("1"))
	})
}

// EmptyStateMigrated reports whether MarkEmptyStateMigrated was called.
func (c *SnapshotCache) EmptyStateMigrated() (bool, error) {
	var done bool
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(migrationsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		done = true
		return nil
	})
	return done, err
}

// Clear removes the cached snapshot. The migration marker is kept.
func (c *SnapshotCache) Clear() error {
	return c.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{snapshotKey, savedAtKey} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (c *SnapshotCache) Close() error {
	return c.db.Close()
}
