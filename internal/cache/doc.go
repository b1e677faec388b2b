// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package cache provides the two caches used by the backend.

# TTL cache

TTL is a thread-safe, generic in-memory cache with per-entry expiration.
Besides the usual Get, it offers GetStale, which returns an expired entry
together with a stale flag. The project refresh job uses it for the
cache-then-background-refresh read: serve what is cached right away and
refresh in the background when the entry is stale.

	c := cache.NewTTL[[]plane.Project](30 * time.Minute)
	defer c.Close()

	c.Set("projects", list)
	if list, stale, ok := c.GetStale("projects"); ok {
	    if stale {
	        go refresh()
	    }
	    return list
	}

# Snapshot cache

SnapshotCache keeps a redundant copy of the whole application snapshot in
an embedded BadgerDB, independent of the JSON files. The store writes it on
every save and reads it once at boot: when the data directory is empty but
the cache is not, the cached snapshot is adopted and written back.

	sc, err := cache.OpenSnapshotCache(cache.SnapshotCacheConfig{Path: "data/cache"})
	if err != nil {
	    return err
	}
	defer sc.Close()
*/
package cache
