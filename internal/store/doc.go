// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package store holds the application snapshot: teams, module templates,
projects and the last progress sync time.

The Store is an injectable container built with New. Every mutation
replaces the snapshot with a modified deep copy under a write lock, bumps
the version stamp of the touched project, notifies subscribers and then
schedules an asynchronous save through the persistence gateway. Readers
always receive copies, so callers may modify returned values freely.

# Persistence

Save writes the latest snapshot to the gateway and, when configured, to the
BadgerDB snapshot cache. Saves are serialized; a save that finds the
snapshot already persisted returns immediately. SaveAsync is the
fire-and-forget form used after mutations; Flush waits for it.

Bootstrap loads the gateway snapshot at startup. When the gateway holds
nothing but the cache does, the cached snapshot is adopted and saved back
(once; the cache remembers that the check ran).

# Team references

Templates and project modules reference teams by id. Data written by older
versions referenced teams by name; MigrateTeamReferences resolves those
names to ids. It runs on Bootstrap, ImportData and before a team rename.

# Concurrency

Background writers (progress sync, project refresh) read a project, work
without holding the lock, and write back with UpdateProjectIfVersion or
SetProjectProgress. Both fail with ErrVersionConflict when the project was
modified in between, so optimistic user changes are never overwritten.
*/
package store
