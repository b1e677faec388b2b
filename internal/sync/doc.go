// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package sync mirrors local projects into a Plane.so workspace.

Key Components:

  - PlaneClient: REST client for the Plane API (projects, modules, labels,
    issues and identifier generation)
  - Engine: optimistic create, module add/remove and delete operations
  - Transaction: apply locally, confirm remotely, roll back on failure
  - ProgressSyncer: periodic progress recomputation from issue states
  - ProjectRefresher: periodic reconciliation with the Plane project list

Request Pacing:

Every Plane request goes through a single FIFO queue. After each request
the queue waits the configured delay (200ms by default) before starting
the next one, so at most one request is in flight per client.

HTTP 429 answers are retried up to MaxRetries times, waiting
RetryBaseDelay * 2^attempt plus a random jitter. Other 4xx answers are
returned immediately as *APIError.

Circuit Breaker:

Single attempts run through a sony/gobreaker circuit breaker. Only 5xx
answers and transport failures count as failures. While the breaker is
open requests fail fast with an *APIError wrapping gobreaker.ErrOpenState.

Optimistic Operations:

Engine operations update the store first so the UI reflects the change at
once, then confirm with Plane in the background:

	tx := &Transaction{Operation: "add_module", Apply: apply, Remote: remote, Revert: revert}
	err := tx.Run(ctx) // Apply, Remote, Commit; Revert on failure

A failed project creation leaves the project with syncStatus error. A
failed module removal restores the module at its original position.

Progress:

Issue state groups map to completion values (backlog and unstarted 0,
started 50, completed and cancelled 100). A project's progress is the
rounded average over its issues. Writes are conditional on the project
version so a concurrent user edit is never overwritten.

Thread Safety:

All exported types are safe for concurrent use.
*/
package sync
