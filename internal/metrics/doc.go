// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package metrics defines the Prometheus metrics exposed at /metrics.

Metric families:

  - api_*: HTTP API throughput, latency and in-flight requests
  - plane_*: Plane client attempts, latency, 429 retries and queue depth
  - circuit_breaker_*: breaker state and transitions for the Plane client
  - store_mutations_total, persistence_*: state changes and snapshot saves
  - sync_transactions_total: optimistic transaction outcomes
  - progress_sync_*: progress job runs, updates, failures and skips
  - project_refresh_total: remote project list refreshes
  - websocket_clients, events_published_total: push channel activity

All collectors register with the default registry through promauto.
*/
package metrics
