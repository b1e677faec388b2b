// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package services provides suture.Service wrappers for the project manager's
long-running components.

Each wrapper translates a lifecycle (ListenAndServe, Start/Stop, a run
loop, a final flush) into suture's context-aware Serve and names itself
through fmt.Stringer for supervisor logs:

	HTTPServerService    *http.Server with graceful shutdown
	WebSocketHubService  websocket.Hub run loop
	JobService           progress sync and project refresh jobs
	StoreFlushService    waits for pending store saves on shutdown

The event forwarder already implements suture.Service and is added to the
tree directly.

Example:

	tree.AddDataService(services.NewStoreFlushService(st, 10*time.Second))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewJobService("progress-sync", progress))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
*/
package services
