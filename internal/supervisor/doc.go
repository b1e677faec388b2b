// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package supervisor provides process supervision using suture v4.

Long-running services are organized into three layers so that a failure
in one is restarted without affecting the others:

	planemanager
	├── data-layer
	│   └── store-flusher
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── event-forwarder
	│   ├── progress-sync   (Plane configured)
	│   └── project-refresh (Plane configured)
	└── api-layer
	    └── http-server

Crashed services are restarted with backoff once FailureThreshold
failures accumulate; failures decay at FailureDecay per second. Supervisor
events are logged through sutureslog into the application's slog logger.

On context cancellation every service is stopped within ShutdownTimeout.
Services that overrun it are listed by UnstoppedServiceReport.

Example:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
