// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package main is the entry point for the Plane Project Manager server.

The server keeps teams, module templates and projects in memory, persists
them as JSON files (locally or through a remote backend) and mirrors
projects into a Plane.so workspace. Project progress is pulled back from
Plane issue states on a schedule.

# Application Architecture

The server initializes components in the following order:

 1. Configuration: defaults, config file and environment (Koanf v2)
 2. Persistence: local JSON files or the remote save/load backend
 3. Snapshot cache (optional): BadgerDB copy of the last saved snapshot
 4. Store: loads the four data files and starts debounced auto-save
 5. Plane (optional): REST client, sync engine and background jobs
 6. Event bus: Watermill GoChannel bridging store changes to WebSocket
 7. HTTP server: REST API, WebSocket, Prometheus metrics and MCP

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("planemanager")
	├── DataSupervisor ("data-layer")
	│   └── store-flusher
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket-hub
	│   ├── event-forwarder
	│   ├── progress-sync (when Plane is configured)
	│   └── project-refresh (when Plane is configured)
	└── APISupervisor ("api-layer")
	    └── http-server

# Configuration

Plane connection:

	PLANE_API_URL         Plane instance URL
	PLANE_API_KEY         API key sent as X-API-Key
	PLANE_WORKSPACE_SLUG  workspace the projects live in

Without any of the three the server starts in local-only mode: remote
endpoints answer 503 and the health check reports degraded.

Persistence:

	PERSISTENCE_MODE  local (default) or remote
	DATA_DIR          directory of the JSON files (default data)
	PERSISTENCE_URL   base URL of the remote backend

Background jobs:

	PROGRESS_SYNC_INTERVAL    default 5m
	PROJECT_REFRESH_INTERVAL  default 30m

See internal/config for the complete list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains, the
background jobs stop and pending store changes are flushed before exit.

# Example Usage

	export PLANE_API_URL=https://plane.example.com
	export PLANE_API_KEY=plane_api_xxx
	export PLANE_WORKSPACE_SLUG=acme
	./planemanager
*/
package main
