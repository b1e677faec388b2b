// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package api serves the REST API, the persistence gateway endpoints, the
WebSocket endpoint and the metrics and MCP endpoints.

Routing uses chi with this global middleware stack:

  - RequestIDWithLogging: X-Request-ID plus request and correlation IDs in
    the logging context
  - RealIP and Recoverer from chi
  - CORS (go-chi/cors), configured from security.cors_origins

The /api/v1 routes add httprate rate limiting and Prometheus
instrumentation. Every /api/v1 response uses the envelope

	{"success": true, "data": ..., "meta": {"request_id": ..., "timestamp": ...}}
	{"success": false, "error": {"code": ..., "message": ..., "details": ...}}

The gateway endpoints POST /api/save-data and GET /api/load-data keep
their own flat shapes so that existing frontends can use them unchanged.

Long remote operations (project creation, module and project removal) are
optimistic: the handler answers with the local state and the remote outcome
arrives as a WebSocket notification.
*/
package api
