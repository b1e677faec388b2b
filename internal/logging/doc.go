// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package logging provides centralized zerolog-based logging.

	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})

	logging.Info().Str("project_id", id).Msg("Project synced")
	logging.Ctx(ctx).Warn().Err(err).Msg("Sub-issue left unlinked")

Context-aware logging adds the request ID (HTTP handlers), the correlation
ID (one per sync flow) and the operation name when present on the context.

Libraries that expect log/slog (suture, watermill) receive a *slog.Logger
from NewSlogLogger, which writes through the same zerolog logger.

Always terminate log chains with .Msg() or .Send().
*/
package logging
