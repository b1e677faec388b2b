// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package persistence saves and loads the application snapshot.

The system of record is four JSON files in a data directory:

	teams.json             []Team
	module-templates.json  []ModuleTemplate
	projects.json          []Project
	metadata.json          {lastSync, version, createdAt, updatedAt, checksums}

FileGateway writes each file to a temporary sibling, fsyncs it and renames
it over the target, so a crash never leaves a truncated file. metadata.json
is written last and records the SHA-256 of the three data files; a mismatch
found on load is logged as a cross-file inconsistency.

Load never fails because of file content. A missing or unparsable file
yields an empty collection (or a null lastSync) and a warning.

HTTPGateway implements the same interface against another instance's
POST /api/save-data and GET /api/load-data endpoints.
*/
package persistence
