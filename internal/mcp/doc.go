// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package mcp exposes the project manager as Model Context Protocol tools.

Each tool is a struct holding its dependencies, with Definition returning
the tool schema and Handle serving a call:

	list_teams       teams with their trigramme
	list_templates   module templates, optionally for one team
	list_projects    projects, optionally filtered by team or sync status
	get_project      one project with modules and tasks
	create_project   optimistic project creation, synced to Plane in the background
	add_module       template or custom module added to a project
	remove_module    module removed locally and in Plane
	delete_project   project deleted in Plane and locally
	sync_progress    progress recomputed from Plane issue states

Tool failures are returned as error results, not protocol errors. The
server is mounted over streamable HTTP at /mcp.
*/
package mcp
