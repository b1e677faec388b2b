// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package models defines the data structures of the Plane Project Manager.

The application snapshot is a plain value made of four parts:

  - Teams: organizational units identified by a unique three-letter trigramme
  - ModuleTemplates: reusable task lists owned by a team
  - Projects: client engagements mirrored to Plane.so, made of modules,
    tasks and sub-tasks
  - LastSync: timestamp of the last completed progress synchronization

Snapshots are replaced immutably by the store. Every type with nested
slices provides a deep Clone so readers never share memory with the
canonical copy.

Progress:

Project progress is the rounded average of its task values, with done=100,
in_progress=50 and todo=0. Sub-tasks do not count. A project without tasks
has progress 0. See ComputeProgress.

Plane wire types (requests, responses, list envelopes) live in the
sub-package plane.
*/
package models
