// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import "github.com/tomtom215/planemanager/internal/models"

// MigrateTeamReferences resolves legacy team name references in templates
// and project modules to team ids, in place. A reference is resolved when a
// team with that name (ignoring case) exists; the legacy name is then
// cleared. Unresolvable names are left untouched. It returns the number of
// references rewritten.
func MigrateTeamReferences(snap *models.Snapshot) int {
	migrated := 0
	resolve := func(teamID, legacy *string) {
		if *legacy == "" {
			return
		}
		i := teamIndexByName(snap.Teams, *legacy)
		if i < 0 {
			return
		}
		if *teamID == "" {
			*teamID = snap.Teams[i].ID
		}
		*legacy = ""
		migrated++
	}

	for i := range snap.ModuleTemplates {
		t := &snap.ModuleTemplates[i]
		resolve(&t.TeamID, &t.LegacyTeam)
	}
	for i := range snap.Projects {
		for j := range snap.Projects[i].Modules {
			m := &snap.Projects[i].Modules[j]
			resolve(&m.TeamID, &m.LegacyTeam)
		}
	}
	return migrated
}
