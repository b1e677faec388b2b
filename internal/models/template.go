// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

// ModuleTemplate is a reusable list of tasks a team applies to projects.
//
// TeamID references the owning team. LegacyTeam carries a team name from
// older snapshots; the store resolves it to TeamID and clears it.
type ModuleTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	TeamID      string         `json:"teamId"`
	LegacyTeam  string         `json:"team,omitempty"`
	Tasks       []TaskTemplate `json:"tasks"`
}

// TaskTemplate becomes one Plane issue when the template is applied.
type TaskTemplate struct {
	Name     string            `json:"name"`
	SubTasks []SubTaskTemplate `json:"subTasks"`
}

// SubTaskTemplate becomes one Plane sub-issue.
type SubTaskTemplate struct {
	Name string `json:"name"`
}

// Clone returns a deep copy of the template.
func (t ModuleTemplate) Clone() ModuleTemplate {
	out := t
	out.Tasks = make([]TaskTemplate, len(t.Tasks))
	for i, task := range t.Tasks {
		out.Tasks[i] = task
		out.Tasks[i].SubTasks = append(make([]SubTaskTemplate, 0, len(task.SubTasks)), task.SubTasks...)
	}
	return out
}
