// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

import (
	"strings"
	"time"
)

// TaskStatus is the local completion state of a task or sub-task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// SyncStatus tracks a project's remote synchronization state.
type SyncStatus string

const (
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// Project status values.
const (
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
)

// ModuleActive is the status of a live module.
const ModuleActive = "active"

// TempIDPrefix marks identifiers synthesized locally while no remote id
// exists yet.
const TempIDPrefix = "temp-"

// IsTempID reports whether id was synthesized locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Project is a client engagement mirrored to a Plane project.
//
// Version increases on every store write of the project. Background jobs
// use it to avoid overwriting a newer optimistic update.
type Project struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SalesforceNumber string     `json:"salesforceNumber"`
	BoardID          string     `json:"boardId"`
	PlaneProjectID   string     `json:"planeProjectId"`
	Identifier       string     `json:"identifier"`
	Description      string     `json:"description"`
	Modules          []Module   `json:"modules"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	SyncStatus       SyncStatus `json:"syncStatus,omitempty"`
	SyncError        string     `json:"syncError,omitempty"`
	IsDeleting       bool       `json:"isDeleting,omitempty"`
	Version          uint64     `json:"version"`
}

// Module is a project module, usually instantiated from a template.
type Module struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	TeamID        string `json:"teamId"`
	LegacyTeam    string `json:"team,omitempty"`
	PlaneModuleID string `json:"planeModuleId"`
	Tasks         []Task `json:"tasks"`
	Status        string `json:"status"`
}

// Task mirrors one Plane issue.
type Task struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ItemID       string     `json:"itemId"`
	PlaneIssueID string     `json:"planeIssueId"`
	Status       TaskStatus `json:"status"`
	Description  string     `json:"description"`
	SubTasks     []SubTask  `json:"subTasks"`
}

// SubTask mirrors one Plane sub-issue.
type SubTask struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PlaneSubIssueID string     `json:"planeSubIssueId"`
	Status          TaskStatus `json:"status"`
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	out.Modules = make([]Module, len(p.Modules))
	for i, m := range p.Modules {
		out.Modules[i] = m.Clone()
	}
	return out
}

// Clone returns a deep copy of the module.
func (m Module) Clone() Module {
	out := m
	out.Tasks = make([]Task, len(m.Tasks))
	for i, t := range m.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.SubTasks = append(make([]SubTask, 0, len(t.SubTasks)), t.SubTasks...)
	return out
}

// ModuleByName returns the index of the module with the given name
// (case-insensitive), or -1.
func (p *Project) ModuleByName(name string) int {
	for i := range p.Modules {
		if strings.EqualFold(strings.TrimSpace(p.Modules[i].Name), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// ModuleIndex returns the index of the module with the given id, or -1.
func (p *Project) ModuleIndex(id string) int {
	for i := range p.Modules {
		if p.Modules[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskIndex returns the index of the task with the given id, or -1.
func (m *Module) TaskIndex(id string) int {
	for i := range m.Tasks {
		if m.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// SubTaskIndex returns the index of the sub-task with the given id, or -1.
func (t *Task) SubTaskIndex(id string) int {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == id {
			return i
		}
	}
	return -1
}

// UsesTeam reports whether any module of the project belongs to teamID.
func (p *Project) UsesTeam(teamID string) bool {
	for i := range p.Modules {
		if p.Modules[i].TeamID == teamID {
			return true
		}
	}
	return false
}

// RecomputeProgress sets Progress from the project's tasks.
func (p *Project) RecomputeProgress() {
	p.Progress = ComputeProgress(p.Modules)
}
