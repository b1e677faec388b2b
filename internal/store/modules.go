// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import (
	"fmt"
	"strings"

	"github.com/tomtom215/planemanager/internal/models"
)

// TaskPatch lists the task fields to change. Nil fields are kept.
type TaskPatch struct {
	Name        *string
	Status      *models.TaskStatus
	Description *string
}

// SubTaskPatch lists the sub-task fields to change. Nil fields are kept.
type SubTaskPatch struct {
	Name   *string
	Status *models.TaskStatus
}

// AddModule appends a module to a project. A module whose name is already
// used in the project (ignoring case) is rejected with ErrModuleExists.
func (s *Store) AddModule(projectID string, module models.Module) (models.Module, error) {
	module = module.Clone()
	if err := s.prepareModule(&module); err != nil {
		return models.Module{}, err
	}

	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		if p.ModuleByName(module.Name) >= 0 {
			return Event{}, fmt.Errorf("%q in project %q: %w", module.Name, projectID, ErrModuleExists)
		}
		if p.ModuleIndex(module.ID) >= 0 {
			return Event{}, fmt.Errorf("module %q: %w", module.ID, ErrDuplicateID)
		}
		p.Modules = append(p.Modules, module)
		p.RecomputeProgress()
		return Event{Type: EventCreated, Entity: EntityModule, ID: module.ID}, nil
	})
	if err != nil {
		return models.Module{}, err
	}
	return module.Clone(), nil
}

// RemoveModule removes a module from a project and returns it.
func (s *Store) RemoveModule(projectID, moduleID string) (models.Module, error) {
	var removed models.Module
	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		i := p.ModuleIndex(moduleID)
		if i < 0 {
			return Event{}, fmt.Errorf("module %q: %w", moduleID, ErrNotFound)
		}
		removed = p.Modules[i].Clone()
		p.Modules = append(p.Modules[:i], p.Modules[i+1:]...)
		p.RecomputeProgress()
		return Event{Type: EventDeleted, Entity: EntityModule, ID: moduleID}, nil
	})
	if err != nil {
		return models.Module{}, err
	}
	return removed, nil
}

// UpdateTask applies patch to a task and recomputes the project progress.
func (s *Store) UpdateTask(projectID, moduleID, taskID string, patch TaskPatch) (models.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return models.Task{}, fmt.Errorf("%q: %w", *patch.Status, ErrInvalidStatus)
	}
	var updated models.Task
	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		task, err := findTask(p, moduleID, taskID)
		if err != nil {
			return Event{}, err
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Event{}, fmt.Errorf("task: %w", ErrNameRequired)
			}
			task.Name = name
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		p.RecomputeProgress()
		updated = task.Clone()
		return Event{Type: EventUpdated, Entity: EntityTask, ID: taskID}, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// AddSubTask appends a sub-task to a task.
func (s *Store) AddSubTask(projectID, moduleID, taskID string, sub models.SubTask) (models.SubTask, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return models.SubTask{}, fmt.Errorf("sub-task: %w", ErrNameRequired)
	}
	if sub.Status == "" {
		sub.Status = models.TaskTodo
	}
	if !sub.Status.Valid() {
		return models.SubTask{}, fmt.Errorf("%q: %w", sub.Status, ErrInvalidStatus)
	}
	if sub.ID == "" {
		sub.ID = s.newID()
	}

	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		task, err := findTask(p, moduleID, taskID)
		if err != nil {
			return Event{}, err
		}
		if task.SubTaskIndex(sub.ID) >= 0 {
			return Event{}, fmt.Errorf("sub-task %q: %w", sub.ID, ErrDuplicateID)
		}
		task.SubTasks = append(task.SubTasks, sub)
		return Event{Type: EventCreated, Entity: EntitySubTask, ID: sub.ID}, nil
	})
	if err != nil {
		return models.SubTask{}, err
	}
	return sub, nil
}

// UpdateSubTask applies patch to a sub-task.
func (s *Store) UpdateSubTask(projectID, moduleID, taskID, subTaskID string, patch SubTaskPatch) (models.SubTask, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return models.SubTask{}, fmt.Errorf("%q: %w", *patch.Status, ErrInvalidStatus)
	}
	var updated models.SubTask
	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		task, err := findTask(p, moduleID, taskID)
		if err != nil {
			return Event{}, err
		}
		i := task.SubTaskIndex(subTaskID)
		if i < 0 {
			return Event{}, fmt.Errorf("sub-task %q: %w", subTaskID, ErrNotFound)
		}
		sub := &task.SubTasks[i]
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Event{}, fmt.Errorf("sub-task: %w", ErrNameRequired)
			}
			sub.Name = name
		}
		if patch.Status != nil {
			sub.Status = *patch.Status
		}
		updated = *sub
		return Event{Type: EventUpdated, Entity: EntitySubTask, ID: subTaskID}, nil
	})
	if err != nil {
		return models.SubTask{}, err
	}
	return updated, nil
}

// DeleteSubTask removes a sub-task.
func (s *Store) DeleteSubTask(projectID, moduleID, taskID, subTaskID string) error {
	_, err := s.withProject(projectID, nil, func(p *models.Project) (Event, error) {
		task, err := findTask(p, moduleID, taskID)
		if err != nil {
			return Event{}, err
		}
		i := task.SubTaskIndex(subTaskID)
		if i < 0 {
			return Event{}, fmt.Errorf("sub-task %q: %w", subTaskID, ErrNotFound)
		}
		task.SubTasks = append(task.SubTasks[:i], task.SubTasks[i+1:]...)
		return Event{Type: EventDeleted, Entity: EntitySubTask, ID: subTaskID}, nil
	})
	return err
}

// prepareModule fills in ids and default statuses of a module and its tasks.
func (s *Store) prepareModule(m *models.Module) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("module: %w", ErrNameRequired)
	}
	if m.ID == "" {
		m.ID = s.newID()
	}
	if m.Status == "" {
		m.Status = models.ModuleActive
	}
	for i := range m.Tasks {
		t := &m.Tasks[i]
		if t.ID == "" {
			t.ID = s.newID()
		}
		if t.Status == "" {
			t.Status = models.TaskTodo
		}
		if !t.Status.Valid() {
			return fmt.Errorf("task %q status %q: %w", t.Name, t.Status, ErrInvalidStatus)
		}
		for j := range t.SubTasks {
			st := &t.SubTasks[j]
			if st.ID == "" {
				st.ID = s.newID()
			}
			if st.Status == "" {
				st.Status = models.TaskTodo
			}
		}
	}
	return nil
}

func findTask(p *models.Project, moduleID, taskID string) (*models.Task, error) {
	mi := p.ModuleIndex(moduleID)
	if mi < 0 {
		return nil, fmt.Errorf("module %q: %w", moduleID, ErrNotFound)
	}
	m := &p.Modules[mi]
	ti := m.TaskIndex(taskID)
	if ti < 0 {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	return &m.Tasks[ti], nil
}
