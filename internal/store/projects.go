// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/planemanager/internal/models"
)

// errNoChange aborts a mutation that would not change anything.
var errNoChange = errors.New("no change")

// ProjectPatch lists the project fields to change. Nil fields are kept.
type ProjectPatch struct {
	Name             *string
	SalesforceNumber *string
	BoardID          *string
	Description      *string
	Status           *string
}

// Projects returns all projects.
func (s *Store) Projects() []models.Project {
	var out []models.Project
	s.read(func(snap *models.Snapshot) {
		out = make([]models.Project, len(snap.Projects))
		for i, p := range snap.Projects {
			out[i] = p.Clone()
		}
	})
	return out
}

// ProjectByID returns the project with the given local id.
func (s *Store) ProjectByID(id string) (models.Project, bool) {
	return s.findProject(func(p *models.Project) bool { return p.ID == id })
}

// ProjectByPlaneID returns the project linked to a Plane project.
func (s *Store) ProjectByPlaneID(planeProjectID string) (models.Project, bool) {
	if planeProjectID == "" {
		return models.Project{}, false
	}
	return s.findProject(func(p *models.Project) bool { return p.PlaneProjectID == planeProjectID })
}

func (s *Store) findProject(match func(p *models.Project) bool) (models.Project, bool) {
	var (
		out models.Project
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		for i := range snap.Projects {
			if match(&snap.Projects[i]) {
				out, ok = snap.Projects[i].Clone(), true
				return
			}
		}
	})
	return out, ok
}

// ProjectsByTeam returns the projects with at least one module of teamID.
func (s *Store) ProjectsByTeam(teamID string) []models.Project {
	out := []models.Project{}
	s.read(func(snap *models.Snapshot) {
		for i := range snap.Projects {
			if snap.Projects[i].UsesTeam(teamID) {
				out = append(out, snap.Projects[i].Clone())
			}
		}
	})
	return out
}

// AddProject inserts a project. Missing ids, statuses and timestamps are
// filled in and progress is computed from the tasks.
func (s *Store) AddProject(project models.Project) (models.Project, error) {
	project = project.Clone()
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return models.Project{}, fmt.Errorf("project: %w", ErrNameRequired)
	}
	if project.ID == "" {
		project.ID = s.newID()
	}
	now := s.now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.ProjectActive
	}
	for i := range project.Modules {
		if err := s.prepareModule(&project.Modules[i]); err != nil {
			return models.Project{}, err
		}
	}
	project.RecomputeProgress()
	project.Version = 1

	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		if projectIndex(snap.Projects, project.ID) >= 0 {
			return Event{}, fmt.Errorf("project %q: %w", project.ID, ErrDuplicateID)
		}
		snap.Projects = append(snap.Projects, project)
		return Event{Type: EventCreated, Entity: EntityProject, ID: project.ID, ProjectID: project.ID, Version: project.Version}, nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return project.Clone(), nil
}

// UpdateProject applies patch to a project.
func (s *Store) UpdateProject(id string, patch ProjectPatch) (models.Project, error) {
	return s.UpdateProjectFunc(id, func(p *models.Project) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("project: %w", ErrNameRequired)
			}
			p.Name = name
		}
		if patch.SalesforceNumber != nil {
			p.SalesforceNumber = *patch.SalesforceNumber
		}
		if patch.BoardID != nil {
			p.BoardID = *patch.BoardID
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		return nil
	})
}

// UpdateProjectFunc applies fn to a copy of the project and stores the
// result. Progress is not recomputed; fn calls RecomputeProgress when it
// touches tasks.
func (s *Store) UpdateProjectFunc(id string, fn func(p *models.Project) error) (models.Project, error) {
	return s.withProject(id, nil, func(p *models.Project) (Event, error) {
		if err := fn(p); err != nil {
			return Event{}, err
		}
		return Event{Type: EventUpdated, Entity: EntityProject}, nil
	})
}

// UpdateProjectIfVersion is UpdateProjectFunc guarded by the version stamp:
// it fails with ErrVersionConflict when the project changed since version.
func (s *Store) UpdateProjectIfVersion(id string, version uint64, fn func(p *models.Project) error) (models.Project, error) {
	return s.withProject(id, &version, func(p *models.Project) (Event, error) {
		if err := fn(p); err != nil {
			return Event{}, err
		}
		return Event{Type: EventUpdated, Entity: EntityProject}, nil
	})
}

// SetProjectProgress stores a progress value computed elsewhere, provided
// the project is still at expectedVersion. It reports whether the stored
// value changed; an equal value is not written.
func (s *Store) SetProjectProgress(id string, expectedVersion uint64, progress int) (models.Project, bool, error) {
	updated, err := s.withProject(id, &expectedVersion, func(p *models.Project) (Event, error) {
		if p.Progress == progress {
			return Event{}, errNoChange
		}
		p.Progress = progress
		return Event{Type: EventUpdated, Entity: EntityProject}, nil
	})
	if errors.Is(err, errNoChange) {
		current, _ := s.ProjectByID(id)
		return current, false, nil
	}
	if err != nil {
		return models.Project{}, false, err
	}
	return updated, true, nil
}

// ReplaceProject swaps the project oldID for project in one step, keeping
// its position. It is how an optimistic project with a temporary id becomes
// the synced one.
func (s *Store) ReplaceProject(oldID string, project models.Project) (models.Project, error) {
	project = project.Clone()
	if project.ID == "" {
		project.ID = oldID
	}
	for i := range project.Modules {
		if err := s.prepareModule(&project.Modules[i]); err != nil {
			return models.Project{}, err
		}
	}
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := projectIndex(snap.Projects, oldID)
		if i < 0 {
			return Event{}, fmt.Errorf("project %q: %w", oldID, ErrNotFound)
		}
		if project.ID != oldID && projectIndex(snap.Projects, project.ID) >= 0 {
			return Event{}, fmt.Errorf("project %q: %w", project.ID, ErrDuplicateID)
		}
		old := snap.Projects[i]
		if project.CreatedAt.IsZero() {
			project.CreatedAt = old.CreatedAt
		}
		project.UpdatedAt = s.now().UTC()
		project.Version = old.Version + 1
		project.RecomputeProgress()
		snap.Projects[i] = project
		return Event{
			Type:       EventReplaced,
			Entity:     EntityProject,
			ID:         project.ID,
			ProjectID:  project.ID,
			PreviousID: oldID,
			Version:    project.Version,
		}, nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return project.Clone(), nil
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(id string) error {
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := projectIndex(snap.Projects, id)
		if i < 0 {
			return Event{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
		}
		snap.Projects = append(snap.Projects[:i], snap.Projects[i+1:]...)
		return Event{Type: EventDeleted, Entity: EntityProject, ID: id, ProjectID: id}, nil
	})
	return err
}

// withProject runs fn on the project id inside a mutation, bumping its
// version and updatedAt. When expected is set the project must still be at
// that version.
func (s *Store) withProject(id string, expected *uint64, fn func(p *models.Project) (Event, error)) (models.Project, error) {
	var out models.Project
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := projectIndex(snap.Projects, id)
		if i < 0 {
			return Event{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
		}
		p := &snap.Projects[i]
		if expected != nil && p.Version != *expected {
			return Event{}, fmt.Errorf("project %q is at version %d, expected %d: %w",
				id, p.Version, *expected, ErrVersionConflict)
		}

		ev, err := fn(p)
		if err != nil {
			return Event{}, err
		}
		p.Version++
		p.UpdatedAt = s.now().UTC()

		if ev.ID == "" {
			ev.ID = id
		}
		ev.ProjectID = id
		ev.Version = p.Version
		out = p.Clone()
		return ev, nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return out, nil
}

func projectIndex(projects []models.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
