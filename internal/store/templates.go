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

// TemplatePatch lists the template fields to change. Nil fields are kept.
type TemplatePatch struct {
	Name        *string
	Description *string
	Icon        *string
	TeamID      *string
	Tasks       *[]models.TaskTemplate
}

// Templates returns all module templates.
func (s *Store) Templates() []models.ModuleTemplate {
	var out []models.ModuleTemplate
	s.read(func(snap *models.Snapshot) {
		out = make([]models.ModuleTemplate, len(snap.ModuleTemplates))
		for i, t := range snap.ModuleTemplates {
			out[i] = t.Clone()
		}
	})
	return out
}

// TemplateByID returns the template with the given id.
func (s *Store) TemplateByID(id string) (models.ModuleTemplate, bool) {
	var (
		out models.ModuleTemplate
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		if i := templateIndex(snap.ModuleTemplates, id); i >= 0 {
			out, ok = snap.ModuleTemplates[i].Clone(), true
		}
	})
	return out, ok
}

// TemplateByName returns the template with the given name, ignoring case.
func (s *Store) TemplateByName(name string) (models.ModuleTemplate, bool) {
	var (
		out models.ModuleTemplate
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		if i := templateIndexByName(snap.ModuleTemplates, name, ""); i >= 0 {
			out, ok = snap.ModuleTemplates[i].Clone(), true
		}
	})
	return out, ok
}

// TemplatesByTeam returns the templates owned by teamID.
func (s *Store) TemplatesByTeam(teamID string) []models.ModuleTemplate {
	out := []models.ModuleTemplate{}
	s.read(func(snap *models.Snapshot) {
		for _, t := range snap.ModuleTemplates {
			if t.TeamID == teamID {
				out = append(out, t.Clone())
			}
		}
	})
	return out
}

// AddTemplate inserts a module template. Names are unique ignoring case.
// A legacy team name is resolved to the team id when possible.
func (s *Store) AddTemplate(tmpl models.ModuleTemplate) (models.ModuleTemplate, error) {
	tmpl = tmpl.Clone()
	tmpl.Name = strings.TrimSpace(tmpl.Name)
	if tmpl.Name == "" {
		return models.ModuleTemplate{}, fmt.Errorf("template: %w", ErrNameRequired)
	}
	if tmpl.ID == "" {
		tmpl.ID = s.newID()
	}

	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		if templateIndex(snap.ModuleTemplates, tmpl.ID) >= 0 {
			return Event{}, fmt.Errorf("template %q: %w", tmpl.ID, ErrDuplicateID)
		}
		if templateIndexByName(snap.ModuleTemplates, tmpl.Name, "") >= 0 {
			return Event{}, fmt.Errorf("%q: %w", tmpl.Name, ErrDuplicateTemplateName)
		}
		if tmpl.TeamID == "" && tmpl.LegacyTeam != "" {
			if i := teamIndexByName(snap.Teams, tmpl.LegacyTeam); i >= 0 {
				tmpl.TeamID, tmpl.LegacyTeam = snap.Teams[i].ID, ""
			}
		}
		if tmpl.TeamID != "" && teamIndex(snap.Teams, tmpl.TeamID) < 0 {
			return Event{}, fmt.Errorf("team %q: %w", tmpl.TeamID, ErrNotFound)
		}
		snap.ModuleTemplates = append(snap.ModuleTemplates, tmpl)
		return Event{Type: EventCreated, Entity: EntityTemplate, ID: tmpl.ID}, nil
	})
	if err != nil {
		return models.ModuleTemplate{}, err
	}
	return tmpl.Clone(), nil
}

// UpdateTemplate applies patch to a template. Projects that already copied
// the template's tasks are not affected.
func (s *Store) UpdateTemplate(id string, patch TemplatePatch) (models.ModuleTemplate, error) {
	var updated models.ModuleTemplate
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := templateIndex(snap.ModuleTemplates, id)
		if i < 0 {
			return Event{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
		}
		tmpl := snap.ModuleTemplates[i]

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Event{}, fmt.Errorf("template: %w", ErrNameRequired)
			}
			if templateIndexByName(snap.ModuleTemplates, name, id) >= 0 {
				return Event{}, fmt.Errorf("%q: %w", name, ErrDuplicateTemplateName)
			}
			tmpl.Name = name
		}
		if patch.Description != nil {
			tmpl.Description = *patch.Description
		}
		if patch.Icon != nil {
			tmpl.Icon = *patch.Icon
		}
		if patch.TeamID != nil {
			if *patch.TeamID != "" && teamIndex(snap.Teams, *patch.TeamID) < 0 {
				return Event{}, fmt.Errorf("team %q: %w", *patch.TeamID, ErrNotFound)
			}
			tmpl.TeamID, tmpl.LegacyTeam = *patch.TeamID, ""
		}
		if patch.Tasks != nil {
			tmpl.Tasks = models.ModuleTemplate{Tasks: *patch.Tasks}.Clone().Tasks
		}

		snap.ModuleTemplates[i] = tmpl
		updated = tmpl.Clone()
		return Event{Type: EventUpdated, Entity: EntityTemplate, ID: id}, nil
	})
	if err != nil {
		return models.ModuleTemplate{}, err
	}
	return updated, nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(id string) error {
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := templateIndex(snap.ModuleTemplates, id)
		if i < 0 {
			return Event{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
		}
		snap.ModuleTemplates = append(snap.ModuleTemplates[:i], snap.ModuleTemplates[i+1:]...)
		return Event{Type: EventDeleted, Entity: EntityTemplate, ID: id}, nil
	})
	return err
}

func templateIndex(templates []models.ModuleTemplate, id string) int {
	for i := range templates {
		if templates[i].ID == id {
			return i
		}
	}
	return -1
}

// templateIndexByName finds name ignoring case, skipping the template exceptID.
func templateIndexByName(templates []models.ModuleTemplate, name, exceptID string) int {
	name = strings.TrimSpace(name)
	for i := range templates {
		if templates[i].ID != exceptID && strings.EqualFold(strings.TrimSpace(templates[i].Name), name) {
			return i
		}
	}
	return -1
}
