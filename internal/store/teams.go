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

// TeamPatch lists the team fields to change. Nil fields are kept.
// An empty Trigramme re-derives the code from the (new) name.
type TeamPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	Trigramme   *string
}

// Teams returns all teams.
func (s *Store) Teams() []models.Team {
	var out []models.Team
	s.read(func(snap *models.Snapshot) {
		out = append(make([]models.Team, 0, len(snap.Teams)), snap.Teams...)
	})
	return out
}

// TeamByID returns the team with the given id.
func (s *Store) TeamByID(id string) (models.Team, bool) {
	var (
		out models.Team
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		if i := teamIndex(snap.Teams, id); i >= 0 {
			out, ok = snap.Teams[i], true
		}
	})
	return out, ok
}

// TeamByTrigramme returns the team using code.
func (s *Store) TeamByTrigramme(code string) (models.Team, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var (
		out models.Team
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		for _, t := range snap.Teams {
			if t.Trigramme == code {
				out, ok = t, true
				return
			}
		}
	})
	return out, ok
}

// TeamByName returns the team with the given name, ignoring case.
func (s *Store) TeamByName(name string) (models.Team, bool) {
	var (
		out models.Team
		ok  bool
	)
	s.read(func(snap *models.Snapshot) {
		if i := teamIndexByName(snap.Teams, name); i >= 0 {
			out, ok = snap.Teams[i], true
		}
	})
	return out, ok
}

// AddTeam inserts a team. An empty id is generated; an empty trigramme is
// derived from the name. The trigramme must be unique.
func (s *Store) AddTeam(team models.Team) (models.Team, error) {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return models.Team{}, fmt.Errorf("team: %w", ErrNameRequired)
	}
	if team.ID == "" {
		team.ID = s.newID()
	}

	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		if teamIndex(snap.Teams, team.ID) >= 0 {
			return Event{}, fmt.Errorf("team %q: %w", team.ID, ErrDuplicateID)
		}
		code, err := resolveTrigramme(snap.Teams, team.ID, team.Trigramme, team.Name)
		if err != nil {
			return Event{}, err
		}
		team.Trigramme = code
		snap.Teams = append(snap.Teams, team)
		return Event{Type: EventCreated, Entity: EntityTeam, ID: team.ID}, nil
	})
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// UpdateTeam applies patch to a team. A rename first resolves legacy name
// references to the team so that no template or module loses its team.
func (s *Store) UpdateTeam(id string, patch TeamPatch) (models.Team, error) {
	var updated models.Team
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := teamIndex(snap.Teams, id)
		if i < 0 {
			return Event{}, fmt.Errorf("team %q: %w", id, ErrNotFound)
		}
		team := snap.Teams[i]

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Event{}, fmt.Errorf("team: %w", ErrNameRequired)
			}
			if name != team.Name {
				MigrateTeamReferences(snap)
				team.Name = name
			}
		}
		if patch.Description != nil {
			team.Description = *patch.Description
		}
		if patch.Color != nil {
			team.Color = *patch.Color
		}
		if patch.Icon != nil {
			team.Icon = *patch.Icon
		}
		if patch.Trigramme != nil {
			code, err := resolveTrigramme(snap.Teams, id, *patch.Trigramme, team.Name)
			if err != nil {
				return Event{}, err
			}
			team.Trigramme = code
		}

		snap.Teams[i] = team
		updated = team
		return Event{Type: EventUpdated, Entity: EntityTeam, ID: id}, nil
	})
	if err != nil {
		return models.Team{}, err
	}
	return updated, nil
}

// DeleteTeam removes a team. Templates and modules referencing it keep the
// dangling id.
func (s *Store) DeleteTeam(id string) error {
	_, err := s.mutate(func(snap *models.Snapshot) (Event, error) {
		i := teamIndex(snap.Teams, id)
		if i < 0 {
			return Event{}, fmt.Errorf("team %q: %w", id, ErrNotFound)
		}
		snap.Teams = append(snap.Teams[:i], snap.Teams[i+1:]...)
		return Event{Type: EventDeleted, Entity: EntityTeam, ID: id}, nil
	})
	return err
}

// resolveTrigramme normalizes code (deriving it from name when empty),
// validates it and checks it is not used by a team other than selfID.
func resolveTrigramme(teams []models.Team, selfID, code, name string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = models.DeriveTrigramme(name)
	}
	if !models.ValidTrigramme(code) {
		return "", fmt.Errorf("%q: %w", code, ErrInvalidTrigramme)
	}
	for _, t := range teams {
		if t.ID != selfID && t.Trigramme == code {
			return "", fmt.Errorf("%q used by team %q: %w", code, t.Name, ErrDuplicateTrigramme)
		}
	}
	return code, nil
}

// checkTrigrammes validates the trigrammes of a whole team list in place.
// Codes are upper-cased and empty ones derived from the team name, the
// same way AddTeam does; the result must be well formed and unique.
func checkTrigrammes(teams []models.Team) error {
	seen := make(map[string]string, len(teams))
	for i := range teams {
		code := strings.ToUpper(strings.TrimSpace(teams[i].Trigramme))
		if code == "" {
			code = models.DeriveTrigramme(teams[i].Name)
		}
		if !models.ValidTrigramme(code) {
			return fmt.Errorf("team %q: %q: %w", teams[i].Name, code, ErrInvalidTrigramme)
		}
		if other, dup := seen[code]; dup {
			return fmt.Errorf("%q used by teams %q and %q: %w", code, other, teams[i].Name, ErrDuplicateTrigramme)
		}
		seen[code] = teams[i].Name
		teams[i].Trigramme = code
	}
	return nil
}

func teamIndex(teams []models.Team, id string) int {
	for i := range teams {
		if teams[i].ID == id {
			return i
		}
	}
	return -1
}

func teamIndexByName(teams []models.Team, name string) int {
	name = strings.TrimSpace(name)
	for i := range teams {
		if strings.EqualFold(strings.TrimSpace(teams[i].Name), name) {
			return i
		}
	}
	return -1
}
