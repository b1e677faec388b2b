// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/planemanager/internal/store"
)

// ListTeams returns all teams.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams := h.store.Teams()
	NewResponseWriter(w, r).List(teams, len(teams))
}

// GetTeam returns one team.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	team, ok := h.store.TeamByID(id)
	if !ok {
		respondError(w, r, fmt.Errorf("team %q: %w", id, store.ErrNotFound))
		return
	}
	NewResponseWriter(w, r).Success(team)
}

// CreateTeam adds a team.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	team, err := h.store.AddTeam(req.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(team)
}

// UpdateTeam changes a team. Renaming migrates legacy template references.
func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamUpdateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	team, err := h.store.UpdateTeam(chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(team)
}

// DeleteTeam removes a team.
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTeam(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// ListTeamTemplates returns the templates owned by a team.
func (h *Handler) ListTeamTemplates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.TeamByID(id); !ok {
		respondError(w, r, fmt.Errorf("team %q: %w", id, store.ErrNotFound))
		return
	}
	templates := h.store.TemplatesByTeam(id)
	NewResponseWriter(w, r).List(templates, len(templates))
}
