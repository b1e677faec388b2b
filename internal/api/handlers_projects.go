// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/store"
	intsync "github.com/tomtom215/planemanager/internal/sync"
)

// ListProjects returns all projects, optionally filtered by ?teamId= and
// ?syncStatus=.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var projects []models.Project
	if teamID := r.URL.Query().Get("teamId"); teamID != "" {
		projects = h.store.ProjectsByTeam(teamID)
	} else {
		projects = h.store.Projects()
	}

	if status := r.URL.Query().Get("syncStatus"); status != "" {
		filtered := projects[:0]
		for _, p := range projects {
			if string(p.SyncStatus) == status {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}
	if projects == nil {
		projects = []models.Project{}
	}
	NewResponseWriter(w, r).List(projects, len(projects))
}

// GetProject returns one project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	project, ok := h.store.ProjectByID(id)
	if !ok {
		respondError(w, r, fmt.Errorf("project %q: %w", id, store.ErrNotFound))
		return
	}
	NewResponseWriter(w, r).Success(project)
}

// CreateProject stores an optimistic project and answers 202 with it. The
// Plane project is created in the background; the outcome is pushed as a
// notification and the project's syncStatus.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.engine != nil, "Plane integration") {
		return
	}
	var in intsync.CreateProjectInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	project, err := h.engine.CreateProject(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Accepted(project)
}

// UpdateProject changes local project fields.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectUpdateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	project, err := h.store.UpdateProject(chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(project)
}

// DeleteProject deletes the project in Plane and then locally.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.engine != nil, "Plane integration") {
		return
	}
	if err := h.engine.DeleteProject(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("planeProjectId")); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// AddModule creates a template or custom module in Plane and adds it to
// the project.
func (h *Handler) AddModule(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.engine != nil, "Plane integration") {
		return
	}
	var req AddModuleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	module, err := h.engine.AddModuleToProject(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(module)
}

// RemoveModule removes a module locally and in Plane.
func (h *Handler) RemoveModule(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.engine != nil, "Plane integration") {
		return
	}
	err := h.engine.RemoveModuleFromProject(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// UpdateTask changes a task. Project progress is recomputed by the store.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskUpdateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	task, err := h.store.UpdateTask(chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"),
		chi.URLParam(r, "taskId"), req.toPatch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(task)
}

// AddSubTask appends a sub-task to a task.
func (h *Handler) AddSubTask(w http.ResponseWriter, r *http.Request) {
	var req SubTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	sub, err := h.store.AddSubTask(chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"),
		chi.URLParam(r, "taskId"), models.SubTask{Name: req.Name, Status: req.Status})
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(sub)
}

// UpdateSubTask changes a sub-task.
func (h *Handler) UpdateSubTask(w http.ResponseWriter, r *http.Request) {
	var req SubTaskUpdateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	sub, err := h.store.UpdateSubTask(chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"),
		chi.URLParam(r, "taskId"), chi.URLParam(r, "subTaskId"), req.toPatch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(sub)
}

// DeleteSubTask removes a sub-task.
func (h *Handler) DeleteSubTask(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteSubTask(chi.URLParam(r, "id"), chi.URLParam(r, "moduleId"),
		chi.URLParam(r, "taskId"), chi.URLParam(r, "subTaskId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}
