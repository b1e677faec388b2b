// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/planemanager/internal/logging"
)

// SyncStatus is the progress sync state.
type SyncStatus struct {
	IsSyncing bool       `json:"isSyncing"`
	LastSync  *time.Time `json:"lastSync"`
}

// TriggerProgressSync runs a progress sync over all linked projects and
// returns the per-project results. An overlapping call returns an empty
// list.
func (h *Handler) TriggerProgressSync(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.progress != nil, "Progress sync") {
		return
	}
	results, err := h.progress.TriggerSync(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("projects", len(results)).Msg("Manual progress sync finished")
	NewResponseWriter(w, r).List(results, len(results))
}

// SyncOneProjectProgress recomputes the progress of one Plane project.
func (h *Handler) SyncOneProjectProgress(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.progress != nil, "Progress sync") {
		return
	}
	planeProjectID := chi.URLParam(r, "planeProjectId")
	result, err := h.progress.SyncProjectProgress(r.Context(), planeProjectID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}

// GetSyncStatus reports whether a progress sync runs and when the last one
// finished.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := SyncStatus{LastSync: h.store.LastSync()}
	if h.progress != nil {
		status.IsSyncing = h.progress.IsSyncing()
	}
	NewResponseWriter(w, r).Success(status)
}

// ListPlaneProjects returns the cached Plane project list.
func (h *Handler) ListPlaneProjects(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.refresher != nil, "Plane project list") {
		return
	}
	projects, err := h.refresher.RemoteProjects(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(projects, len(projects))
}
