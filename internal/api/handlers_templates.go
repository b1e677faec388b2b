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

// ListTemplates returns all module templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := h.store.Templates()
	NewResponseWriter(w, r).List(templates, len(templates))
}

// GetTemplate returns one template.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tmpl, ok := h.store.TemplateByID(id)
	if !ok {
		respondError(w, r, fmt.Errorf("template %q: %w", id, store.ErrNotFound))
		return
	}
	NewResponseWriter(w, r).Success(tmpl)
}

// CreateTemplate adds a template.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	tmpl, err := h.store.AddTemplate(req.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(tmpl)
}

// UpdateTemplate changes a template.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateUpdateRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	tmpl, err := h.store.UpdateTemplate(chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(tmpl)
}

// DeleteTemplate removes a template.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}
