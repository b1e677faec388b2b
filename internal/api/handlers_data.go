// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/persistence"
)

// decodeSnapshot reads a snapshot body.
func decodeSnapshot(w http.ResponseWriter, r *http.Request) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return snap, errEmptyBody
		}
		return snap, fmt.Errorf("invalid snapshot: %w", err)
	}
	return snap, nil
}

// ExportData downloads the whole snapshot as a JSON attachment.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	snap := h.store.ExportData()
	filename := fmt.Sprintf("plane-manager-export-%s.json", time.Now().UTC().Format("2006-01-02"))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write export")
	}
}

// ImportData replaces the whole snapshot with the request body.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	snap, err := decodeSnapshot(w, r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if err := h.store.ImportData(snap); err != nil {
		respondError(w, r, err)
		return
	}
	imported := h.store.ExportData()
	logging.Ctx(r.Context()).Info().
		Int("teams", len(imported.Teams)).
		Int("templates", len(imported.ModuleTemplates)).
		Int("projects", len(imported.Projects)).
		Msg("Data imported")
	NewResponseWriter(w, r).Success(map[string]int{
		"teams":           len(imported.Teams),
		"moduleTemplates": len(imported.ModuleTemplates),
		"projects":        len(imported.Projects),
	})
}

// ClearData empties the store.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAllData(); err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Warn().Msg("All data cleared")
	NewResponseWriter(w, r).NoContent()
}

// SaveData is the gateway save endpoint. The body replaces the snapshot
// and is written through to disk before answering.
//
//	200 {"success": true, "message": "Data saved successfully"}
//	500 {"success": false, "error": "..."}
func (h *Handler) SaveData(w http.ResponseWriter, r *http.Request) {
	snap, err := decodeSnapshot(w, r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, persistence.SaveResponse{Success: false, Error: err.Error()})
		return
	}
	if err := h.store.ImportData(snap); err != nil {
		writeJSON(w, http.StatusInternalServerError, persistence.SaveResponse{Success: false, Error: err.Error()})
		return
	}
	if err := h.store.Save(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Gateway save failed")
		writeJSON(w, http.StatusInternalServerError, persistence.SaveResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, persistence.SaveResponse{Success: true, Message: "Data saved successfully"})
}

// LoadData is the gateway load endpoint. It waits for pending saves and
// reads the files, each of which falls back to its empty value when absent
// or unparsable.
func (h *Handler) LoadData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Flush(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Pending saves not flushed before load")
	}
	snap, err := h.gateway.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, persistence.SaveResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap.Normalize())
}
