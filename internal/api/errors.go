// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/planemanager/internal/store"
	intsync "github.com/tomtom215/planemanager/internal/sync"
	"github.com/tomtom215/planemanager/internal/validation"
)

// respondError maps err to a status code and writes the error envelope.
//
//	not found                          404
//	invalid input                      400
//	duplicate or concurrent change     409
//	project not synced with Plane      409
//	Plane unreachable or breaker open  503
//	other Plane failure                502
//	anything else                      500
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondValidation(rw, verr)
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, store.ErrNameRequired),
		errors.Is(err, store.ErrInvalidTrigramme),
		errors.Is(err, store.ErrInvalidStatus):
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, store.ErrDuplicateTrigramme),
		errors.Is(err, store.ErrDuplicateTemplateName),
		errors.Is(err, store.ErrModuleExists),
		errors.Is(err, store.ErrVersionConflict):
		rw.Conflict(err.Error())
	case errors.Is(err, intsync.ErrProjectNotSynced):
		rw.Error(http.StatusConflict, ErrCodeNotSynced, err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Plane is temporarily unavailable")
	default:
		var cfgErr *intsync.ConfigError
		if errors.As(err, &cfgErr) {
			rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, err.Error())
			return
		}
		if _, ok := intsync.AsAPIError(err); ok {
			rw.ExternalServiceError("plane", err)
			return
		}
		rw.InternalError(err)
	}
}

func respondValidation(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	var details interface{}
	if apiErr.Details != nil {
		details = apiErr.Details
	}
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, details)
}

// respondDecodeError writes the error of decodeAndValidate. Malformed
// bodies are 400 BAD_REQUEST, failed validation 400 VALIDATION_ERROR.
func respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondValidation(NewResponseWriter(w, r), verr)
		return
	}
	NewResponseWriter(w, r).BadRequest(err.Error())
}
