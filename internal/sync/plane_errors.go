// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ErrQueueClosed is returned for requests submitted after Close.
var ErrQueueClosed = errors.New("plane request queue closed")

// APIError is a failed Plane request. Status is 0 when no HTTP response was
// received (transport failure, open circuit breaker).
type APIError struct {
	Status  int
	Body    string
	Message string
	Err     error
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("plane request failed: %s", e.Message)
	}
	return fmt.Sprintf("plane API error %d: %s", e.Status, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports an HTTP 429 answer.
func (e *APIError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// IsServerError reports a 5xx answer.
func (e *APIError) IsServerError() bool {
	return e.Status >= 500
}

// IsNotFound reports an HTTP 404 answer.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// isTransient reports failures worth retrying outside the 429 loop:
// server errors and transport failures that were not caused by the
// caller's context.
func (e *APIError) isTransient() bool {
	if e.IsServerError() {
		return true
	}
	return e.Status == 0 && e.Err != nil && !isContextError(e.Err)
}

// ConfigError reports a missing Plane connection setting. It is returned
// before any network call.
type ConfigError struct {
	Field string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("plane client is not configured: %s is required", e.Field)
}

// newAPIError builds an APIError from a non-2xx response. The message is
// taken from the usual Plane error fields when the body is JSON.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		Status:  status,
		Body:    string(body),
		Message: errorMessage(status, body),
	}
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, msg := range []string{payload.Error, payload.Detail, payload.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
