// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package store

import "errors"

// Sentinel errors. Callers match them with errors.Is; the returned errors
// wrap them with the offending id or value.
var (
	ErrNotFound              = errors.New("not found")
	ErrDuplicateID           = errors.New("id already exists")
	ErrNameRequired          = errors.New("name is required")
	ErrInvalidTrigramme      = errors.New("trigramme must be exactly three uppercase letters")
	ErrDuplicateTrigramme    = errors.New("trigramme already used by another team")
	ErrDuplicateTemplateName = errors.New("template name already exists")
	ErrModuleExists          = errors.New("module already exists in project")
	ErrInvalidStatus         = errors.New("invalid task status")
	ErrVersionConflict       = errors.New("project was modified concurrently")
)
