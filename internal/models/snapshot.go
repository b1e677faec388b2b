// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

import "time"

// SnapshotVersion is written to metadata.json.
const SnapshotVersion = "1.0"

// Snapshot is the whole persisted application state. It is also the body
// of POST /api/save-data and the response of GET /api/load-data.
type Snapshot struct {
	Teams           []Team           `json:"teams"`
	ModuleTemplates []ModuleTemplate `json:"moduleTemplates"`
	Projects        []Project        `json:"projects"`
	LastSync        *time.Time       `json:"lastSync"`
}

// Metadata is the content of metadata.json. Checksums holds the SHA-256
// of each data file written in the same save.
type Metadata struct {
	LastSync  *time.Time        `json:"lastSync"`
	Version   string            `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Checksums map[string]string `json:"checksums,omitempty"`
}

// EmptySnapshot returns a snapshot with empty, non-nil collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Teams:           []Team{},
		ModuleTemplates: []ModuleTemplate{},
		Projects:        []Project{},
	}
}

// IsEmpty reports whether the snapshot holds no entities.
func (s Snapshot) IsEmpty() bool {
	return len(s.Teams) == 0 && len(s.ModuleTemplates) == 0 && len(s.Projects) == 0
}

// Clone returns a deep copy of the snapshot with non-nil collections.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Teams:           append(make([]Team, 0, len(s.Teams)), s.Teams...),
		ModuleTemplates: make([]ModuleTemplate, len(s.ModuleTemplates)),
		Projects:        make([]Project, len(s.Projects)),
	}
	for i, t := range s.ModuleTemplates {
		out.ModuleTemplates[i] = t.Clone()
	}
	for i, p := range s.Projects {
		out.Projects[i] = p.Clone()
	}
	if s.LastSync != nil {
		ts := *s.LastSync
		out.LastSync = &ts
	}
	return out
}

// Normalize returns a deep copy where every nested nil slice is empty, so
// that encoding and decoding the snapshot yields an identical value.
func (s Snapshot) Normalize() Snapshot {
	return s.Clone()
}
