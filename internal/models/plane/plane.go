// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package plane contains the Plane.so REST API wire types.

Only the fields the application reads are modelled; unknown fields are
ignored on decode. List endpoints may answer with a bare array or with a
paginated object carrying "results", and ListResponse accepts both.
*/
package plane

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// State groups reported by Plane.
const (
	GroupBacklog   = "backlog"
	GroupUnstarted = "unstarted"
	GroupStarted   = "started"
	GroupCompleted = "completed"
	GroupCancelled = "cancelled"
)

// Project is a Plane project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateProjectRequest is the body of POST /projects/.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description,omitempty"`
	Network     int    `json:"network,omitempty"`
}

// Module is a Plane module.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
	Project     string `json:"project,omitempty"`
}

// CreateModuleRequest is the body of POST /projects/{id}/modules/.
type CreateModuleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModuleIssuesRequest is the body of POST .../modules/{mid}/module-issues/.
type ModuleIssuesRequest struct {
	Issues []string `json:"issues"`
}

// Issue is a Plane work item.
type Issue struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SequenceID  int      `json:"sequence_id,omitempty"`
	State       StateRef `json:"state"`
	Parent      *string  `json:"parent,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	StartedAt   *string  `json:"started_at,omitempty"`
	CompletedAt *string  `json:"completed_at,omitempty"`
	Project     string   `json:"project,omitempty"`
}

// CreateIssueRequest is the body of POST /projects/{id}/issues/.
type CreateIssueRequest struct {
	Name            string   `json:"name"`
	DescriptionHTML string   `json:"description_html,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Parent          string   `json:"parent,omitempty"`
	Priority        string   `json:"priority,omitempty"`
}

// UpdateIssueRequest is the body of PATCH /projects/{id}/issues/{iid}/.
// Nil fields are left unchanged.
type UpdateIssueRequest struct {
	Name   *string  `json:"name,omitempty"`
	Parent *string  `json:"parent,omitempty"`
	State  *string  `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Label is a Plane issue label.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CreateLabelRequest is the body of POST /projects/{id}/labels/.
type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// StateRef is an issue state. Plane sends the state id as a string, or the
// full state object when the request asks for expand=state.
type StateRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Group string `json:"group,omitempty"`
}

// UnmarshalJSON accepts a state id string, a state object, or null.
func (s *StateRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = StateRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode state id: %w", err)
		}
		*s = StateRef{ID: id}
		return nil
	}
	type stateObject StateRef
	var obj stateObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode state object: %w", err)
	}
	*s = StateRef(obj)
	return nil
}

// ListResponse decodes either a bare JSON array or a paginated object.
type ListResponse[T any] struct {
	Results         []T    `json:"results"`
	NextCursor      string `json:"next_cursor,omitempty"`
	NextPageResults bool   `json:"next_page_results,omitempty"`
	TotalCount      int    `json:"total_count,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ListResponse[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		*l = ListResponse[T]{Results: items}
		return nil
	}
	var p listPage[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode page: %w", err)
	}
	*l = ListResponse[T](p)
	return nil
}

// listPage has the fields of ListResponse without its decoder.
type listPage[T any] struct {
	Results         []T    `json:"results"`
	NextCursor      string `json:"next_cursor,omitempty"`
	NextPageResults bool   `json:"next_page_results,omitempty"`
	TotalCount      int    `json:"total_count,omitempty"`
}
