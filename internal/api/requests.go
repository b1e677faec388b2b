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

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/store"
	"github.com/tomtom215/planemanager/internal/validation"
)

// maxBodySize bounds request bodies. Imports carry the whole snapshot.
const maxBodySize = 32 << 20

// errEmptyBody is returned for a request without a JSON body.
var errEmptyBody = errors.New("request body is required")

// decodeAndValidate decodes the JSON body into dst and validates it.
// Unknown fields are ignored so older clients keep working.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// TeamRequest creates a team. An empty trigramme is derived from the name.
type TeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon" validate:"max=64"`
	Trigramme   string `json:"trigramme" validate:"omitempty,trigramme"`
}

func (req TeamRequest) toModel() models.Team {
	return models.Team{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Trigramme:   req.Trigramme,
	}
}

// TeamUpdateRequest changes the given team fields.
type TeamUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=64"`
	Trigramme   *string `json:"trigramme" validate:"omitempty,trigramme"`
}

func (req TeamUpdateRequest) toPatch() store.TeamPatch {
	return store.TeamPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Trigramme:   req.Trigramme,
	}
}

// SubTaskTemplateRequest is one sub-task of a template task.
type SubTaskTemplateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TaskTemplateRequest is one task of a template.
type TaskTemplateRequest struct {
	Name     string                   `json:"name" validate:"required,max=255"`
	SubTasks []SubTaskTemplateRequest `json:"subTasks" validate:"max=100,dive"`
}

// TemplateRequest creates a module template. The legacy team name field
// is accepted and resolved to a team id by the store.
type TemplateRequest struct {
	Name        string                `json:"name" validate:"required,max=255"`
	Description string                `json:"description" validate:"max=10000"`
	Icon        string                `json:"icon" validate:"max=64"`
	TeamID      string                `json:"teamId" validate:"max=64"`
	Team        string                `json:"team" validate:"max=100"`
	Tasks       []TaskTemplateRequest `json:"tasks" validate:"max=500,dive"`
}

func (req TemplateRequest) toModel() models.ModuleTemplate {
	return models.ModuleTemplate{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		TeamID:      req.TeamID,
		LegacyTeam:  req.Team,
		Tasks:       toTaskTemplates(req.Tasks),
	}
}

// TemplateUpdateRequest changes the given template fields. A tasks list
// replaces the whole list.
type TemplateUpdateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string                `json:"description" validate:"omitempty,max=10000"`
	Icon        *string                `json:"icon" validate:"omitempty,max=64"`
	TeamID      *string                `json:"teamId" validate:"omitempty,max=64"`
	Tasks       *[]TaskTemplateRequest `json:"tasks" validate:"omitempty,max=500,dive"`
}

func (req TemplateUpdateRequest) toPatch() store.TemplatePatch {
	patch := store.TemplatePatch{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		TeamID:      req.TeamID,
	}
	if req.Tasks != nil {
		tasks := toTaskTemplates(*req.Tasks)
		patch.Tasks = &tasks
	}
	return patch
}

func toTaskTemplates(in []TaskTemplateRequest) []models.TaskTemplate {
	out := make([]models.TaskTemplate, len(in))
	for i, t := range in {
		subs := make([]models.SubTaskTemplate, len(t.SubTasks))
		for j, s := range t.SubTasks {
			subs[j] = models.SubTaskTemplate{Name: s.Name}
		}
		out[i] = models.TaskTemplate{Name: t.Name, SubTasks: subs}
	}
	return out
}

// ProjectUpdateRequest changes local project fields. Remote fields are
// owned by the sync engine.
type ProjectUpdateRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=255"`
	SalesforceNumber *string `json:"salesforceNumber" validate:"omitempty,max=64"`
	BoardID          *string `json:"boardId" validate:"omitempty,max=255"`
	Description      *string `json:"description" validate:"omitempty,max=10000"`
	Status           *string `json:"status" validate:"omitempty,oneof=active on_hold completed"`
}

func (req ProjectUpdateRequest) toPatch() store.ProjectPatch {
	return store.ProjectPatch{
		Name:             req.Name,
		SalesforceNumber: req.SalesforceNumber,
		BoardID:          req.BoardID,
		Description:      req.Description,
		Status:           req.Status,
	}
}

// AddModuleRequest adds a template or custom module to a project.
type AddModuleRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TaskUpdateRequest changes a task.
type TaskUpdateRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=255"`
	Status      *models.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	Description *string            `json:"description" validate:"omitempty,max=10000"`
}

func (req TaskUpdateRequest) toPatch() store.TaskPatch {
	return store.TaskPatch{Name: req.Name, Status: req.Status, Description: req.Description}
}

// SubTaskRequest creates a sub-task.
type SubTaskRequest struct {
	Name   string            `json:"name" validate:"required,max=255"`
	Status models.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
}

// SubTaskUpdateRequest changes a sub-task.
type SubTaskUpdateRequest struct {
	Name   *string            `json:"name" validate:"omitempty,min=1,max=255"`
	Status *models.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
}

func (req SubTaskUpdateRequest) toPatch() store.SubTaskPatch {
	return store.SubTaskPatch{Name: req.Name, Status: req.Status}
}
