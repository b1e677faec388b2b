// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

// Module types.
const (
	ModuleTypeTemplate = "template"
	ModuleTypeCustom   = "custom"
)

// ErrDeletionInProgress is returned when a module is already being deleted.
var ErrDeletionInProgress = errors.New("deletion already in progress")

// teamLabels maps team ids to Plane label ids.
type teamLabels map[string]string

func (l teamLabels) forTeam(teamID string) []string {
	if id, ok := l[teamID]; ok && teamID != "" {
		return []string{id}
	}
	return nil
}

// moduleBlueprint is what a module is built from: the template of the same
// name when one exists, otherwise an empty custom module.
type moduleBlueprint struct {
	name   string
	kind   string
	teamID string
	tasks  []models.TaskTemplate
}

func (e *Engine) blueprint(moduleName string) moduleBlueprint {
	name := strings.TrimSpace(moduleName)
	tmpl, ok := e.store.TemplateByName(name)
	if !ok {
		return moduleBlueprint{name: name, kind: ModuleTypeCustom}
	}
	return moduleBlueprint{name: name, kind: ModuleTypeTemplate, teamID: tmpl.TeamID, tasks: tmpl.Tasks}
}

// localModule builds a module from bp with temporary ids only.
func (e *Engine) localModule(bp moduleBlueprint) models.Module {
	m := models.Module{
		ID:     e.tempID(),
		Name:   bp.name,
		Type:   bp.kind,
		TeamID: bp.teamID,
		Status: models.ModuleActive,
		Tasks:  make([]models.Task, 0, len(bp.tasks)),
	}
	for _, t := range bp.tasks {
		m.Tasks = append(m.Tasks, e.placeholderTask(t))
	}
	return m
}

func (e *Engine) placeholderTask(t models.TaskTemplate) models.Task {
	task := models.Task{
		ID:       e.tempID(),
		Name:     t.Name,
		Status:   models.TaskTodo,
		SubTasks: make([]models.SubTask, 0, len(t.SubTasks)),
	}
	for _, st := range t.SubTasks {
		task.SubTasks = append(task.SubTasks, e.placeholderSubTask(st))
	}
	return task
}

func (e *Engine) placeholderSubTask(st models.SubTaskTemplate) models.SubTask {
	return models.SubTask{ID: e.tempID(), Name: st.Name, Status: models.TaskTodo}
}

// createTeamLabels creates one label per team in a new Plane project.
// Failures are logged and skipped.
func (e *Engine) createTeamLabels(ctx context.Context, planeProjectID string) teamLabels {
	labels := teamLabels{}
	for _, team := range e.store.Teams() {
		label, err := e.client.CreateLabel(ctx, planeProjectID, plane.CreateLabelRequest{Name: team.Name, Color: team.Color})
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("plane_project_id", planeProjectID).
				Str("team", team.Name).
				Msg("Failed to create team label, continuing without it")
			continue
		}
		labels[team.ID] = label.ID
	}
	return labels
}

// existingTeamLabels matches the labels of a Plane project to teams by name.
func (e *Engine) existingTeamLabels(ctx context.Context, planeProjectID string) teamLabels {
	labels := teamLabels{}
	remote, err := e.client.ListLabels(ctx, planeProjectID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("plane_project_id", planeProjectID).
			Msg("Failed to list labels, issues will be created without team labels")
		return labels
	}
	byName := make(map[string]string, len(remote))
	for _, l := range remote {
		byName[strings.ToLower(strings.TrimSpace(l.Name))] = l.ID
	}
	for _, team := range e.store.Teams() {
		if id, ok := byName[strings.ToLower(strings.TrimSpace(team.Name))]; ok {
			labels[team.ID] = id
		}
	}
	return labels
}

// buildRemoteModule creates a module, its issues and their sub-issues in
// order. Only the module creation itself is fatal; a failed issue or
// sub-issue becomes a local placeholder.
func (e *Engine) buildRemoteModule(ctx context.Context, planeProjectID, identifier string, bp moduleBlueprint, labels teamLabels) (models.Module, error) {
	log := logging.Ctx(ctx)

	pm, err := e.client.CreateModule(ctx, planeProjectID, plane.CreateModuleRequest{Name: bp.name})
	if err != nil {
		return models.Module{}, fmt.Errorf("create module %q: %w", bp.name, err)
	}

	module := models.Module{
		ID:            pm.ID,
		Name:          bp.name,
		Type:          bp.kind,
		TeamID:        bp.teamID,
		PlaneModuleID: pm.ID,
		Status:        models.ModuleActive,
		Tasks:         make([]models.Task, 0, len(bp.tasks)),
	}
	labelIDs := labels.forTeam(bp.teamID)

	for _, tt := range bp.tasks {
		if err := ctx.Err(); err != nil {
			return models.Module{}, err
		}

		issue, err := e.client.CreateIssueInModule(ctx, planeProjectID, pm.ID, plane.CreateIssueRequest{Name: tt.Name, Labels: labelIDs})
		if err != nil {
			log.Warn().Err(err).Str("module", bp.name).Str("task", tt.Name).
				Msg("Failed to create issue, keeping a local placeholder")
			module.Tasks = append(module.Tasks, e.placeholderTask(tt))
			continue
		}

		task := models.Task{
			ID:           issue.ID,
			Name:         tt.Name,
			ItemID:       itemID(identifier, issue.SequenceID),
			PlaneIssueID: issue.ID,
			Status:       models.TaskTodo,
			SubTasks:     make([]models.SubTask, 0, len(tt.SubTasks)),
		}
		for _, st := range tt.SubTasks {
			res, err := e.client.CreateSubIssue(ctx, planeProjectID, pm.ID, issue.ID,
				plane.CreateIssueRequest{Name: st.Name, Labels: labelIDs})
			if err != nil {
				log.Warn().Err(err).Str("task", tt.Name).Str("sub_task", st.Name).
					Msg("Failed to create sub-issue, keeping a local placeholder")
				task.SubTasks = append(task.SubTasks, e.placeholderSubTask(st))
				continue
			}
			task.SubTasks = append(task.SubTasks, models.SubTask{
				ID:              res.Issue.ID,
				Name:            st.Name,
				PlaneSubIssueID: res.Issue.ID,
				Status:          models.TaskTodo,
			})
		}
		module.Tasks = append(module.Tasks, task)
	}
	return module, nil
}

// itemID formats the human-readable Plane issue key, e.g. "INFRA-12".
func itemID(identifier string, sequence int) string {
	if identifier == "" || sequence <= 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", strings.ToUpper(identifier), sequence)
}

// AddModuleToProject creates a module and its template tasks in Plane and
// appends it to the project in one update. A module name already used in
// the project, or being added by a concurrent call, is rejected with
// store.ErrModuleExists before any remote call. A failure after the module was created remotely is returned as is;
// the remote module is not removed.
func (e *Engine) AddModuleToProject(ctx context.Context, projectID, moduleName string) (models.Module, error) {
	name := strings.TrimSpace(moduleName)
	if name == "" {
		return models.Module{}, fmt.Errorf("module: %w", store.ErrNameRequired)
	}
	project, ok := e.store.ProjectByID(projectID)
	if !ok {
		return models.Module{}, fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
	}
	if project.ModuleByName(name) >= 0 {
		return models.Module{}, fmt.Errorf("%q in project %q: %w", name, project.Name, store.ErrModuleExists)
	}
	planeProjectID, err := remoteProjectID(project)
	if err != nil {
		return models.Module{}, err
	}
	if !e.reserveModuleName(projectID, name) {
		return models.Module{}, fmt.Errorf("%q in project %q: %w", name, project.Name, store.ErrModuleExists)
	}
	defer e.releaseModuleName(projectID, name)

	bp := e.blueprint(name)
	var module models.Module
	tx := &Transaction{
		Operation: "add_module",
		Remote: func(ctx context.Context) error {
			labels := e.existingTeamLabels(ctx, planeProjectID)
			built, err := e.buildRemoteModule(ctx, planeProjectID, project.Identifier, bp, labels)
			module = built
			return err
		},
		Commit: func() error {
			added, err := e.store.AddModule(projectID, module)
			module = added
			return err
		},
	}

	ctx = context.WithoutCancel(ctx)
	err = tx.Run(ctx)
	e.notifyResult(ctx, "add_module", projectID, fmt.Sprintf("Module %q added", name), err)
	if err != nil {
		return models.Module{}, err
	}
	return module, nil
}

// RemoveModuleFromProject removes a module locally, then in Plane. When the
// remote delete fails a placeholder with the module's id, name, team and
// status is put back at its position and the error is returned.
func (e *Engine) RemoveModuleFromProject(ctx context.Context, projectID, moduleID string) error {
	project, ok := e.store.ProjectByID(projectID)
	if !ok {
		return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
	}
	index := project.ModuleIndex(moduleID)
	if index < 0 {
		return fmt.Errorf("module %q: %w", moduleID, store.ErrNotFound)
	}
	if e.IsModuleDeleting(moduleID) {
		return fmt.Errorf("module %q: %w", moduleID, ErrDeletionInProgress)
	}
	module := project.Modules[index]

	tx := &Transaction{
		Operation: "remove_module",
		Apply: func() error {
			e.setModuleDeleting(moduleID, true)
			if _, err := e.store.RemoveModule(projectID, moduleID); err != nil {
				e.setModuleDeleting(moduleID, false)
				return err
			}
			return nil
		},
		Remote: func(ctx context.Context) error {
			planeProjectID, err := remoteProjectID(project)
			if err != nil || module.PlaneModuleID == "" || models.IsTempID(module.PlaneModuleID) {
				// Never reached Plane.
				return nil
			}
			err = e.client.DeleteModule(ctx, planeProjectID, module.PlaneModuleID)
			if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
				return nil
			}
			return err
		},
		Commit: func() error {
			e.setModuleDeleting(moduleID, false)
			return nil
		},
		Revert: func(error) {
			e.restoreModule(projectID, index, models.Module{
				ID:            module.ID,
				Name:          module.Name,
				Type:          module.Type,
				TeamID:        module.TeamID,
				PlaneModuleID: module.PlaneModuleID,
				Status:        module.Status,
			})
			e.setModuleDeleting(moduleID, false)
		},
	}

	ctx = context.WithoutCancel(ctx)
	err := tx.Run(ctx)
	e.notifyResult(ctx, "remove_module", projectID, fmt.Sprintf("Module %q removed", module.Name), err)
	return err
}

// restoreModule puts placeholder back at index, unless the project is gone
// or already has a module with that id.
func (e *Engine) restoreModule(projectID string, index int, placeholder models.Module) {
	_, err := e.store.UpdateProjectFunc(projectID, func(p *models.Project) error {
		if p.ModuleIndex(placeholder.ID) >= 0 {
			return nil
		}
		if index > len(p.Modules) {
			index = len(p.Modules)
		}
		placeholder.Tasks = []models.Task{}
		p.Modules = append(p.Modules[:index], append([]models.Module{placeholder}, p.Modules[index:]...)...)
		p.RecomputeProgress()
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Str("project_id", projectID).Str("module_id", placeholder.ID).
			Msg("Failed to restore module after failed deletion")
	}
}
