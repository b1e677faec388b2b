// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

// fakePlane is an in-memory PlaneClientInterface. The *Err fields make the
// corresponding call fail.
type fakePlane struct {
	mu sync.Mutex

	calls    []string
	nextID   int
	sequence map[string]int

	projects []plane.Project
	issues   map[string][]plane.Issue
	labels   map[string][]plane.Label

	createProjectErr error
	createModuleErr  error
	deleteModuleErr  error
	deleteProjectErr error
	listIssuesErr    map[string]error
	listProjectsErr  error
	issueErrFor      map[string]error // by issue name

	onListIssues   func(projectID string) // runs before ListIssues answers
	onCreateModule func(name string)      // runs before CreateModule answers
}

var _ PlaneClientInterface = (*fakePlane)(nil)

func newFakePlane() *fakePlane {
	return &fakePlane{
		sequence:      map[string]int{},
		issues:        map[string][]plane.Issue{},
		labels:        map[string][]plane.Label{},
		listIssuesErr: map[string]error{},
		issueErrFor:   map[string]error{},
	}
}

func (f *fakePlane) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakePlane) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakePlane) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePlane) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlane) ListProjects(context.Context) ([]plane.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListProjects")
	if f.listProjectsErr != nil {
		return nil, f.listProjectsErr
	}
	return append([]plane.Project(nil), f.projects...), nil
}

func (f *fakePlane) GetProject(_ context.Context, projectID string) (*plane.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProject %s", projectID)
	for i := range f.projects {
		if f.projects[i].ID == projectID {
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Message: "not found"}
}

func (f *fakePlane) CreateProject(_ context.Context, req plane.CreateProjectRequest) (*plane.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProject %s %s", req.Name, req.Identifier)
	if f.createProjectErr != nil {
		return nil, f.createProjectErr
	}
	p := plane.Project{ID: f.id("proj"), Name: req.Name, Identifier: req.Identifier, Description: req.Description}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakePlane) DeleteProject(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProject %s", projectID)
	return f.deleteProjectErr
}

func (f *fakePlane) CreateModule(_ context.Context, projectID string, req plane.CreateModuleRequest) (*plane.Module, error) {
	if f.onCreateModule != nil {
		f.onCreateModule(req.Name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateModule %s %s", projectID, req.Name)
	if f.createModuleErr != nil {
		return nil, f.createModuleErr
	}
	return &plane.Module{ID: f.id("mod"), Name: req.Name, Project: projectID}, nil
}

func (f *fakePlane) DeleteModule(_ context.Context, projectID, moduleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteModule %s %s", projectID, moduleID)
	return f.deleteModuleErr
}

func (f *fakePlane) newIssue(projectID string, req plane.CreateIssueRequest) (*plane.Issue, error) {
	if err := f.issueErrFor[req.Name]; err != nil {
		return nil, err
	}
	f.sequence[projectID]++
	issue := plane.Issue{
		ID:         f.id("issue"),
		Name:       req.Name,
		SequenceID: f.sequence[projectID],
		Labels:     req.Labels,
		Project:    projectID,
	}
	f.issues[projectID] = append(f.issues[projectID], issue)
	return &issue, nil
}

func (f *fakePlane) CreateIssueInModule(_ context.Context, projectID, moduleID string, req plane.CreateIssueRequest) (*plane.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateIssueInModule %s %s %s", projectID, moduleID, req.Name)
	return f.newIssue(projectID, req)
}

func (f *fakePlane) CreateSubIssue(_ context.Context, projectID, moduleID, parentID string, req plane.CreateIssueRequest) (*SubIssueResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSubIssue %s %s %s %s", projectID, moduleID, parentID, req.Name)
	issue, err := f.newIssue(projectID, req)
	if err != nil {
		return nil, err
	}
	issue.Parent = &parentID
	return &SubIssueResult{Issue: issue, Linked: true}, nil
}

func (f *fakePlane) ListIssues(_ context.Context, projectID string) ([]plane.Issue, error) {
	if f.onListIssues != nil {
		f.onListIssues(projectID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListIssues %s", projectID)
	if err := f.listIssuesErr[projectID]; err != nil {
		return nil, err
	}
	return append([]plane.Issue(nil), f.issues[projectID]...), nil
}

func (f *fakePlane) CreateLabel(_ context.Context, projectID string, req plane.CreateLabelRequest) (*plane.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateLabel %s %s", projectID, req.Name)
	l := plane.Label{ID: f.id("label"), Name: req.Name, Color: req.Color}
	f.labels[projectID] = append(f.labels[projectID], l)
	return &l, nil
}

func (f *fakePlane) ListLabels(_ context.Context, projectID string) ([]plane.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListLabels %s", projectID)
	return append([]plane.Label(nil), f.labels[projectID]...), nil
}

func (f *fakePlane) UniqueIdentifier(_ context.Context, name, salesforceNumber string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UniqueIdentifier %s", name)
	return DeriveIdentifier(name, salesforceNumber), nil
}

// setIssues replaces the issues of a Plane project.
func (f *fakePlane) setIssues(projectID string, issues ...plane.Issue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[projectID] = issues
}

var syncTestNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newSyncTestStore returns an in-memory store with sequential ids and no
// persistence.
func newSyncTestStore(t *testing.T) *store.Store {
	t.Helper()
	var n atomic.Int64
	return store.New(nil,
		store.WithAutoSave(false),
		store.WithClock(func() time.Time { return syncTestNow }),
		store.WithIDGenerator(func() string {
			return fmt.Sprintf("id-%d", n.Add(1))
		}),
	)
}

// seedInfrastructure adds the Infrastructure team and its template with
// three tasks, the second one with a sub-task.
func seedInfrastructure(t *testing.T, st *store.Store) models.Team {
	t.Helper()
	team, err := st.AddTeam(models.Team{Name: "Infrastructure", Color: "#336699"})
	checkNoError(t, "AddTeam", err)
	_, err = st.AddTemplate(models.ModuleTemplate{
		Name:   "Infrastructure",
		TeamID: team.ID,
		Tasks: []models.TaskTemplate{
			{Name: "Provision network"},
			{Name: "Install servers", SubTasks: []models.SubTaskTemplate{{Name: "Rack"}}},
			{Name: "Hand over"},
		},
	})
	checkNoError(t, "AddTemplate", err)
	return team
}
