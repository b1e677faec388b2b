// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
engine.go - Remote Synchronization Engine

The engine keeps Plane eventually consistent with the local store. Every
user operation is an optimistic Transaction: the store changes first, the
Plane calls follow, then the change is committed or reverted.

Operations:
  - CreateProject: optimistic project with a temporary id, remote flow in
    the background, atomic replacement by the synced project
  - AddModuleToProject: remote module plus template tasks, one local append
  - RemoveModuleFromProject: optimistic removal, placeholder restored on
    failure
  - DeleteProject: isDeleting flag, removal on success, flag cleared on
    failure

Degraded continuation:
  - Label, issue and sub-issue failures inside a flow are logged and
    replaced by local placeholders with temporary ids
  - Only the failure of the flow's main remote call fails the operation

Background flows run on a context owned by the engine and cancelled by
Close, never on the caller's request context.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/store"
)

// ErrProjectNotSynced is returned for remote operations on a project that
// has no Plane project yet.
var ErrProjectNotSynced = errors.New("project is not synced with Plane")

// Notification levels.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Notification is a user-facing message about a finished operation.
type Notification struct {
	Level     string    `json:"level"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	ProjectID string    `json:"projectId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Time      time.Time `json:"time"`
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Engine runs the optimistic sync operations.
type Engine struct {
	store    *store.Store
	client   PlaneClientInterface
	notifier Notifier
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu              sync.Mutex
	deletingModules map[string]struct{}
	addingModules   map[string]struct{} // project id + folded module name
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithEngineClock replaces the engine clock.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine writing to st and calling Plane through client.
func NewEngine(st *store.Store, client PlaneClientInterface, opts ...EngineOption) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:           st,
		client:          client,
		now:             time.Now,
		ctx:             ctx,
		cancel:          cancel,
		deletingModules: make(map[string]struct{}),
		addingModules:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wait blocks until every background flow has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels background flows and waits for them.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// IsModuleDeleting reports whether a deletion of moduleID is in flight.
func (e *Engine) IsModuleDeleting(moduleID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.deletingModules[moduleID]
	return ok
}

func (e *Engine) setModuleDeleting(moduleID string, deleting bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if deleting {
		e.deletingModules[moduleID] = struct{}{}
	} else {
		delete(e.deletingModules, moduleID)
	}
}

func addingKey(projectID, name string) string {
	return projectID + "\x00" + strings.ToLower(strings.TrimSpace(name))
}

// reserveModuleName claims name in projectID for one add. It reports false
// when another add of the same name is already in flight.
func (e *Engine) reserveModuleName(projectID, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := addingKey(projectID, name)
	if _, busy := e.addingModules[key]; busy {
		return false
	}
	e.addingModules[key] = struct{}{}
	return true
}

func (e *Engine) releaseModuleName(projectID, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.addingModules, addingKey(projectID, name))
}

// background starts fn on the engine context, carrying the caller's
// correlation id so that the flow's log lines can be grouped.
func (e *Engine) background(caller context.Context, fn func(ctx context.Context)) {
	ctx := e.ctx
	if id := logging.CorrelationIDFromContext(caller); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	} else {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	if id := logging.RequestIDFromContext(caller); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(ctx)
	}()
}

func (e *Engine) notify(ctx context.Context, n Notification) {
	n.Time = e.now().UTC()
	if e.notifier != nil {
		e.notifier.Notify(ctx, n)
	}
}

func (e *Engine) notifyResult(ctx context.Context, op, projectID, success string, err error) {
	if err != nil {
		e.notify(ctx, Notification{
			Level:     NotifyError,
			Operation: op,
			ProjectID: projectID,
			Message:   fmt.Sprintf("%s failed", op),
			Error:     err.Error(),
		})
		return
	}
	e.notify(ctx, Notification{Level: NotifySuccess, Operation: op, ProjectID: projectID, Message: success})
}

// tempID returns a new temporary local id.
func (e *Engine) tempID() string {
	return models.TempIDPrefix + e.store.NewID()
}

// remoteProjectID returns the Plane id of a local project.
func remoteProjectID(p models.Project) (string, error) {
	if p.PlaneProjectID == "" || models.IsTempID(p.PlaneProjectID) {
		return "", fmt.Errorf("project %q: %w", p.ID, ErrProjectNotSynced)
	}
	return p.PlaneProjectID, nil
}
