// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
plane_client.go - Core Plane.so API Client

This file provides the PlaneClient struct and its construction. The client
talks to the Plane REST API under {url}/api/v1/workspaces/{slug} with a
static X-API-Key header.

Client Features:
  - Single global FIFO request queue with a fixed pause after each request
  - HTTP 429 retry with exponential backoff plus random jitter
  - Optional circuit breaker around single request attempts
  - Typed errors (*APIError, *ConfigError)

Resilience Mechanisms:
  - Pacing: one request at a time, RequestDelay (200ms) after each one
  - Rate Limiting: 429 retried MaxRetries (3) times, waiting
    RetryBaseDelay * 2^attempt + jitter(<= RetryMaxJitter)
  - Circuit Breaker: 5xx answers and transport failures count as failures

Related Files:
  - plane_queue.go: the request queue
  - plane_request.go: request execution and retry
  - plane_projects.go, plane_modules.go, plane_issues.go, plane_labels.go:
    one method per remote resource
  - plane_identifier.go: project identifier derivation
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/models/plane"
)

// PlaneClientInterface is the subset of the Plane API used by the engine
// and the background jobs. Tests substitute a fake.
type PlaneClientInterface interface {
	ListProjects(ctx context.Context) ([]plane.Project, error)
	GetProject(ctx context.Context, projectID string) (*plane.Project, error)
	CreateProject(ctx context.Context, req plane.CreateProjectRequest) (*plane.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	CreateModule(ctx context.Context, projectID string, req plane.CreateModuleRequest) (*plane.Module, error)
	DeleteModule(ctx context.Context, projectID, moduleID string) error

	CreateIssueInModule(ctx context.Context, projectID, moduleID string, req plane.CreateIssueRequest) (*plane.Issue, error)
	CreateSubIssue(ctx context.Context, projectID, moduleID, parentID string, req plane.CreateIssueRequest) (*SubIssueResult, error)
	ListIssues(ctx context.Context, projectID string) ([]plane.Issue, error)

	CreateLabel(ctx context.Context, projectID string, req plane.CreateLabelRequest) (*plane.Label, error)
	ListLabels(ctx context.Context, projectID string) ([]plane.Label, error)

	UniqueIdentifier(ctx context.Context, name, salesforceNumber string) (string, error)
}

// RetryPolicy is the HTTP 429 backoff policy.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

// Backoff returns the wait before retry number attempt (0-based), given a
// jitter already drawn from [0, MaxJitter].
func (p RetryPolicy) Backoff(attempt int, jitter time.Duration) time.Duration {
	return p.BaseDelay*time.Duration(1<<attempt) + jitter
}

// PlaneClient is the Plane REST API client.
type PlaneClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	queue      *requestQueue
	retry      RetryPolicy
	breaker    *gobreaker.CircuitBreaker[*planeResponse]

	// Injectable for tests.
	jitter func(max time.Duration) time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// PlaneClientOption customizes a PlaneClient.
type PlaneClientOption func(*PlaneClient)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) PlaneClientOption {
	return func(c *PlaneClient) { c.httpClient = hc }
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) PlaneClientOption {
	return func(c *PlaneClient) { c.sleep = sleep }
}

// WithJitter replaces the random jitter source.
func WithJitter(jitter func(max time.Duration) time.Duration) PlaneClientOption {
	return func(c *PlaneClient) { c.jitter = jitter }
}

// WithClock replaces the clock used for identifier suffixes.
func WithClock(now func() time.Time) PlaneClientOption {
	return func(c *PlaneClient) { c.now = now }
}

// WithBreakerSettings enables the circuit breaker with custom settings.
func WithBreakerSettings(s BreakerSettings) PlaneClientOption {
	return func(c *PlaneClient) { c.breaker = newPlaneBreaker(s) }
}

// NewPlaneClient validates cfg and starts the request queue. It returns a
// *ConfigError when the URL, API key or workspace slug is missing.
func NewPlaneClient(cfg *config.PlaneConfig, opts ...PlaneClientOption) (*PlaneClient, error) {
	switch {
	case strings.TrimSpace(cfg.URL) == "":
		return nil, &ConfigError{Field: "PLANE_API_URL"}
	case strings.TrimSpace(cfg.APIKey) == "":
		return nil, &ConfigError{Field: "PLANE_API_KEY"}
	case strings.TrimSpace(cfg.WorkspaceSlug) == "":
		return nil, &ConfigError{Field: "PLANE_WORKSPACE_SLUG"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &PlaneClient{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/api/v1/workspaces/" + strings.Trim(cfg.WorkspaceSlug, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retry: RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxJitter:  cfg.RetryMaxJitter,
		},
		jitter: randomJitter,
		sleep:  sleepContext,
		now:    time.Now,
	}
	if cfg.CircuitBreaker {
		c.breaker = newPlaneBreaker(DefaultBreakerSettings())
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = newRequestQueue(cfg.RequestDelay)
	return c, nil
}

// Close stops the request queue. Queued requests fail with ErrQueueClosed.
func (c *PlaneClient) Close() {
	c.queue.Close()
}

// QueueDepth returns the number of requests waiting for the queue.
func (c *PlaneClient) QueueDepth() int {
	return c.queue.Len()
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max + 1) //nolint:gosec // jitter, not security sensitive
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
