// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package services

import (
	"context"
	"fmt"
)

// StartStopJob is a background job with a Start/Stop lifecycle, such as
// the progress syncer and the project refresher.
type StartStopJob interface {
	Start(ctx context.Context) error
	Stop() error
}

// JobService adapts a StartStopJob to suture.Service: Start on Serve,
// Stop when the context ends. A failed Start is returned so that suture
// restarts the job with backoff.
type JobService struct {
	job  StartStopJob
	name string
}

// NewJobService creates the service. name identifies the job in
// supervisor logs.
func NewJobService(name string, job StartStopJob) *JobService {
	return &JobService{job: job, name: name}
}

// Serve implements suture.Service.
func (s *JobService) Serve(ctx context.Context) error {
	if err := s.job.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.job.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *JobService) String() string {
	return s.name
}
