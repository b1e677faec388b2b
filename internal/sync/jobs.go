// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/planemanager/internal/logging"
)

// periodicJob runs a function immediately and then on every tick, until
// stopped or until the start context ends.
type periodicJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func (j *periodicJob) start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return fmt.Errorf("%s is already running", j.name)
	}
	if j.interval <= 0 {
		return fmt.Errorf("%s interval must be positive, got %v", j.name, j.interval)
	}
	j.running = true
	j.stopCh = make(chan struct{})

	// Add before starting so that stop never waits on a missing Add.
	j.wg.Add(1)
	go j.loop(ctx, j.stopCh)

	logging.Info().Str("job", j.name).Dur("interval", j.interval).Msg("Background job started")
	return nil
}

func (j *periodicJob) stop() error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return fmt.Errorf("%s is not running", j.name)
	}
	j.running = false
	close(j.stopCh)
	j.mu.Unlock()

	j.wg.Wait()
	logging.Info().Str("job", j.name).Msg("Background job stopped")
	return nil
}

func (j *periodicJob) loop(ctx context.Context, stop <-chan struct{}) {
	defer j.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	j.run(logging.ContextWithNewCorrelationID(ctx))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.run(logging.ContextWithNewCorrelationID(ctx))
		}
	}
}
