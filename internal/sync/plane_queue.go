// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/planemanager/internal/metrics"
)

// Job states.
const (
	jobQueued int32 = iota
	jobRunning
	jobSkipped
)

type queueJob struct {
	ctx   context.Context
	run   func()
	state atomic.Int32
	err   error
	done  chan struct{}
}

// requestQueue serializes every Plane request through one worker. After a
// request completes the worker waits for delay before starting the next,
// whatever the number of callers.
type requestQueue struct {
	delay time.Duration

	mu     sync.Mutex
	jobs   []*queueJob
	closed bool
	wake   chan struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newRequestQueue(delay time.Duration) *requestQueue {
	q := &requestQueue{
		delay:  delay,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Do runs fn on the queue worker and waits for it. When ctx ends before fn
// starts, fn is skipped and ctx.Err() is returned. Once started, fn runs to
// completion and Do waits for it.
func (q *requestQueue) Do(ctx context.Context, fn func()) error {
	job := &queueJob{ctx: ctx, run: fn, done: make(chan struct{})}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.jobs = append(q.jobs, job)
	depth := len(q.jobs)
	q.mu.Unlock()

	metrics.SetPlaneQueueDepth(depth)
	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-job.done:
		return job.err
	case <-ctx.Done():
		if job.state.CompareAndSwap(jobQueued, jobSkipped) {
			return ctx.Err()
		}
		<-job.done
		return job.err
	}
}

// Len returns the number of queued jobs, including skipped ones not yet
// dequeued.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops the worker. Jobs still queued fail with ErrQueueClosed; a job
// already running finishes first.
func (q *requestQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	pending := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	close(q.stopCh)
	q.wg.Wait()

	for _, job := range pending {
		if job.state.CompareAndSwap(jobQueued, jobSkipped) {
			job.err = ErrQueueClosed
			close(job.done)
		}
	}
	metrics.SetPlaneQueueDepth(0)
}

func (q *requestQueue) worker() {
	defer q.wg.Done()

	for {
		job, ok := q.next()
		if !ok {
			return
		}
		if !job.state.CompareAndSwap(jobQueued, jobRunning) {
			continue
		}

		job.run()
		close(job.done)

		if q.delay <= 0 {
			continue
		}
		timer := time.NewTimer(q.delay)
		select {
		case <-q.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// next blocks until a job is available or the queue is stopped.
func (q *requestQueue) next() (*queueJob, bool) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs[0] = nil
			q.jobs = q.jobs[1:]
			depth := len(q.jobs)
			q.mu.Unlock()
			metrics.SetPlaneQueueDepth(depth)
			return job, true
		}
		q.mu.Unlock()

		select {
		case <-q.stopCh:
			return nil, false
		case <-q.wake:
		}
	}
}
