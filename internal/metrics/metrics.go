// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Plane Client Metrics
	PlaneRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plane_requests_total",
			Help: "Total number of Plane API requests by outcome",
		},
		[]string{"method", "resource", "status"},
	)

	PlaneRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plane_request_duration_seconds",
			Help:    "Duration of Plane API requests in seconds, queue wait excluded",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "resource"},
	)

	PlaneRateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plane_rate_limit_retries_total",
			Help: "Total number of requests retried after HTTP 429",
		},
	)

	PlaneQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plane_queue_depth",
			Help: "Number of Plane requests waiting in the FIFO queue",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Store and Persistence Metrics
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Total number of application state mutations",
		},
		[]string{"entity", "operation"},
	)

	PersistenceSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_saves_total",
			Help: "Total number of snapshot saves by result",
		},
		[]string{"result"},
	)

	PersistenceSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persistence_save_duration_seconds",
			Help:    "Duration of snapshot saves in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// Sync Engine Metrics
	SyncTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_transactions_total",
			Help: "Total number of optimistic sync transactions by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "synced", "rolled_back"
	)

	// Progress Sync Metrics
	ProgressSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progress_sync_duration_seconds",
			Help:    "Duration of full progress sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	ProgressSyncProjectsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_sync_projects_updated_total",
			Help: "Total number of projects whose progress changed",
		},
	)

	ProgressSyncErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_sync_errors_total",
			Help: "Total number of per-project progress sync failures",
		},
	)

	ProgressSyncSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_sync_skipped_total",
			Help: "Total number of progress sync calls dropped because a run was in progress",
		},
	)

	ProgressSyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "progress_sync_last_success_timestamp",
			Help: "Unix timestamp of the last completed progress sync run",
		},
	)

	// Project Refresh Metrics
	ProjectRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_refresh_total",
			Help: "Total number of remote project list refreshes by result",
		},
		[]string{"result"},
	)

	// Push Channel Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published on the internal bus",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPlaneRequest records one Plane API attempt. status is 0 when no
// response was received.
func RecordPlaneRequest(method, resource string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	PlaneRequestsTotal.WithLabelValues(method, resource, label).Inc()
	PlaneRequestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// RecordRateLimitRetry counts a retry scheduled after HTTP 429.
func RecordRateLimitRetry() {
	PlaneRateLimitRetries.Inc()
}

// SetPlaneQueueDepth publishes the number of queued Plane requests.
func SetPlaneQueueDepth(depth int) {
	PlaneQueueDepth.Set(float64(depth))
}

// RecordStoreMutation counts a store mutation.
func RecordStoreMutation(entity, operation string) {
	StoreMutations.WithLabelValues(entity, operation).Inc()
}

// RecordPersistenceSave records a snapshot save.
func RecordPersistenceSave(duration time.Duration, err error) {
	PersistenceSaveDuration.Observe(duration.Seconds())
	if err != nil {
		PersistenceSaves.WithLabelValues("error").Inc()
		return
	}
	PersistenceSaves.WithLabelValues("success").Inc()
}

// RecordTransaction records the final state of an optimistic transaction.
func RecordTransaction(operation, outcome string) {
	SyncTransactions.WithLabelValues(operation, outcome).Inc()
}

// RecordProgressSync records a full progress sync run.
func RecordProgressSync(duration time.Duration, updated, failed int) {
	ProgressSyncDuration.Observe(duration.Seconds())
	ProgressSyncProjectsUpdated.Add(float64(updated))
	ProgressSyncErrors.Add(float64(failed))
	ProgressSyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordProgressSyncSkipped counts a run dropped by the in-progress guard.
func RecordProgressSyncSkipped() {
	ProgressSyncSkipped.Inc()
}

// RecordProjectRefresh records a remote project list refresh.
func RecordProjectRefresh(err error) {
	if err != nil {
		ProjectRefreshTotal.WithLabelValues("error").Inc()
		return
	}
	ProjectRefreshTotal.WithLabelValues("success").Inc()
}

// RecordEventPublished counts an event published on topic.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}
