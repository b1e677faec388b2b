// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
)

// planeBreakerName labels the breaker in logs and metrics.
const planeBreakerName = "plane-api"

// BreakerSettings tunes the Plane circuit breaker.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings:
//   - 3 trial requests in half-open state
//   - 1 minute measurement window
//   - 1 minute open period before recovery is attempted
//   - opens at 60% failures with at least 10 requests
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// newPlaneBreaker builds the breaker guarding single request attempts.
// Only 5xx answers and transport failures count as failures.
func newPlaneBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[*planeResponse] {
	metrics.CircuitBreakerState.WithLabelValues(planeBreakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(planeBreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*planeResponse](gobreaker.Settings{
		Name:        planeBreakerName,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening Plane circuit")
				return true
			}
			return false
		},

		// Caller cancellations are not Plane failures.
		IsSuccessful: func(err error) bool {
			return err == nil || isContextError(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// executeWithBreaker runs fn through cb and records the outcome. A rejected
// call becomes an *APIError wrapping the gobreaker error.
func executeWithBreaker(cb *gobreaker.CircuitBreaker[*planeResponse], fn func() (*planeResponse, error)) (*planeResponse, error) {
	resp, err := cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(planeBreakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(planeBreakerName).Set(0)
		return resp, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(planeBreakerName, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Plane request rejected")
		return nil, &APIError{Message: "circuit breaker is open: " + err.Error(), Err: err}
	}

	metrics.CircuitBreakerRequests.WithLabelValues(planeBreakerName, "failure").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(planeBreakerName).
		Set(float64(cb.Counts().ConsecutiveFailures))
	return resp, err
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
