// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/planemanager/internal/logging"
)

// Flusher writes pending state to durable storage. Satisfied by
// *store.Store.
type Flusher interface {
	Flush(ctx context.Context) error
}

// StoreFlushService idles until shutdown and then waits for pending store
// saves, so that no edit made before shutdown is lost.
type StoreFlushService struct {
	store   Flusher
	timeout time.Duration
}

// NewStoreFlushService creates the service. A non-positive timeout means
// 10 seconds.
func NewStoreFlushService(store Flusher, timeout time.Duration) *StoreFlushService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StoreFlushService{store: store, timeout: timeout}
}

// Serve implements suture.Service.
func (s *StoreFlushService) Serve(ctx context.Context) error {
	<-ctx.Done()

	flushCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.Flush(flushCtx); err != nil {
		return fmt.Errorf("final store flush failed: %w", err)
	}
	logging.Info().Msg("Store flushed")
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *StoreFlushService) String() string {
	return "store-flusher"
}
