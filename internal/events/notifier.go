// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package events

import (
	"context"

	"github.com/tomtom215/planemanager/internal/logging"
	intsync "github.com/tomtom215/planemanager/internal/sync"
)

// Notifier publishes sync notifications on TopicNotifications.
type Notifier struct {
	bus *Bus
}

// NewNotifier creates a notifier publishing on bus.
func NewNotifier(bus *Bus) *Notifier {
	return &Notifier{bus: bus}
}

// Notify implements intsync.Notifier.
func (n *Notifier) Notify(ctx context.Context, note intsync.Notification) {
	if err := n.bus.Publish(ctx, TopicNotifications, note); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("operation", note.Operation).
			Msg("Failed to publish notification")
	}
}

var _ intsync.Notifier = (*Notifier)(nil)
