// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package events

import (
	"context"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/store"
)

// StoreSubscriber is the part of the store the bridge listens on.
type StoreSubscriber interface {
	Subscribe(fn func(store.Event)) (unsubscribe func())
}

// BridgeStore publishes every committed store mutation on
// TopicStoreChanges until the returned function is called.
func BridgeStore(ctx context.Context, st StoreSubscriber, bus *Bus) (stop func()) {
	return st.Subscribe(func(ev store.Event) {
		if err := bus.Publish(ctx, TopicStoreChanges, ev); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("event", string(ev.Type)).
				Str("entity", string(ev.Entity)).
				Msg("Failed to publish store change")
		}
	})
}
