// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	intsync "github.com/tomtom215/planemanager/internal/sync"
	"github.com/tomtom215/planemanager/internal/websocket"
)

// ErrSubscriptionClosed is returned by Serve when the bus closes a
// subscription while the forwarder is still running.
var ErrSubscriptionClosed = errors.New("event subscription closed")

// progressOperation is the notification operation of a progress sync run.
const progressOperation = "sync_progress"

// Broadcaster sends a JSON payload to every WebSocket client.
// Satisfied by *websocket.Hub.
type Broadcaster interface {
	BroadcastRaw(messageType string, payload []byte)
}

// Forwarder relays bus events to WebSocket clients. It is run as a
// supervised service.
type Forwarder struct {
	bus *Bus
	hub Broadcaster
}

// NewForwarder creates a forwarder from bus to hub.
func NewForwarder(bus *Bus, hub Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, hub: hub}
}

// Serve forwards events until ctx is cancelled.
func (f *Forwarder) Serve(ctx context.Context) error {
	changes, err := f.bus.Subscribe(ctx, TopicStoreChanges)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicStoreChanges, err)
	}
	notes, err := f.bus.Subscribe(ctx, TopicNotifications)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicNotifications, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-changes:
			if !ok {
				return f.closedErr(ctx)
			}
			f.hub.BroadcastRaw(websocket.MessageTypeStoreChanged, msg.Payload)
			msg.Ack()
		case msg, ok := <-notes:
			if !ok {
				return f.closedErr(ctx)
			}
			f.forwardNotification(ctx, msg)
			msg.Ack()
		}
	}
}

func (f *Forwarder) forwardNotification(ctx context.Context, msg *message.Message) {
	f.hub.BroadcastRaw(websocket.MessageTypeNotification, msg.Payload)

	var note intsync.Notification
	if err := json.Unmarshal(msg.Payload, &note); err != nil {
		logging.Ctx(messageContext(ctx, msg)).Warn().Err(err).
			Str("message_id", msg.UUID).
			Msg("Undecodable notification")
		return
	}
	if note.Operation == progressOperation {
		f.hub.BroadcastRaw(websocket.MessageTypeProgressUpdated, msg.Payload)
	}
	logging.Ctx(messageContext(ctx, msg)).Debug().
		Str("operation", note.Operation).
		Str("level", note.Level).
		Msg("Notification forwarded")
}

func (f *Forwarder) closedErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrSubscriptionClosed
}

// String implements fmt.Stringer for supervisor logs.
func (f *Forwarder) String() string {
	return "event-forwarder"
}
