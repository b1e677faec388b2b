// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
)

// Topics.
const (
	TopicStoreChanges  = "store.changes"
	TopicNotifications = "sync.notifications"
)

// MetadataCorrelationID is the metadata key holding the correlation ID of
// the context an event was published from.
const MetadataCorrelationID = "correlation_id"

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Config configures the bus.
type Config struct {
	// OutputBuffer is the buffer of each subscriber's channel.
	OutputBuffer int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{OutputBuffer: 256}
}

// Bus is an in-process publish/subscribe bus for JSON events.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. Watermill logs go through the application logger.
func NewBus(cfg Config) *Bus {
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = DefaultConfig().OutputBuffer
	}
	logger := watermill.NewSlogLogger(logging.NewSlogLogger().With("component", "event-bus"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.OutputBuffer}, logger),
		logger: logger,
	}
}

// Publish encodes v as JSON and publishes it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, v interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// Subscribe returns the messages published on topic from now on. The
// channel is closed when ctx ends or the bus is closed. Every message must
// be acked before the next one is delivered.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close closes the bus and all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// messageContext returns a context carrying the correlation ID of msg.
func messageContext(ctx context.Context, msg *message.Message) context.Context {
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		return logging.ContextWithCorrelationID(ctx, id)
	}
	return logging.ContextWithNewCorrelationID(ctx)
}
