// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package events carries change and notification events from the store and
the sync engine to WebSocket clients.

Events travel over an in-process Watermill GoChannel pub/sub:

	store.Subscribe ──► BridgeStore ──► store.changes ──┐
	                                                    ├──► Forwarder ──► websocket.Hub
	sync engine ──► Notifier ──► sync.notifications ────┘

Payloads are JSON. The publishing request's correlation ID travels in the
message metadata so that forwarded broadcasts can be traced back to the
request that caused them.

Delivery is at most once: a message published while nobody subscribes is
dropped, and the hub drops messages for clients that cannot keep up.
Clients treat store_changed messages as a hint to refetch.
*/
package events
