// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package websocket pushes live updates to browser clients.

A Hub owns the set of connected clients and fans every broadcast out to
them. Each Client runs a read pump, which answers application pings, and a
write pump, which drains the client's send buffer and keeps the connection
alive with protocol pings. A client whose buffer is full is disconnected
rather than slowing the hub down.

Message types:

  - store_changed: a project, team, template or the whole data set changed
  - notification: the outcome of a background sync operation
  - progress_updated: a progress sync pass finished
  - ping / pong: application level keepalive

The hub is run as a supervised service:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(hub, upgrader, w, r)
	})
*/
package websocket
