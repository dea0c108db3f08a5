// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package realtime implements the websocket session registry and room
// fan-out for live forum updates.
//
// Every connection is registered with the Hub and auto-joined to its
// user room ("user:<id>"), which makes per-user pushes reach all of a
// user's open tabs. Clients join and leave question rooms
// ("question:<id>") explicitly via socket events while viewing a
// question page.
//
// Delivery is best-effort: a room broadcast that finds a client's send
// buffer full disconnects that client rather than blocking the hub,
// and a full hub broadcast queue drops the message with a warning.
// Clients that miss a push recover state on the next page load; the
// document store remains the source of truth.
//
// Inbound events are throttled per connection with a token bucket and
// dispatched by type: room join/leave, typing relays, and notification
// read-marking. Malformed or unknown events are counted and dropped.
package realtime
