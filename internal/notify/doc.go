// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package notify fans committed domain events out into notifications.
//
// The Fanout subscribes to vote, acceptance, answer, and comment
// events and is the only writer of notification documents. Admin
// messages, ban notices, and content flag notices bypass the bus and
// are created synchronously from the API handlers. Each
// notification is persisted first with a priority-derived TTL, then
// delivered to the recipient's live sessions through a circuit
// breaker. Live delivery is strictly best-effort: a failed or rejected
// push never fails the event handler, because the store already holds
// the notification and unread counts reconcile on the next page load.
//
// Self-actions never notify: voting cannot target your own posts,
// accepting your own answer is flagged by the acceptance event, and
// answering or commenting on your own thread is suppressed here.
// @username mentions in post bodies notify each resolved user once per
// event, after the primary recipient.
package notify
