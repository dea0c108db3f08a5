// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package api exposes the forum engine over HTTP.
//
// Every response uses the APIResponse envelope. Handlers stay thin:
// they decode and validate the request, resolve the acting principal,
// call the owning domain package, and map its errors to HTTP status
// codes. Room broadcasts happen through the event relay, never in
// handlers, so the REST and realtime surfaces cannot disagree about
// what committed.
//
// Routing uses chi with middleware from the chi ecosystem: go-chi/cors
// for CORS, go-chi/httprate for rate limits (per-IP on reads, per-user
// on writes). Identity verification and role checks run as route group
// middleware from the identity and authz packages.
package api
