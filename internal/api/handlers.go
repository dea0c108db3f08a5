// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/colloquy/internal/accept"
	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/identity"
	"github.com/tomtom215/colloquy/internal/notify"
	"github.com/tomtom215/colloquy/internal/realtime"
	"github.com/tomtom215/colloquy/internal/store"
	"github.com/tomtom215/colloquy/internal/vote"
)

// Version is reported by the health endpoint and the startup log.
const Version = "1.0.0"

// Handler carries the domain dependencies for all HTTP handlers.
type Handler struct {
	store       *store.Store
	ledger      *vote.Ledger
	coordinator *accept.Coordinator
	fanout      *notify.Fanout
	bus         *events.Bus

	// hub is nil when the realtime registry is disabled; REST behavior
	// is unchanged, only live pushes are skipped.
	hub *realtime.Hub

	policy    config.PolicyConfig
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(
	st *store.Store,
	ledger *vote.Ledger,
	coordinator *accept.Coordinator,
	fanout *notify.Fanout,
	bus *events.Bus,
	hub *realtime.Hub,
	policy config.PolicyConfig,
) *Handler {
	return &Handler{
		store:       st,
		ledger:      ledger,
		coordinator: coordinator,
		fanout:      fanout,
		bus:         bus,
		hub:         hub,
		policy:      policy,
		startTime:   time.Now(),
	}
}

// principal resolves the acting user. The identity middleware runs on
// every authenticated route, so a missing principal means the route was
// wired without it; respond 401 rather than panic.
func (h *Handler) principal(rw *ResponseWriter, r *http.Request) (*identity.Principal, bool) {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return nil, false
	}
	return p, true
}

// writeStoreError maps store errors that escaped domain-specific
// mapping: not-found to 404, conflict exhaustion to 409, the rest to
// 500.
func writeStoreError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		rw.NotFound("Resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		rw.Conflict("Resource already exists")
	case errors.Is(err, store.ErrConflict):
		rw.Conflict("Concurrent modification, retry the request")
	default:
		rw.StoreError(err)
	}
}
