// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/colloquy/internal/store"
)

// Announce handles POST /api/v1/admin/announcements. Admin-only via
// the authz route middleware; delivers an urgent admin message to one
// recipient, persisted first and pushed live when they are online.
func (h *Handler) Announce(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req AnnouncementRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	// Reject unknown recipients up front so admins see the typo rather
	// than a silently orphaned notification.
	if _, err := h.store.GetUser(r.Context(), req.RecipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("Recipient not found")
			return
		}
		writeStoreError(rw, err)
		return
	}

	if err := h.fanout.Announce(r.Context(), req.RecipientID, p.ID, req.Title, req.Message); err != nil {
		rw.StoreError(err)
		return
	}

	rw.NoContent()
}

// BanUser handles POST /api/v1/admin/bans. Admin-only; leaves an
// urgent, non-expiring ban notice for the recipient.
func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req BanRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	if _, err := h.store.GetUser(r.Context(), req.RecipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("Recipient not found")
			return
		}
		writeStoreError(rw, err)
		return
	}

	if err := h.fanout.Ban(r.Context(), req.RecipientID, p.ID, req.Reason); err != nil {
		rw.StoreError(err)
		return
	}

	rw.NoContent()
}
