// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"net/http"

	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/realtime"
)

// WebSocket handles GET /api/v1/ws. The identity middleware has
// already verified the token (header or cookie, so browser WebSocket
// clients work without custom headers); the session joins the user's
// private room on registration.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(NewResponseWriter(w, r), r)
	if !ok {
		return
	}

	if h.hub == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeInternalError, "Realtime is not available")
		return
	}

	if err := realtime.ServeWS(h.hub, w, r, p.ID, p.Username); err != nil {
		// The upgrader already wrote the handshake failure response.
		logging.Err(err).
			Str("user_id", p.ID).
			Msg("WebSocket upgrade failed")
	}
}
