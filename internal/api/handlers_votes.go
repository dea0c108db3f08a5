// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/colloquy/internal/models"
	"github.com/tomtom215/colloquy/internal/vote"
)

// VoteResponse is the data payload of vote endpoints. NetVoteCount is
// the item's committed derived count; VoterDirection is the caller's
// standing direction after the operation ("none" after a retraction).
type VoteResponse struct {
	NetVoteCount   int    `json:"netVoteCount"`
	VoterDirection string `json:"voterDirection"`
	Transition     string `json:"transition"`
}

// CastVote handles POST /api/v1/{questions|answers|comments}/{id}/vote.
func (h *Handler) CastVote(itemType models.ItemType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		p, ok := h.principal(rw, r)
		if !ok {
			return
		}

		var req CastVoteRequest
		if !decodeAndValidate(rw, r, &req) {
			return
		}

		itemID := chi.URLParam(r, "id")
		result, err := h.ledger.Cast(r.Context(), p.ID, itemType, itemID, models.Direction(req.Direction))
		if err != nil {
			writeVoteError(rw, err)
			return
		}

		rw.Success(voteResponse(result))
	}
}

// RetractVote handles DELETE /api/v1/{questions|answers|comments}/{id}/vote.
// Retracting when no vote stands is an idempotent no-op.
func (h *Handler) RetractVote(itemType models.ItemType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		p, ok := h.principal(rw, r)
		if !ok {
			return
		}

		itemID := chi.URLParam(r, "id")
		result, err := h.ledger.Retract(r.Context(), p.ID, itemType, itemID)
		if err != nil {
			writeVoteError(rw, err)
			return
		}

		rw.Success(voteResponse(result))
	}
}

func voteResponse(result *vote.Result) VoteResponse {
	direction := string(result.Direction)
	if result.Direction == models.DirectionNone {
		direction = "none"
	}
	return VoteResponse{
		NetVoteCount:   result.NetCount,
		VoterDirection: direction,
		Transition:     result.Transition,
	}
}

// writeVoteError maps ledger errors to HTTP statuses. Threshold
// rejections carry the required and current scores so clients can
// render a meaningful message.
func writeVoteError(rw *ResponseWriter, err error) {
	var repErr *vote.InsufficientReputationError
	switch {
	case errors.Is(err, vote.ErrInvalidDirection):
		rw.BadRequest("Vote direction must be \"up\" or \"down\"")
	case errors.Is(err, vote.ErrSelfVote):
		rw.BadRequest("You cannot vote on your own content")
	case errors.As(err, &repErr):
		rw.ForbiddenWithDetails("Insufficient reputation for "+repErr.Action, map[string]int64{
			"required": repErr.Required,
			"current":  repErr.Current,
		})
	default:
		writeStoreError(rw, err)
	}
}
