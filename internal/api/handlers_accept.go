// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/colloquy/internal/accept"
)

// AcceptanceResponse is the data payload of acceptance endpoints.
type AcceptanceResponse struct {
	AcceptedAnswerID string `json:"acceptedAnswerId,omitempty"`
	PreviousAnswerID string `json:"previousAnswerId,omitempty"`
	Changed          bool   `json:"changed"`
}

// AcceptAnswer handles POST /api/v1/questions/{id}/accept. Accepting
// an already-accepted answer is an idempotent no-op; accepting a
// different answer moves the mark atomically.
func (h *Handler) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req AcceptAnswerRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	questionID := chi.URLParam(r, "id")
	result, err := h.coordinator.Accept(r.Context(), questionID, req.AnswerID, p.ID, p.Role)
	if err != nil {
		writeAcceptError(rw, err)
		return
	}

	rw.Success(acceptanceResponse(result))
}

// UnacceptAnswer handles DELETE /api/v1/questions/{id}/accept.
func (h *Handler) UnacceptAnswer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	questionID := chi.URLParam(r, "id")
	result, err := h.coordinator.Unaccept(r.Context(), questionID, p.ID, p.Role)
	if err != nil {
		writeAcceptError(rw, err)
		return
	}

	rw.Success(acceptanceResponse(result))
}

func acceptanceResponse(result *accept.Result) AcceptanceResponse {
	return AcceptanceResponse{
		AcceptedAnswerID: result.AcceptedAnswerID,
		PreviousAnswerID: result.PreviousAnswerID,
		Changed:          result.Changed,
	}
}

func writeAcceptError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, accept.ErrNotAuthorized):
		rw.Forbidden("Only the question author may change the accepted answer")
	case errors.Is(err, accept.ErrAnswerMismatch):
		rw.BadRequest("Answer does not belong to this question")
	default:
		writeStoreError(rw, err)
	}
}
