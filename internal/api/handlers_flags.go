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
	"github.com/tomtom215/colloquy/internal/store"
)

// FlagContent handles POST /api/v1/{questions|answers|comments}/{id}/flag.
// The content author is notified with the stated reason; the flagger is
// never revealed to them. Flagging your own post is rejected.
func (h *Handler) FlagContent(itemType models.ItemType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		p, ok := h.principal(rw, r)
		if !ok {
			return
		}

		var req FlagContentRequest
		if !decodeAndValidate(rw, r, &req) {
			return
		}

		itemID := chi.URLParam(r, "id")
		authorID, data, err := h.flagTarget(r, itemType, itemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				rw.NotFound("Content not found")
				return
			}
			writeStoreError(rw, err)
			return
		}

		if authorID == p.ID {
			rw.BadRequest("You cannot flag your own content")
			return
		}

		if err := h.fanout.Flag(r.Context(), authorID, req.Reason, data); err != nil {
			rw.StoreError(err)
			return
		}

		rw.NoContent()
	}
}

// flagTarget resolves the flagged item's author and the IDs the
// notification payload should carry.
func (h *Handler) flagTarget(r *http.Request, itemType models.ItemType, itemID string) (string, models.NotificationData, error) {
	switch itemType {
	case models.ItemQuestion:
		q, err := h.store.GetQuestion(r.Context(), itemID)
		if err != nil {
			return "", models.NotificationData{}, err
		}
		return q.AuthorID, models.NotificationData{QuestionID: q.ID}, nil
	case models.ItemAnswer:
		a, err := h.store.GetAnswer(r.Context(), itemID)
		if err != nil {
			return "", models.NotificationData{}, err
		}
		return a.AuthorID, models.NotificationData{QuestionID: a.QuestionID, AnswerID: a.ID}, nil
	case models.ItemComment:
		c, err := h.store.GetComment(r.Context(), itemID)
		if err != nil {
			return "", models.NotificationData{}, err
		}
		return c.AuthorID, models.NotificationData{QuestionID: c.QuestionID, AnswerID: c.AnswerID, CommentID: c.ID}, nil
	}
	return "", models.NotificationData{}, store.ErrNotFound
}
