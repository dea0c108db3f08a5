// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/models"
)

// AskQuestion handles POST /api/v1/questions.
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req AskQuestionRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	now := time.Now().UTC()
	q := &models.Question{
		ID:           uuid.New().String(),
		AuthorID:     p.ID,
		Title:        req.Title,
		Body:         req.Body,
		Tags:         req.Tags,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := h.store.CreateQuestion(r.Context(), q); err != nil {
		writeStoreError(rw, err)
		return
	}

	rw.Created(q)
}

// PostAnswer handles POST /api/v1/questions/{id}/answers. The answer
// create atomically bumps the question's answer count; the posted
// event drives notification fan-out (asker plus @mentions).
func (h *Handler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req PostAnswerRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	questionID := chi.URLParam(r, "id")
	q, err := h.store.GetQuestion(r.Context(), questionID)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	a := &models.Answer{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		AuthorID:   p.ID,
		Body:       req.Body,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.store.CreateAnswer(r.Context(), a); err != nil {
		writeStoreError(rw, err)
		return
	}

	h.publish(r.Context(), events.TopicAnswerPosted, &events.AnswerPosted{
		EventID:          events.NewEventID(),
		QuestionID:       questionID,
		AnswerID:         a.ID,
		AuthorID:         p.ID,
		QuestionAuthorID: q.AuthorID,
		AnswerCount:      q.AnswerCount + 1,
		Body:             a.Body,
		OccurredAt:       a.CreatedAt,
	})

	rw.Created(a)
}

// PostComment handles POST /api/v1/comments. Commenting requires the
// configured minimum reputation. The parent author receives the
// comment notification; @mentions in the body are resolved in fan-out.
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.principal(rw, r)
	if !ok {
		return
	}

	var req PostCommentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	user, err := h.store.GetUser(r.Context(), p.ID)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	if required := h.policy.ReputationThresholds.Comment; user.DisplayReputation() < required {
		rw.ForbiddenWithDetails("Insufficient reputation to comment", map[string]int64{
			"required": required,
			"current":  user.DisplayReputation(),
		})
		return
	}

	parentAuthorID, ok := h.resolveCommentParent(rw, r, &req)
	if !ok {
		return
	}

	c := &models.Comment{
		ID:              uuid.New().String(),
		QuestionID:      req.QuestionID,
		AnswerID:        req.AnswerID,
		ParentCommentID: req.ParentCommentID,
		AuthorID:        p.ID,
		Body:            req.Body,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.store.CreateComment(r.Context(), c); err != nil {
		writeStoreError(rw, err)
		return
	}

	h.publish(r.Context(), events.TopicCommentPosted, &events.CommentPosted{
		EventID:        events.NewEventID(),
		CommentID:      c.ID,
		QuestionID:     c.QuestionID,
		AnswerID:       c.AnswerID,
		AuthorID:       p.ID,
		ParentAuthorID: parentAuthorID,
		Body:           c.Body,
		OccurredAt:     c.CreatedAt,
	})

	rw.Created(c)
}

// resolveCommentParent verifies the comment's parent chain and returns
// the author to notify: the parent comment's author when threading,
// the answer's author when commenting on an answer, the asker
// otherwise. A false return means the error is already written.
func (h *Handler) resolveCommentParent(rw *ResponseWriter, r *http.Request, req *PostCommentRequest) (string, bool) {
	ctx := r.Context()

	if req.ParentCommentID != "" {
		parent, err := h.store.GetComment(ctx, req.ParentCommentID)
		if err != nil {
			writeStoreError(rw, err)
			return "", false
		}
		if parent.QuestionID != req.QuestionID {
			rw.BadRequest("Parent comment does not belong to this question")
			return "", false
		}
		return parent.AuthorID, true
	}

	if req.AnswerID != "" {
		answer, err := h.store.GetAnswer(ctx, req.AnswerID)
		if err != nil {
			writeStoreError(rw, err)
			return "", false
		}
		if answer.QuestionID != req.QuestionID {
			rw.BadRequest("Answer does not belong to this question")
			return "", false
		}
		return answer.AuthorID, true
	}

	q, err := h.store.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		writeStoreError(rw, err)
		return "", false
	}
	return q.AuthorID, true
}

// publish emits a domain event. The write already committed, so a
// publish failure is logged and swallowed rather than failing the
// request; downstream consumers converge on the next event.
func (h *Handler) publish(ctx context.Context, topic string, event interface{ Validate() error }) {
	if h.bus == nil {
		return
	}
	var eventID string
	switch e := event.(type) {
	case *events.AnswerPosted:
		eventID = e.EventID
	case *events.CommentPosted:
		eventID = e.EventID
	default:
		eventID = events.NewEventID()
	}
	if err := h.bus.Publish(ctx, topic, eventID, event); err != nil {
		logging.Err(err).
			Str("topic", topic).
			Str("event_id", eventID).
			Msg("Failed to publish domain event")
	}
}
