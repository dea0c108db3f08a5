// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package accept coordinates answer acceptance.
//
// A question has at most one accepted answer. Acceptance spans three
// documents (the question, the newly accepted answer, the previously
// accepted answer), so operations on the same question serialize behind
// a striped lock, and writes go clear-old, set-new, then question: if
// the process dies mid-way, the question document stays authoritative
// and never points at an answer that doesn't know it is accepted while
// another still claims to be.
package accept

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
	"github.com/tomtom215/colloquy/internal/store"
)

var (
	// ErrNotAuthorized is returned when the actor is neither the
	// question's author nor an admin.
	ErrNotAuthorized = errors.New("accept: only the question author may accept an answer")

	// ErrAnswerMismatch is returned when the answer does not belong to
	// the question.
	ErrAnswerMismatch = errors.New("accept: answer does not belong to question")
)

const lockStripes = 64

// Result is the committed outcome of an acceptance operation.
type Result struct {
	// AcceptedAnswerID is the question's accepted answer after the
	// operation; empty after an unaccept.
	AcceptedAnswerID string

	// PreviousAnswerID is the answer that lost acceptance, if any.
	PreviousAnswerID string

	// Changed is false when the operation was an idempotent no-op.
	Changed bool
}

// Coordinator serializes acceptance operations per question.
type Coordinator struct {
	store *store.Store
	bus   *events.Bus
	locks [lockStripes]sync.Mutex
}

// NewCoordinator creates an acceptance coordinator.
func NewCoordinator(s *store.Store, bus *events.Bus) *Coordinator {
	return &Coordinator{store: s, bus: bus}
}

func (c *Coordinator) lock(questionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(questionID))
	return &c.locks[h.Sum32()%lockStripes]
}

// Accept marks an answer as the question's accepted answer, replacing
// any previous acceptance. Only the question's author or an admin may
// accept. Re-accepting the already accepted answer is a no-op and emits
// no event.
func (c *Coordinator) Accept(ctx context.Context, questionID, answerID, actorID, actorRole string) (*Result, error) {
	mu := c.lock(questionID)
	mu.Lock()
	defer mu.Unlock()

	q, err := c.store.GetQuestion(ctx, questionID)
	if err != nil {
		metrics.AcceptanceOperations.WithLabelValues("accept", "error").Inc()
		return nil, err
	}
	if err := authorize(q, actorID, actorRole); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("accept", "denied").Inc()
		return nil, err
	}

	answer, err := c.store.GetAnswer(ctx, answerID)
	if err != nil {
		metrics.AcceptanceOperations.WithLabelValues("accept", "error").Inc()
		return nil, err
	}
	if answer.QuestionID != questionID {
		metrics.AcceptanceOperations.WithLabelValues("accept", "denied").Inc()
		return nil, ErrAnswerMismatch
	}

	if q.AcceptedAnswerID == answerID {
		metrics.AcceptanceOperations.WithLabelValues("accept", "noop").Inc()
		return &Result{AcceptedAnswerID: answerID, Changed: false}, nil
	}

	now := time.Now().UTC()
	previous := q.AcceptedAnswerID

	// Write order: clear old, set new, then the question.
	if previous != "" {
		if err := c.clearAnswer(ctx, previous); err != nil {
			metrics.AcceptanceOperations.WithLabelValues("accept", "error").Inc()
			return nil, err
		}
	}

	if _, err := c.store.UpdateAnswer(ctx, answerID, func(a *models.Answer) error {
		a.IsAccepted = true
		a.AcceptedAt = &now
		a.AcceptedBy = actorID
		return nil
	}); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("accept", "error").Inc()
		return nil, err
	}

	if _, err := c.store.UpdateQuestion(ctx, questionID, func(q *models.Question) error {
		q.AcceptedAnswerID = answerID
		q.AcceptedAt = &now
		q.AcceptedBy = actorID
		q.LastActivity = now
		return nil
	}); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("accept", "error").Inc()
		return nil, err
	}

	metrics.AcceptanceOperations.WithLabelValues("accept", "applied").Inc()
	c.emit(ctx, &events.AnswerAccepted{
		EventID:          events.NewEventID(),
		QuestionID:       questionID,
		AnswerID:         answerID,
		PreviousAnswerID: previous,
		AnswerAuthorID:   answer.AuthorID,
		AcceptedBy:       actorID,
		NotifyAuthor:     answer.AuthorID != actorID,
		OccurredAt:       now,
	})

	return &Result{AcceptedAnswerID: answerID, PreviousAnswerID: previous, Changed: true}, nil
}

// Unaccept clears the question's accepted answer. Unaccepting a question
// with no accepted answer is a no-op and emits no event.
func (c *Coordinator) Unaccept(ctx context.Context, questionID, actorID, actorRole string) (*Result, error) {
	mu := c.lock(questionID)
	mu.Lock()
	defer mu.Unlock()

	q, err := c.store.GetQuestion(ctx, questionID)
	if err != nil {
		metrics.AcceptanceOperations.WithLabelValues("unaccept", "error").Inc()
		return nil, err
	}
	if err := authorize(q, actorID, actorRole); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("unaccept", "denied").Inc()
		return nil, err
	}

	if q.AcceptedAnswerID == "" {
		metrics.AcceptanceOperations.WithLabelValues("unaccept", "noop").Inc()
		return &Result{Changed: false}, nil
	}

	now := time.Now().UTC()
	previous := q.AcceptedAnswerID

	if err := c.clearAnswer(ctx, previous); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("unaccept", "error").Inc()
		return nil, err
	}

	if _, err := c.store.UpdateQuestion(ctx, questionID, func(q *models.Question) error {
		q.AcceptedAnswerID = ""
		q.AcceptedAt = nil
		q.AcceptedBy = ""
		q.LastActivity = now
		return nil
	}); err != nil {
		metrics.AcceptanceOperations.WithLabelValues("unaccept", "error").Inc()
		return nil, err
	}

	metrics.AcceptanceOperations.WithLabelValues("unaccept", "applied").Inc()
	c.emit(ctx, &events.AnswerAccepted{
		EventID:          events.NewEventID(),
		QuestionID:       questionID,
		PreviousAnswerID: previous,
		Cleared:          true,
		AcceptedBy:       actorID,
		OccurredAt:       now,
	})

	return &Result{PreviousAnswerID: previous, Changed: true}, nil
}

// clearAnswer removes acceptance state from an answer. A missing answer
// is tolerated: the question update that follows is the authoritative
// write.
func (c *Coordinator) clearAnswer(ctx context.Context, answerID string) error {
	_, err := c.store.UpdateAnswer(ctx, answerID, func(a *models.Answer) error {
		a.IsAccepted = false
		a.AcceptedAt = nil
		a.AcceptedBy = ""
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		logging.Warn().Str("answer_id", answerID).Msg("Previously accepted answer missing during clear")
		return nil
	}
	return err
}

func authorize(q *models.Question, actorID, actorRole string) error {
	if actorID == q.AuthorID || actorRole == models.RoleAdmin {
		return nil
	}
	return ErrNotAuthorized
}

// emit publishes the acceptance event. Acceptance is committed; publish
// failures are logged, not surfaced.
func (c *Coordinator) emit(ctx context.Context, e *events.AnswerAccepted) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(ctx, events.TopicAnswerAccepted, e.EventID, e); err != nil {
		logging.Err(err).
			Str("event_id", e.EventID).
			Str("question_id", e.QuestionID).
			Msg("Failed to publish acceptance event")
	}
}
