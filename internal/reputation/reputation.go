// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package reputation derives author reputation changes from vote
// transitions and applies them idempotently.
//
// The accumulator runs as an event handler behind the domain event
// router: vote commits never wait on reputation writes, and a reputation
// failure never rolls back a vote. Idempotence comes from the event ID,
// which is recorded in the user's reputation history before the score
// changes, so a redelivered event is a no-op.
package reputation

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
	"github.com/tomtom215/colloquy/internal/store"
)

// Reasons recorded in reputation history entries.
const (
	ReasonQuestionVote = "question_vote"
	ReasonAnswerVote   = "answer_vote"
	ReasonCommentVote  = "comment_vote"
)

// errAlreadyApplied aborts the user update without a write when the
// event ID is already in the history window.
var errAlreadyApplied = errors.New("reputation: event already applied")

// Accumulator applies vote-derived reputation deltas to user accounts.
type Accumulator struct {
	store  *store.Store
	deltas config.VoteDeltas
}

// NewAccumulator creates an accumulator using the configured vote deltas.
func NewAccumulator(s *store.Store, deltas config.VoteDeltas) *Accumulator {
	return &Accumulator{store: s, deltas: deltas}
}

// value returns the reputation contribution of one standing vote.
func (a *Accumulator) value(itemType models.ItemType, dir models.Direction) int64 {
	switch itemType {
	case models.ItemQuestion:
		switch dir {
		case models.DirectionUp:
			return a.deltas.QuestionUp
		case models.DirectionDown:
			return a.deltas.QuestionDown
		}
	case models.ItemAnswer:
		switch dir {
		case models.DirectionUp:
			return a.deltas.AnswerUp
		case models.DirectionDown:
			return a.deltas.AnswerDown
		}
	case models.ItemComment:
		switch dir {
		case models.DirectionUp:
			return a.deltas.CommentUp
		case models.DirectionDown:
			return a.deltas.CommentDown
		}
	}
	return 0
}

// DeltaFor returns the author's score change for one vote transition:
// the value of the new direction minus the value of the old. A flip
// therefore applies both halves in one delta (up->down on a question is
// -2 - 10 = -12), and a retraction exactly undoes the original vote.
func (a *Accumulator) DeltaFor(itemType models.ItemType, oldDir, newDir models.Direction) int64 {
	return a.value(itemType, newDir) - a.value(itemType, oldDir)
}

// reasonFor maps an item type to its history reason string.
func reasonFor(itemType models.ItemType) string {
	switch itemType {
	case models.ItemAnswer:
		return ReasonAnswerVote
	case models.ItemComment:
		return ReasonCommentVote
	default:
		return ReasonQuestionVote
	}
}

// Apply records a reputation delta against a user, keyed by event ID.
// Re-applying the same event ID is a no-op. A zero delta is skipped
// without touching the store.
func (a *Accumulator) Apply(ctx context.Context, userID string, entry models.ReputationEntry) error {
	if entry.Delta == 0 {
		return nil
	}

	_, err := a.store.UpdateUser(ctx, userID, func(u *models.User) error {
		if u.HasApplied(entry.EventID) {
			return errAlreadyApplied
		}
		u.ApplyDelta(entry)
		return nil
	})
	if errors.Is(err, errAlreadyApplied) {
		metrics.ReputationDeltaSkipped.Inc()
		return nil
	}
	if err != nil {
		metrics.ReputationDeltaFailed.Inc()
		return err
	}

	metrics.ReputationDeltaApplied.WithLabelValues(entry.Reason).Inc()
	return nil
}

// HandleVoteTransition is the event handler applying the author's
// reputation change for one committed vote transition. Errors are
// retried by the router; a vanished author (account deletion racing the
// event) is logged and dropped rather than poisoned.
func (a *Accumulator) HandleVoteTransition(msg *message.Message) error {
	e, err := events.Unmarshal[events.VoteTransition](msg)
	if err != nil {
		return err
	}

	delta := a.DeltaFor(e.ItemType, e.OldDirection, e.NewDirection)
	if delta == 0 {
		return nil
	}

	ctx := msg.Context()
	err = a.Apply(ctx, e.AuthorID, models.ReputationEntry{
		EventID:   e.EventID,
		Delta:     delta,
		Reason:    reasonFor(e.ItemType),
		ItemID:    e.ItemID,
		AppliedAt: time.Now().UTC(),
	})
	if errors.Is(err, store.ErrNotFound) {
		logging.Warn().
			Str("event_id", e.EventID).
			Str("author_id", e.AuthorID).
			Msg("Reputation delta dropped, author no longer exists")
		return nil
	}
	if err != nil {
		logging.Err(err).
			Str("event_id", e.EventID).
			Str("author_id", e.AuthorID).
			Int64("delta", delta).
			Msg("Failed to apply reputation delta")
		return err
	}

	logging.Debug().
		Str("event_id", e.EventID).
		Str("author_id", e.AuthorID).
		Int64("delta", delta).
		Msg("Reputation delta applied")
	return nil
}
