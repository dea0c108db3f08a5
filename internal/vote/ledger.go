// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package vote implements the vote ledger: casting, flipping, and
// retracting votes on questions, answers, and comments.
//
// All rule checks (self-vote, duplicate direction) run inside the same
// store transaction that writes the vote, so a rejected vote has zero
// side effects and two racing votes from the same user cannot both land.
// Reputation thresholds are checked against the voter's stored account
// before the transaction, since the voter document is not part of the
// item's write set.
package vote

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
	"github.com/tomtom215/colloquy/internal/store"
)

// Transition labels for results and metrics.
const (
	TransitionNew     = "new"
	TransitionFlip    = "flip"
	TransitionRetract = "retract"
	TransitionNoop    = "noop"
)

// errNoop aborts the item update without a write when the vote is
// already in the requested state.
var errNoop = errors.New("vote: no-op")

// Result is the committed outcome of a vote operation.
type Result struct {
	// NetCount is the item's derived net vote count after the operation.
	NetCount int

	// Direction is the voter's standing direction after the operation
	// (DirectionNone after a retraction).
	Direction models.Direction

	// Transition describes what changed: new, flip, retract, or noop.
	Transition string
}

// Ledger applies vote operations against the store and emits a
// VoteTransition event for every committed change.
type Ledger struct {
	store      *store.Store
	bus        *events.Bus
	thresholds config.ReputationThresholds
}

// NewLedger creates a vote ledger.
func NewLedger(s *store.Store, bus *events.Bus, thresholds config.ReputationThresholds) *Ledger {
	return &Ledger{store: s, bus: bus, thresholds: thresholds}
}

// Cast applies a vote in the given direction. Casting the direction the
// voter already holds is a no-op; casting the opposite direction flips
// the vote in place. Threshold and self-vote rules apply before any
// write lands.
func (l *Ledger) Cast(ctx context.Context, voterID string, itemType models.ItemType, itemID string, dir models.Direction) (*Result, error) {
	if !dir.Valid() {
		metrics.RecordVoteRejection(string(itemType), "invalid")
		return nil, ErrInvalidDirection
	}

	if err := l.checkThreshold(ctx, voterID, itemType, dir); err != nil {
		return nil, err
	}

	return l.apply(ctx, voterID, itemType, itemID, dir)
}

// Retract removes the voter's standing vote. Retracting when no vote
// stands is a no-op, not an error.
func (l *Ledger) Retract(ctx context.Context, voterID string, itemType models.ItemType, itemID string) (*Result, error) {
	return l.apply(ctx, voterID, itemType, itemID, models.DirectionNone)
}

// checkThreshold verifies the voter's stored reputation against the
// threshold for the direction. Display reputation (floored at zero) is
// what thresholds compare against.
func (l *Ledger) checkThreshold(ctx context.Context, voterID string, itemType models.ItemType, dir models.Direction) error {
	voter, err := l.store.GetUser(ctx, voterID)
	if err != nil {
		return err
	}

	required := l.thresholds.Vote
	action := "voting"
	if dir == models.DirectionDown {
		required = l.thresholds.Downvote
		action = "downvoting"
	}

	if current := voter.DisplayReputation(); current < required {
		metrics.RecordVoteRejection(string(itemType), "reputation")
		return &InsufficientReputationError{Action: action, Required: required, Current: current}
	}
	return nil
}

// apply runs the transition inside the item's store transaction and
// emits the event on commit.
func (l *Ledger) apply(ctx context.Context, voterID string, itemType models.ItemType, itemID string, dir models.Direction) (*Result, error) {
	now := time.Now().UTC()

	var (
		authorID   string
		questionID string
		oldDir     models.Direction
		netCount   int
	)

	// mutate applies the transition to any item's vote ledger. It runs
	// inside the store transaction; returning an error discards every
	// write from this attempt.
	mutate := func(votes []models.VoteRecord, itemAuthorID, itemQuestionID string) ([]models.VoteRecord, error) {
		authorID = itemAuthorID
		questionID = itemQuestionID
		oldDir = models.VoteOf(votes, voterID)

		if dir != models.DirectionNone && voterID == itemAuthorID {
			return nil, ErrSelfVote
		}
		if oldDir == dir {
			netCount = models.NetVotes(votes)
			return nil, errNoop
		}

		updated := setVote(votes, voterID, dir, now)
		netCount = models.NetVotes(updated)
		return updated, nil
	}

	var err error
	switch itemType {
	case models.ItemQuestion:
		_, err = l.store.UpdateQuestion(ctx, itemID, func(q *models.Question) error {
			votes, merr := mutate(q.Votes, q.AuthorID, q.ID)
			if merr != nil {
				return merr
			}
			q.Votes = votes
			q.LastActivity = now
			return nil
		})
	case models.ItemAnswer:
		_, err = l.store.UpdateAnswer(ctx, itemID, func(a *models.Answer) error {
			votes, merr := mutate(a.Votes, a.AuthorID, a.QuestionID)
			if merr != nil {
				return merr
			}
			a.Votes = votes
			return nil
		})
	case models.ItemComment:
		_, err = l.store.UpdateComment(ctx, itemID, func(c *models.Comment) error {
			votes, merr := mutate(c.Votes, c.AuthorID, c.QuestionID)
			if merr != nil {
				return merr
			}
			c.Votes = votes
			return nil
		})
	default:
		metrics.RecordVoteRejection(string(itemType), "invalid")
		return nil, ErrInvalidDirection
	}

	switch {
	case errors.Is(err, errNoop):
		metrics.RecordVote(string(itemType), TransitionNoop)
		return &Result{NetCount: netCount, Direction: dir, Transition: TransitionNoop}, nil
	case errors.Is(err, ErrSelfVote):
		metrics.RecordVoteRejection(string(itemType), "self_vote")
		return nil, err
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordVoteRejection(string(itemType), "not_found")
		return nil, err
	case err != nil:
		return nil, err
	}

	transition := transitionLabel(oldDir, dir)
	metrics.RecordVote(string(itemType), transition)
	l.emit(ctx, &events.VoteTransition{
		EventID:      events.NewEventID(),
		ItemID:       itemID,
		ItemType:     itemType,
		QuestionID:   questionID,
		AuthorID:     authorID,
		VoterID:      voterID,
		OldDirection: oldDir,
		NewDirection: dir,
		NetCount:     netCount,
		OccurredAt:   now,
	})

	return &Result{NetCount: netCount, Direction: dir, Transition: transition}, nil
}

// emit publishes the transition. The vote is already committed, so a
// publish failure is logged and swallowed: the caller's vote stands.
func (l *Ledger) emit(ctx context.Context, e *events.VoteTransition) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(ctx, events.TopicVoteTransition, e.EventID, e); err != nil {
		logging.Err(err).
			Str("event_id", e.EventID).
			Str("item_id", e.ItemID).
			Msg("Failed to publish vote transition")
	}
}

func transitionLabel(oldDir, newDir models.Direction) string {
	switch {
	case newDir == models.DirectionNone:
		return TransitionRetract
	case oldDir == models.DirectionNone:
		return TransitionNew
	default:
		return TransitionFlip
	}
}

// setVote returns the ledger with the voter's record set to dir.
// DirectionNone removes the record entirely.
func setVote(votes []models.VoteRecord, voterID string, dir models.Direction, now time.Time) []models.VoteRecord {
	for i := range votes {
		if votes[i].VoterID != voterID {
			continue
		}
		if dir == models.DirectionNone {
			return append(votes[:i:i], votes[i+1:]...)
		}
		updated := make([]models.VoteRecord, len(votes))
		copy(updated, votes)
		updated[i].Direction = dir
		updated[i].UpdatedAt = now
		return updated
	}

	if dir == models.DirectionNone {
		return votes
	}
	return append(votes[:len(votes):len(votes)], models.VoteRecord{
		VoterID:   voterID,
		Direction: dir,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
