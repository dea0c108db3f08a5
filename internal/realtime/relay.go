// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package realtime

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/colloquy/internal/events"
)

// Relay turns committed domain events into question room broadcasts.
// Every push is a state refresh carrying the committed values, so a
// redelivered event repaints the same state rather than double-applying
// anything.
type Relay struct {
	hub *Hub
}

// NewRelay creates a relay pushing through the given hub.
func NewRelay(hub *Hub) *Relay {
	return &Relay{hub: hub}
}

// HandleVoteTransition pushes the item's new net count to the
// question's room.
func (r *Relay) HandleVoteTransition(msg *message.Message) error {
	e, err := events.Unmarshal[events.VoteTransition](msg)
	if err != nil {
		return err
	}

	r.hub.BroadcastToRoom(QuestionRoom(e.QuestionID), Message{
		Type: EventVoteUpdated,
		Data: VoteUpdatePayload{
			ItemID:       e.ItemID,
			ItemType:     string(e.ItemType),
			QuestionID:   e.QuestionID,
			NetVoteCount: int64(e.NetCount),
			VotedBy:      e.VoterID,
		},
	}, 0)
	return nil
}

// HandleAnswerAccepted pushes the question's new acceptance state to
// its room. A cleared acceptance is pushed with an empty answer ID.
func (r *Relay) HandleAnswerAccepted(msg *message.Message) error {
	e, err := events.Unmarshal[events.AnswerAccepted](msg)
	if err != nil {
		return err
	}

	r.hub.BroadcastToRoom(QuestionRoom(e.QuestionID), Message{
		Type: EventAnswerAccepted,
		Data: AcceptancePayload{
			QuestionID:       e.QuestionID,
			AnswerID:         e.AnswerID,
			PreviousAnswerID: e.PreviousAnswerID,
		},
	}, 0)
	return nil
}

// HandleCommentPosted announces a new comment to the question's room,
// and to the answer's room when the comment sits under an answer.
func (r *Relay) HandleCommentPosted(msg *message.Message) error {
	e, err := events.Unmarshal[events.CommentPosted](msg)
	if err != nil {
		return err
	}

	out := Message{
		Type: EventCommentAdded,
		Data: CommentAddedPayload{
			CommentID:  e.CommentID,
			QuestionID: e.QuestionID,
			AnswerID:   e.AnswerID,
			AuthorID:   e.AuthorID,
		},
	}
	r.hub.BroadcastToRoom(QuestionRoom(e.QuestionID), out, 0)
	if e.AnswerID != "" {
		r.hub.BroadcastToRoom(AnswerRoom(e.AnswerID), out, 0)
	}
	return nil
}
