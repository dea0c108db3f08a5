// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/colloquy/internal/models"
)

// Topics for domain events. One topic per event type keeps handlers
// simple and lets NATS subject filtering work without wildcard decoding.
const (
	TopicVoteTransition = "forum.vote.transition"
	TopicAnswerAccepted = "forum.answer.accepted"
	TopicAnswerPosted   = "forum.answer.posted"
	TopicCommentPosted  = "forum.comment.posted"
)

// NewEventID returns a unique event identifier. Event IDs double as
// idempotence keys for reputation application.
func NewEventID() string {
	return uuid.New().String()
}

// VoteTransition records one committed vote state change on an item.
// OldDirection/NewDirection describe the transition: none->up is a new
// vote, up->down a flip, down->none a retraction. NetCount is the item's
// derived net vote count after the transition.
type VoteTransition struct {
	EventID    string          `json:"event_id"`
	ItemID     string          `json:"item_id"`
	ItemType   models.ItemType `json:"item_type"`
	QuestionID string          `json:"question_id"`

	AuthorID string `json:"author_id"`
	VoterID  string `json:"voter_id"`

	OldDirection models.Direction `json:"old_direction"`
	NewDirection models.Direction `json:"new_direction"`
	NetCount     int              `json:"net_count"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields before publication.
func (e *VoteTransition) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("vote transition: missing event_id")
	}
	if e.ItemID == "" || !e.ItemType.Valid() {
		return fmt.Errorf("vote transition: invalid item %q/%q", e.ItemID, e.ItemType)
	}
	if e.VoterID == "" {
		return fmt.Errorf("vote transition: missing voter_id")
	}
	if e.OldDirection == e.NewDirection {
		return fmt.Errorf("vote transition: no-op transition %q->%q", e.OldDirection, e.NewDirection)
	}
	return nil
}

// AnswerAccepted records an acceptance state change on a question.
// Cleared is true when the operation removed acceptance without choosing
// a new answer. PreviousAnswerID names the answer that lost acceptance,
// if any. NotifyAuthor is false when the asker accepted their own answer.
type AnswerAccepted struct {
	EventID    string `json:"event_id"`
	QuestionID string `json:"question_id"`

	AnswerID         string `json:"answer_id,omitempty"`
	PreviousAnswerID string `json:"previous_answer_id,omitempty"`
	Cleared          bool   `json:"cleared,omitempty"`

	AnswerAuthorID string `json:"answer_author_id,omitempty"`
	AcceptedBy     string `json:"accepted_by"`
	NotifyAuthor   bool   `json:"notify_author"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields before publication.
func (e *AnswerAccepted) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("answer accepted: missing event_id")
	}
	if e.QuestionID == "" {
		return fmt.Errorf("answer accepted: missing question_id")
	}
	if !e.Cleared && e.AnswerID == "" {
		return fmt.Errorf("answer accepted: missing answer_id")
	}
	if e.AcceptedBy == "" {
		return fmt.Errorf("answer accepted: missing accepted_by")
	}
	return nil
}

// AnswerPosted records a new answer on a question.
type AnswerPosted struct {
	EventID    string `json:"event_id"`
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`

	AuthorID         string `json:"author_id"`
	QuestionAuthorID string `json:"question_author_id"`
	AnswerCount      int    `json:"answer_count"`

	// Body is carried for mention extraction in the fan-out handler.
	Body string `json:"body,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields before publication.
func (e *AnswerPosted) Validate() error {
	if e.EventID == "" || e.QuestionID == "" || e.AnswerID == "" || e.AuthorID == "" {
		return fmt.Errorf("answer posted: missing required field")
	}
	return nil
}

// CommentPosted records a new comment on a question or answer.
type CommentPosted struct {
	EventID    string `json:"event_id"`
	CommentID  string `json:"comment_id"`
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id,omitempty"`

	AuthorID       string `json:"author_id"`
	ParentAuthorID string `json:"parent_author_id"`

	Body string `json:"body,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks required fields before publication.
func (e *CommentPosted) Validate() error {
	if e.EventID == "" || e.CommentID == "" || e.QuestionID == "" || e.AuthorID == "" {
		return fmt.Errorf("comment posted: missing required field")
	}
	return nil
}
