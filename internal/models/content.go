// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package models

import "time"

// Question is a top-level post. Acceptance state lives on the question
// (AcceptedAnswerID) and is mirrored by IsAccepted on exactly one of
// its answers; both are mutated only by the acceptance coordinator.
type Question struct {
	ID       string   `json:"id"`
	AuthorID string   `json:"author_id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags,omitempty"`

	Votes []VoteRecord `json:"votes,omitempty"`

	AcceptedAnswerID string     `json:"accepted_answer_id,omitempty"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy       string     `json:"accepted_by,omitempty"`

	AnswerCount  int       `json:"answer_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// NetVotes returns the question's derived net vote count.
func (q *Question) NetVotes() int { return NetVotes(q.Votes) }

// Answer is a reply to a question.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	Body       string `json:"body"`

	Votes []VoteRecord `json:"votes,omitempty"`

	IsAccepted bool       `json:"is_accepted"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy string     `json:"accepted_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NetVotes returns the answer's derived net vote count.
func (a *Answer) NetVotes() int { return NetVotes(a.Votes) }

// Comment attaches to a question or an answer (exactly one of
// QuestionID/AnswerID is the direct parent; QuestionID is always set
// so comment events can be routed to the question's room).
type Comment struct {
	ID              string `json:"id"`
	QuestionID      string `json:"question_id"`
	AnswerID        string `json:"answer_id,omitempty"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
	AuthorID        string `json:"author_id"`
	Body            string `json:"body"`

	Votes []VoteRecord `json:"votes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NetVotes returns the comment's derived net vote count.
func (c *Comment) NetVotes() int { return NetVotes(c.Votes) }
