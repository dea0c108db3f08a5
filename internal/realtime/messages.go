// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package realtime

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Event types for WebSocket communication. Inbound events are sent by
// browsers, outbound events are pushed by the hub.
const (
	// Inbound
	EventJoinQuestion  = "join-question"
	EventLeaveQuestion = "leave-question"
	EventJoinAnswer    = "join-answer"
	EventLeaveAnswer   = "leave-answer"
	EventTypingStart   = "typing-start"
	EventTypingStop    = "typing-stop"
	EventMarkRead      = "mark-notification-read"
	EventMarkAllRead   = "mark-all-notifications-read"
	EventPing          = "ping"

	// Outbound
	EventVoteUpdated     = "vote-updated"
	EventAnswerAccepted  = "answer-accepted"
	EventCommentAdded    = "comment-added"
	EventNewNotification = "new-notification"
	EventUnreadCount     = "unread-notifications-count"
	EventPong            = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Room name constructors. Every connected session is a member of its
// user room; question and answer rooms are joined on demand.
func UserRoom(userID string) string         { return "user:" + userID }
func QuestionRoom(questionID string) string { return "question:" + questionID }
func AnswerRoom(answerID string) string     { return "answer:" + answerID }

// JoinPayload carries the target of join/leave and typing events.
type JoinPayload struct {
	QuestionID string `json:"questionId"`
}

// AnswerJoinPayload carries the target of answer room join/leave.
type AnswerJoinPayload struct {
	AnswerID string `json:"answerId"`
}

// TypingPayload is relayed to question room members while a user is
// composing an answer or comment.
type TypingPayload struct {
	QuestionID string `json:"questionId"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
}

// MarkReadPayload identifies a single notification to mark read.
type MarkReadPayload struct {
	NotificationID string `json:"notificationId"`
}

// UnreadCountPayload carries the recipient's current unread total.
type UnreadCountPayload struct {
	Count int `json:"count"`
}

// VoteUpdatePayload is pushed to question rooms when a vote commits.
type VoteUpdatePayload struct {
	ItemID       string `json:"itemId"`
	ItemType     string `json:"itemType"`
	QuestionID   string `json:"questionId"`
	NetVoteCount int64  `json:"netVoteCount"`
	VotedBy      string `json:"votedBy"`
}

// AcceptancePayload is pushed to question rooms when the accepted
// answer changes. AnswerID is empty when acceptance was cleared.
type AcceptancePayload struct {
	QuestionID       string `json:"questionId"`
	AnswerID         string `json:"answerId"`
	PreviousAnswerID string `json:"previousAnswerId,omitempty"`
}

// CommentAddedPayload is pushed to question rooms when a comment is
// posted anywhere under the question.
type CommentAddedPayload struct {
	CommentID  string `json:"commentId"`
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId,omitempty"`
	AuthorID   string `json:"authorId"`
}

// decodeData converts the loosely typed Data field of an inbound
// message into a concrete payload struct.
func decodeData[T any](data interface{}) (T, error) {
	var out T
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("encoding event data: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding event data: %w", err)
	}
	return out, nil
}
