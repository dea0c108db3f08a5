// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package models

import "time"

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotifyAnswerPosted   NotificationType = "answer_posted"
	NotifyAnswerAccepted NotificationType = "answer_accepted"
	NotifyQuestionVoted  NotificationType = "question_voted"
	NotifyAnswerVoted    NotificationType = "answer_voted"
	NotifyCommentPosted  NotificationType = "comment_posted"
	NotifyUserMentioned  NotificationType = "user_mentioned"
	NotifyAdminMessage   NotificationType = "admin_message"
	NotifyUserBanned     NotificationType = "user_banned"
	NotifyContentFlagged NotificationType = "content_flagged"
)

// Valid reports whether t is a member of the closed enumeration.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyAnswerPosted, NotifyAnswerAccepted, NotifyQuestionVoted,
		NotifyAnswerVoted, NotifyCommentPosted, NotifyUserMentioned,
		NotifyAdminMessage, NotifyUserBanned, NotifyContentFlagged:
		return true
	}
	return false
}

// Priority orders notifications and determines default retention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// NotificationData carries the payload references for a notification.
type NotificationData struct {
	QuestionID    string    `json:"question_id,omitempty"`
	AnswerID      string    `json:"answer_id,omitempty"`
	CommentID     string    `json:"comment_id,omitempty"`
	VoteDirection Direction `json:"vote_direction,omitempty"`
	MentionText   string    `json:"mention_text,omitempty"`
	AdminMessage  string    `json:"admin_message,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// Notification is a persisted message to one recipient. It is created
// by the fanout, its read flag is mutated by the recipient only, and
// it is removed by explicit deletion or store-level expiry.
type Notification struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipient_id"`

	// SenderID is empty for system notifications.
	SenderID string `json:"sender_id,omitempty"`

	Type     NotificationType `json:"type"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Data     NotificationData `json:"data"`
	Priority Priority         `json:"priority"`

	IsRead bool       `json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MarkRead sets the read flag. Idempotent.
func (n *Notification) MarkRead(at time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &at
}

// NotificationPush is the compact shape pushed to live sessions as a
// new-notification event. The full document is fetched on demand.
type NotificationPush struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      NotificationData `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
}

// Push returns the compact realtime representation.
func (n *Notification) Push() NotificationPush {
	return NotificationPush{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
