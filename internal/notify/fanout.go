// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
	"github.com/tomtom215/colloquy/internal/realtime"
	"github.com/tomtom215/colloquy/internal/store"
)

// Store is the slice of the document store the fanout needs.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification, ttl time.Duration) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Pusher delivers realtime messages to live sessions. Satisfied by
// *realtime.Hub.
type Pusher interface {
	SendToUser(userID string, msg realtime.Message)
	IsOnline(userID string) bool
}

// Fanout turns committed domain events into persisted notifications
// and best-effort live pushes. It is the only writer of notification
// documents.
type Fanout struct {
	store   Store
	push    Pusher
	expiry  config.NotificationExpiry
	breaker *gobreaker.CircuitBreaker[any]
}

// NewFanout creates a Fanout. push may be nil, in which case
// notifications are persisted without live delivery.
func NewFanout(st Store, push Pusher, expiry config.NotificationExpiry) *Fanout {
	return &Fanout{
		store:   st,
		push:    push,
		expiry:  expiry,
		breaker: newPushBreaker(),
	}
}

// HandleVoteTransition notifies item authors of new upvotes.
// Downvotes, retractions, and comment votes stay silent.
func (f *Fanout) HandleVoteTransition(msg *message.Message) error {
	e, err := events.Unmarshal[events.VoteTransition](msg)
	if err != nil {
		return err
	}
	if e.NewDirection != models.DirectionUp {
		return nil
	}
	if e.ItemType == models.ItemComment {
		return nil
	}
	if e.AuthorID == "" {
		metrics.NotificationsSuppressed.WithLabelValues("invalid_recipient").Inc()
		return nil
	}

	n := &models.Notification{
		RecipientID: e.AuthorID,
		SenderID:    e.VoterID,
		Priority:    models.PriorityLow,
		Data: models.NotificationData{
			QuestionID:    e.QuestionID,
			VoteDirection: e.NewDirection,
		},
	}
	switch e.ItemType {
	case models.ItemQuestion:
		n.Type = models.NotifyQuestionVoted
		n.Title = "Your question was upvoted"
		n.Message = fmt.Sprintf("Your question now has %d votes", e.NetCount)
	case models.ItemAnswer:
		n.Type = models.NotifyAnswerVoted
		n.Title = "Your answer was upvoted"
		n.Message = fmt.Sprintf("Your answer now has %d votes", e.NetCount)
		n.Data.AnswerID = e.ItemID
	default:
		return nil
	}

	return f.create(msg.Context(), n)
}

// HandleAnswerAccepted notifies the answer's author that their answer
// was accepted. Self-accepts and cleared acceptances stay silent.
func (f *Fanout) HandleAnswerAccepted(msg *message.Message) error {
	e, err := events.Unmarshal[events.AnswerAccepted](msg)
	if err != nil {
		return err
	}
	if e.Cleared {
		return nil
	}
	if !e.NotifyAuthor {
		metrics.NotificationsSuppressed.WithLabelValues("self_action").Inc()
		return nil
	}
	if e.AnswerAuthorID == "" {
		metrics.NotificationsSuppressed.WithLabelValues("invalid_recipient").Inc()
		return nil
	}

	return f.create(msg.Context(), &models.Notification{
		RecipientID: e.AnswerAuthorID,
		SenderID:    e.AcceptedBy,
		Type:        models.NotifyAnswerAccepted,
		Title:       "Your answer was accepted",
		Message:     "The question author accepted your answer",
		Priority:    models.PriorityHigh,
		Data: models.NotificationData{
			QuestionID: e.QuestionID,
			AnswerID:   e.AnswerID,
		},
	})
}

// HandleAnswerPosted notifies the question author of a new answer and
// any users mentioned in the answer body.
func (f *Fanout) HandleAnswerPosted(msg *message.Message) error {
	e, err := events.Unmarshal[events.AnswerPosted](msg)
	if err != nil {
		return err
	}
	ctx := msg.Context()

	notified := map[string]bool{e.AuthorID: true}
	if e.QuestionAuthorID == e.AuthorID {
		metrics.NotificationsSuppressed.WithLabelValues("self_action").Inc()
	} else if e.QuestionAuthorID != "" {
		n := &models.Notification{
			RecipientID: e.QuestionAuthorID,
			SenderID:    e.AuthorID,
			Type:        models.NotifyAnswerPosted,
			Title:       "New answer on your question",
			Message:     snippet(e.Body),
			Priority:    models.PriorityMedium,
			Data: models.NotificationData{
				QuestionID: e.QuestionID,
				AnswerID:   e.AnswerID,
			},
		}
		if err := f.create(ctx, n); err != nil {
			return err
		}
		notified[e.QuestionAuthorID] = true
	}

	f.notifyMentions(ctx, e.Body, e.AuthorID, notified, models.NotificationData{
		QuestionID: e.QuestionID,
		AnswerID:   e.AnswerID,
	})
	return nil
}

// HandleCommentPosted notifies the parent item's author of a new
// comment and any users mentioned in the comment body.
func (f *Fanout) HandleCommentPosted(msg *message.Message) error {
	e, err := events.Unmarshal[events.CommentPosted](msg)
	if err != nil {
		return err
	}
	ctx := msg.Context()

	notified := map[string]bool{e.AuthorID: true}
	if e.ParentAuthorID == e.AuthorID {
		metrics.NotificationsSuppressed.WithLabelValues("self_action").Inc()
	} else if e.ParentAuthorID != "" {
		n := &models.Notification{
			RecipientID: e.ParentAuthorID,
			SenderID:    e.AuthorID,
			Type:        models.NotifyCommentPosted,
			Title:       "New comment on your post",
			Message:     snippet(e.Body),
			Priority:    models.PriorityLow,
			Data: models.NotificationData{
				QuestionID: e.QuestionID,
				AnswerID:   e.AnswerID,
				CommentID:  e.CommentID,
			},
		}
		if err := f.create(ctx, n); err != nil {
			return err
		}
		notified[e.ParentAuthorID] = true
	}

	f.notifyMentions(ctx, e.Body, e.AuthorID, notified, models.NotificationData{
		QuestionID: e.QuestionID,
		AnswerID:   e.AnswerID,
		CommentID:  e.CommentID,
	})
	return nil
}

// notifyMentions resolves @username references in a post body and
// notifies each mentioned user once. Unknown usernames and users
// already notified for this event are skipped. Mention delivery is
// best-effort; failures are logged, not retried, so redelivery cannot
// double-notify the primary recipient.
func (f *Fanout) notifyMentions(ctx context.Context, body, senderID string, notified map[string]bool, data models.NotificationData) {
	for _, username := range Mentions(body) {
		user, err := f.store.GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			logging.Warn().Err(err).Str("username", username).Msg("mention lookup failed")
			continue
		}
		if notified[user.ID] {
			continue
		}
		notified[user.ID] = true

		d := data
		d.MentionText = snippet(body)
		n := &models.Notification{
			RecipientID: user.ID,
			SenderID:    senderID,
			Type:        models.NotifyUserMentioned,
			Title:       "You were mentioned",
			Message:     d.MentionText,
			Priority:    models.PriorityMedium,
			Data:        d,
		}
		if err := f.create(ctx, n); err != nil {
			logging.Warn().Err(err).Str("recipient_id", user.ID).Msg("mention notification failed")
		}
	}
}

// create persists a notification and attempts live delivery.
func (f *Fanout) create(ctx context.Context, n *models.Notification) error {
	if n.RecipientID == "" {
		metrics.NotificationsSuppressed.WithLabelValues("invalid_recipient").Inc()
		return nil
	}

	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()

	ttl := f.ttlFor(n.Priority)
	if ttl > 0 {
		expires := n.CreatedAt.Add(ttl)
		n.ExpiresAt = &expires
	}

	if err := f.store.CreateNotification(ctx, n, ttl); err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}
	metrics.RecordNotification(string(n.Type), string(n.Priority))

	f.pushLive(ctx, n)
	return nil
}

// pushLive delivers a persisted notification to the recipient's open
// sessions through the circuit breaker. Push failures never surface to
// the event handler; the store is already consistent.
func (f *Fanout) pushLive(ctx context.Context, n *models.Notification) {
	if f.push == nil {
		return
	}
	if !f.push.IsOnline(n.RecipientID) {
		metrics.NotificationsPushSkipped.WithLabelValues("offline").Inc()
		return
	}

	_, err := f.breaker.Execute(func() (any, error) {
		count, err := f.store.UnreadCount(ctx, n.RecipientID)
		if err != nil {
			return nil, err
		}
		f.push.SendToUser(n.RecipientID, realtime.Message{
			Type: realtime.EventNewNotification,
			Data: n.Push(),
		})
		f.push.SendToUser(n.RecipientID, realtime.Message{
			Type: realtime.EventUnreadCount,
			Data: realtime.UnreadCountPayload{Count: count},
		})
		return nil, nil
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.NotificationsPushed.Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.NotificationsPushSkipped.WithLabelValues("breaker_open").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.NotificationsPushSkipped.WithLabelValues("error").Inc()
		logging.Warn().
			Err(err).
			Str("recipient_id", n.RecipientID).
			Msg("live notification push failed")
	}
}

func (f *Fanout) ttlFor(p models.Priority) time.Duration {
	switch p {
	case models.PriorityLow:
		return f.expiry.Low
	case models.PriorityMedium:
		return f.expiry.Medium
	case models.PriorityHigh:
		return f.expiry.High
	default:
		// Urgent notifications never expire.
		return 0
	}
}
