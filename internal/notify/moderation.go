// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package notify

import (
	"context"
	"fmt"

	"github.com/tomtom215/colloquy/internal/models"
)

// Flag tells a content author that one of their posts was flagged.
// The flagger stays anonymous, so SenderID is left empty. Like
// Announce this runs synchronously from the API and the persist
// error surfaces to the caller.
func (f *Fanout) Flag(ctx context.Context, authorID, reason string, data models.NotificationData) error {
	if authorID == "" {
		return fmt.Errorf("flag: missing author")
	}

	data.Reason = reason
	return f.create(ctx, &models.Notification{
		RecipientID: authorID,
		Type:        models.NotifyContentFlagged,
		Title:       "Your post was flagged",
		Message:     reason,
		Data:        data,
		Priority:    models.PriorityHigh,
	})
}

// Ban records a ban notice for the banned user. Ban notices never
// expire; the recipient sees it whenever they next sign in.
func (f *Fanout) Ban(ctx context.Context, recipientID, actorID, reason string) error {
	if recipientID == "" {
		return fmt.Errorf("ban: missing recipient")
	}

	return f.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    actorID,
		Type:        models.NotifyUserBanned,
		Title:       "Your account has been banned",
		Message:     reason,
		Data:        models.NotificationData{Reason: reason},
		Priority:    models.PriorityUrgent,
	})
}
