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

// Announce delivers an admin message to one recipient. Unlike the
// event handlers this is called synchronously from the API, so the
// persist error surfaces to the caller. Admin messages never expire.
func (f *Fanout) Announce(ctx context.Context, recipientID, senderID, title, message string) error {
	if recipientID == "" {
		return fmt.Errorf("announce: missing recipient")
	}

	return f.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotifyAdminMessage,
		Title:       title,
		Message:     message,
		Data:        models.NotificationData{AdminMessage: message},
		Priority:    models.PriorityUrgent,
	})
}
