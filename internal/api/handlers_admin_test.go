// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/tomtom215/colloquy/internal/models"
)

func TestAnnounce_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alice", models.RoleUser, 0)
	adminToken := env.seedUser(t, "admin", "root", models.RoleAdmin, 0)
	userToken := env.token(t, "user-1", "alice", models.RoleUser)

	body := AnnouncementRequest{
		RecipientID: "user-1",
		Title:       "Scheduled maintenance",
		Message:     "The forum will be read-only on Sunday.",
	}

	rec := env.do(t, http.MethodPost, "/api/v1/admin/announcements", userToken, body)
	wantStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/announcements", adminToken, body)
	wantStatus(t, rec, http.StatusNoContent)

	items, err := env.store.ListNotifications(context.Background(), "user-1", 10, 0, false)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d notifications, want 1", len(items))
	}
	if items[0].Type != models.NotifyAdminMessage || items[0].SenderID != "admin" {
		t.Fatalf("unexpected notification: %+v", items[0])
	}
}

func TestAnnounce_UnknownRecipient404(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedUser(t, "admin", "root", models.RoleAdmin, 0)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/announcements", adminToken, AnnouncementRequest{
		RecipientID: "ghost",
		Title:       "Hello",
		Message:     "Anyone there?",
	})
	wantStatus(t, rec, http.StatusNotFound)
}
