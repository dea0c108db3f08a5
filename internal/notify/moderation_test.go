// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package notify

import (
	"context"
	"testing"

	"github.com/tomtom215/colloquy/internal/models"
)

func TestFlag_NotifiesAuthorAnonymously(t *testing.T) {
	st := &fakeStore{}
	push := newFakePusher("author-1")
	f := NewFanout(st, push, testExpiry())

	data := models.NotificationData{QuestionID: "q-1", AnswerID: "a-1"}
	err := f.Flag(context.Background(), "author-1", "spam link", data)
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}

	all := st.all()
	if len(all) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(all))
	}
	n := all[0]
	if n.Type != models.NotifyContentFlagged {
		t.Fatalf("unexpected type %q", n.Type)
	}
	if n.SenderID != "" {
		t.Fatalf("flagger must stay anonymous, got sender %q", n.SenderID)
	}
	if n.Priority != models.PriorityHigh {
		t.Fatalf("unexpected priority %q", n.Priority)
	}
	if n.Data.Reason != "spam link" || n.Data.AnswerID != "a-1" {
		t.Fatalf("payload not carried through: %+v", n.Data)
	}
}

func TestFlag_MissingAuthorRejected(t *testing.T) {
	st := &fakeStore{}
	f := NewFanout(st, nil, testExpiry())

	if err := f.Flag(context.Background(), "", "r", models.NotificationData{}); err == nil {
		t.Fatal("expected error for missing author")
	}
	if len(st.all()) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestBan_UrgentAndNeverExpires(t *testing.T) {
	st := &fakeStore{}
	push := newFakePusher("user-1")
	f := NewFanout(st, push, testExpiry())

	err := f.Ban(context.Background(), "user-1", "admin-1", "repeated abuse")
	if err != nil {
		t.Fatalf("Ban: %v", err)
	}

	all := st.all()
	if len(all) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(all))
	}
	n := all[0]
	if n.Type != models.NotifyUserBanned {
		t.Fatalf("unexpected type %q", n.Type)
	}
	if n.SenderID != "admin-1" {
		t.Fatalf("unexpected sender %q", n.SenderID)
	}
	if n.Priority != models.PriorityUrgent {
		t.Fatalf("unexpected priority %q", n.Priority)
	}
	if n.ExpiresAt != nil {
		t.Fatal("ban notices must not expire")
	}
	if n.Data.Reason != "repeated abuse" {
		t.Fatalf("reason not carried through: %+v", n.Data)
	}
}

func TestBan_MissingRecipientRejected(t *testing.T) {
	st := &fakeStore{}
	f := NewFanout(st, nil, testExpiry())

	if err := f.Ban(context.Background(), "", "admin-1", "r"); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}
