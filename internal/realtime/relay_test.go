// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package realtime

import (
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/models"
)

func relayMessage(t *testing.T, event interface{ Validate() error }) *message.Message {
	t.Helper()
	msg, err := events.Marshal(events.NewEventID(), event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return msg
}

func TestRelay_VoteTransitionReachesQuestionRoom(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	member := newTestClient(hub, "user-1")
	register(t, hub, member)
	hub.Join(member, QuestionRoom("q-1"))

	outsider := newTestClient(hub, "user-2")
	register(t, hub, outsider)

	err := relay.HandleVoteTransition(relayMessage(t, &events.VoteTransition{
		EventID:      events.NewEventID(),
		ItemID:       "a-1",
		ItemType:     models.ItemAnswer,
		QuestionID:   "q-1",
		AuthorID:     "author",
		VoterID:      "voter",
		OldDirection: models.DirectionNone,
		NewDirection: models.DirectionUp,
		NetCount:     3,
		OccurredAt:   time.Now(),
	}))
	if err != nil {
		t.Fatalf("HandleVoteTransition: %v", err)
	}

	got := receive(t, member)
	if got.Type != EventVoteUpdated {
		t.Fatalf("expected %q, got %q", EventVoteUpdated, got.Type)
	}
	payload, ok := got.Data.(VoteUpdatePayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", got.Data)
	}
	if payload.NetVoteCount != 3 || payload.ItemID != "a-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.VotedBy != "voter" {
		t.Fatalf("expected voter identity in payload, got %q", payload.VotedBy)
	}
	assertNoMessage(t, outsider)
}

func TestRelay_AnswerAcceptedCarriesPreviousAnswer(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	member := newTestClient(hub, "user-1")
	register(t, hub, member)
	hub.Join(member, QuestionRoom("q-1"))

	err := relay.HandleAnswerAccepted(relayMessage(t, &events.AnswerAccepted{
		EventID:          events.NewEventID(),
		QuestionID:       "q-1",
		AnswerID:         "a-new",
		PreviousAnswerID: "a-old",
		AnswerAuthorID:   "author",
		AcceptedBy:       "asker",
		NotifyAuthor:     true,
		OccurredAt:       time.Now(),
	}))
	if err != nil {
		t.Fatalf("HandleAnswerAccepted: %v", err)
	}

	got := receive(t, member)
	if got.Type != EventAnswerAccepted {
		t.Fatalf("expected %q, got %q", EventAnswerAccepted, got.Type)
	}
	payload := got.Data.(AcceptancePayload)
	if payload.AnswerID != "a-new" || payload.PreviousAnswerID != "a-old" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRelay_CommentPostedAnnouncedToRoom(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	member := newTestClient(hub, "user-1")
	register(t, hub, member)
	hub.Join(member, QuestionRoom("q-1"))

	err := relay.HandleCommentPosted(relayMessage(t, &events.CommentPosted{
		EventID:    events.NewEventID(),
		CommentID:  "c-1",
		QuestionID: "q-1",
		AnswerID:   "a-1",
		AuthorID:   "commenter",
		OccurredAt: time.Now(),
	}))
	if err != nil {
		t.Fatalf("HandleCommentPosted: %v", err)
	}

	got := receive(t, member)
	if got.Type != EventCommentAdded {
		t.Fatalf("expected %q, got %q", EventCommentAdded, got.Type)
	}
	payload := got.Data.(CommentAddedPayload)
	if payload.CommentID != "c-1" || payload.AnswerID != "a-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRelay_AnswerCommentReachesAnswerRoom(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	// Watching the answer thread only, not the whole question.
	watcher := newTestClient(hub, "user-1")
	register(t, hub, watcher)
	hub.Join(watcher, AnswerRoom("a-1"))

	err := relay.HandleCommentPosted(relayMessage(t, &events.CommentPosted{
		EventID:    events.NewEventID(),
		CommentID:  "c-1",
		QuestionID: "q-1",
		AnswerID:   "a-1",
		AuthorID:   "commenter",
		OccurredAt: time.Now(),
	}))
	if err != nil {
		t.Fatalf("HandleCommentPosted: %v", err)
	}

	got := receive(t, watcher)
	if got.Type != EventCommentAdded {
		t.Fatalf("expected %q, got %q", EventCommentAdded, got.Type)
	}
	if got.Data.(CommentAddedPayload).CommentID != "c-1" {
		t.Fatalf("unexpected payload: %+v", got.Data)
	}
}

func TestRelay_QuestionCommentSkipsAnswerRooms(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	watcher := newTestClient(hub, "user-1")
	register(t, hub, watcher)
	hub.Join(watcher, AnswerRoom("a-1"))

	err := relay.HandleCommentPosted(relayMessage(t, &events.CommentPosted{
		EventID:    events.NewEventID(),
		CommentID:  "c-2",
		QuestionID: "q-1",
		AuthorID:   "commenter",
		OccurredAt: time.Now(),
	}))
	if err != nil {
		t.Fatalf("HandleCommentPosted: %v", err)
	}

	assertNoMessage(t, watcher)
}

func TestRelay_MalformedEventRejected(t *testing.T) {
	hub := setupHub(t, nil)
	relay := NewRelay(hub)

	msg := message.NewMessage("bad", []byte("{not json"))
	if err := relay.HandleVoteTransition(msg); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
