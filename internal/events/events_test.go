// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/models"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
	os.Exit(m.Run())
}

func validTransition() *VoteTransition {
	return &VoteTransition{
		EventID:      NewEventID(),
		ItemID:       "q1",
		ItemType:     models.ItemQuestion,
		QuestionID:   "q1",
		AuthorID:     "user-a",
		VoterID:      "user-b",
		OldDirection: models.DirectionNone,
		NewDirection: models.DirectionUp,
		NetCount:     1,
		OccurredAt:   time.Now().UTC(),
	}
}

func TestVoteTransition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*VoteTransition)
		wantErr bool
	}{
		{"valid new vote", func(e *VoteTransition) {}, false},
		{"valid flip", func(e *VoteTransition) {
			e.OldDirection = models.DirectionUp
			e.NewDirection = models.DirectionDown
		}, false},
		{"valid retraction", func(e *VoteTransition) {
			e.OldDirection = models.DirectionDown
			e.NewDirection = models.DirectionNone
		}, false},
		{"missing event ID", func(e *VoteTransition) { e.EventID = "" }, true},
		{"missing item ID", func(e *VoteTransition) { e.ItemID = "" }, true},
		{"invalid item type", func(e *VoteTransition) { e.ItemType = "post" }, true},
		{"missing voter", func(e *VoteTransition) { e.VoterID = "" }, true},
		{"no-op transition", func(e *VoteTransition) {
			e.OldDirection = models.DirectionUp
			e.NewDirection = models.DirectionUp
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validTransition()
			tt.mutate(e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswerAccepted_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   AnswerAccepted
		wantErr bool
	}{
		{
			name: "valid acceptance",
			event: AnswerAccepted{
				EventID:        NewEventID(),
				QuestionID:     "q1",
				AnswerID:       "a1",
				AnswerAuthorID: "user-b",
				AcceptedBy:     "user-a",
				NotifyAuthor:   true,
			},
			wantErr: false,
		},
		{
			name: "valid clear without new answer",
			event: AnswerAccepted{
				EventID:          NewEventID(),
				QuestionID:       "q1",
				PreviousAnswerID: "a1",
				Cleared:          true,
				AcceptedBy:       "user-a",
			},
			wantErr: false,
		},
		{
			name:    "missing answer on non-clear",
			event:   AnswerAccepted{EventID: NewEventID(), QuestionID: "q1", AcceptedBy: "user-a"},
			wantErr: true,
		},
		{
			name:    "missing accepted_by",
			event:   AnswerAccepted{EventID: NewEventID(), QuestionID: "q1", AnswerID: "a1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	e := validTransition()

	msg, err := Marshal(e.EventID, e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if msg.UUID != e.EventID {
		t.Errorf("message UUID = %q, want event ID %q", msg.UUID, e.EventID)
	}

	got, err := Unmarshal[VoteTransition](msg)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.VoterID != e.VoterID || got.NewDirection != e.NewDirection || got.NetCount != e.NetCount {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestMarshal_RejectsInvalid(t *testing.T) {
	e := validTransition()
	e.VoterID = ""

	if _, err := Marshal(e.EventID, e); err == nil {
		t.Error("Marshal() accepted an invalid event")
	}
}
