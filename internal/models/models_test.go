// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package models

import (
	"testing"
	"time"
)

func TestNetVotes(t *testing.T) {
	tests := []struct {
		name  string
		votes []VoteRecord
		want  int
	}{
		{"empty ledger", nil, 0},
		{"single up", []VoteRecord{{VoterID: "a", Direction: DirectionUp}}, 1},
		{"single down", []VoteRecord{{VoterID: "a", Direction: DirectionDown}}, -1},
		{
			"mixed",
			[]VoteRecord{
				{VoterID: "a", Direction: DirectionUp},
				{VoterID: "b", Direction: DirectionUp},
				{VoterID: "c", Direction: DirectionDown},
			},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NetVotes(tt.votes); got != tt.want {
				t.Errorf("NetVotes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVoteOf(t *testing.T) {
	votes := []VoteRecord{
		{VoterID: "a", Direction: DirectionUp},
		{VoterID: "b", Direction: DirectionDown},
	}

	if got := VoteOf(votes, "a"); got != DirectionUp {
		t.Errorf("VoteOf(a) = %q, want up", got)
	}
	if got := VoteOf(votes, "b"); got != DirectionDown {
		t.Errorf("VoteOf(b) = %q, want down", got)
	}
	if got := VoteOf(votes, "missing"); got != DirectionNone {
		t.Errorf("VoteOf(missing) = %q, want none", got)
	}
}

func TestDirectionValid(t *testing.T) {
	if !DirectionUp.Valid() || !DirectionDown.Valid() {
		t.Error("up/down should be valid")
	}
	if DirectionNone.Valid() {
		t.Error("none is not castable")
	}
	if Direction("sideways").Valid() {
		t.Error("unknown direction accepted")
	}
}

func TestDisplayReputationFloor(t *testing.T) {
	u := &User{Reputation: -7}
	if got := u.DisplayReputation(); got != 0 {
		t.Errorf("DisplayReputation = %d, want 0", got)
	}

	u.Reputation = 42
	if got := u.DisplayReputation(); got != 42 {
		t.Errorf("DisplayReputation = %d, want 42", got)
	}
}

func TestApplyDeltaAndIdempotenceCheck(t *testing.T) {
	u := &User{ID: "u1"}

	entry := ReputationEntry{EventID: "ev-1", Delta: 10, Reason: "answer_up", AppliedAt: time.Now()}
	if u.HasApplied("ev-1") {
		t.Fatal("HasApplied true before apply")
	}

	u.ApplyDelta(entry)
	if u.Reputation != 10 {
		t.Errorf("Reputation = %d, want 10", u.Reputation)
	}
	if !u.HasApplied("ev-1") {
		t.Error("HasApplied false after apply")
	}

	u.ApplyDelta(ReputationEntry{EventID: "ev-2", Delta: -12})
	if u.Reputation != -2 {
		t.Errorf("Reputation = %d, want -2", u.Reputation)
	}
	if u.DisplayReputation() != 0 {
		t.Errorf("DisplayReputation = %d, want 0", u.DisplayReputation())
	}
}

func TestReputationHistoryCap(t *testing.T) {
	u := &User{}
	for i := 0; i < reputationHistoryCap+50; i++ {
		u.ApplyDelta(ReputationEntry{EventID: "ev", Delta: 1})
	}
	if len(u.History) != reputationHistoryCap {
		t.Errorf("history length = %d, want cap %d", len(u.History), reputationHistoryCap)
	}
	if u.Reputation != int64(reputationHistoryCap+50) {
		t.Errorf("score must not be affected by history trimming: %d", u.Reputation)
	}
}

func TestNotificationMarkReadIdempotent(t *testing.T) {
	n := &Notification{ID: "n1"}

	first := time.Now()
	n.MarkRead(first)
	if !n.IsRead || n.ReadAt == nil || !n.ReadAt.Equal(first) {
		t.Fatalf("MarkRead did not set read state: %+v", n)
	}

	n.MarkRead(first.Add(time.Hour))
	if !n.ReadAt.Equal(first) {
		t.Error("second MarkRead overwrote ReadAt")
	}
}

func TestNotificationTypeEnum(t *testing.T) {
	valid := []NotificationType{
		NotifyAnswerPosted, NotifyAnswerAccepted, NotifyQuestionVoted,
		NotifyAnswerVoted, NotifyCommentPosted, NotifyUserMentioned,
		NotifyAdminMessage, NotifyUserBanned, NotifyContentFlagged,
	}
	for _, v := range valid {
		if !v.Valid() {
			t.Errorf("%q should be valid", v)
		}
	}
	if NotificationType("mystery").Valid() {
		t.Error("unknown type accepted")
	}
}
