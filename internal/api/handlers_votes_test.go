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

func TestCastVote_Question(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["netVoteCount"].(float64) != 1 {
		t.Fatalf("netVoteCount = %v, want 1", data["netVoteCount"])
	}
	if data["voterDirection"] != "up" {
		t.Fatalf("voterDirection = %v, want up", data["voterDirection"])
	}
	if data["transition"] != "new" {
		t.Fatalf("transition = %v, want new", data["transition"])
	}
}

func TestCastVote_FlipChangesNetByTwo(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 200)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "down"})
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["netVoteCount"].(float64) != -1 {
		t.Fatalf("netVoteCount = %v, want -1", data["netVoteCount"])
	}
	if data["transition"] != "flip" {
		t.Fatalf("transition = %v, want flip", data["transition"])
	}
}

func TestCastVote_RepeatIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")

	env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["netVoteCount"].(float64) != 1 {
		t.Fatalf("netVoteCount = %v, want 1", data["netVoteCount"])
	}
	if data["transition"] != "noop" {
		t.Fatalf("transition = %v, want noop", data["transition"])
	}
}

func TestCastVote_SelfVoteRejected(t *testing.T) {
	env := newTestEnv(t)
	authorToken := env.seedUser(t, "author", "alice", models.RoleUser, 500)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", authorToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, ErrCodeBadRequest)
}

func TestCastVote_InvalidDirectionRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, map[string]string{"direction": "sideways"})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, ErrCodeValidationFailed)
}

func TestCastVote_InsufficientReputation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 5)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusForbidden)

	resp := envelope(t, rec)
	details, ok := resp.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("expected threshold details, got %v", resp.Error.Details)
	}
	if details["required"].(float64) != 15 || details["current"].(float64) != 5 {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCastVote_DownvoteThresholdHigher(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	// Enough to upvote, not enough to downvote.
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 50)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "down"})
	wantStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)
}

func TestCastVote_UnknownItem404(t *testing.T) {
	env := newTestEnv(t)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)

	rec := env.do(t, http.MethodPost, "/api/v1/questions/missing/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, rec, ErrCodeNotFound)
}

func TestRetractVote_RemovesStandingVote(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")
	env.seedAnswer(t, "a1", "q1", "author")

	rec := env.do(t, http.MethodPost, "/api/v1/answers/a1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodDelete, "/api/v1/answers/a1/vote", voterToken, nil)
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["netVoteCount"].(float64) != 0 {
		t.Fatalf("netVoteCount = %v, want 0", data["netVoteCount"])
	}
	if data["voterDirection"] != "none" {
		t.Fatalf("voterDirection = %v, want none", data["voterDirection"])
	}
}

func TestRetractVote_WithoutStandingVoteIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")

	rec := env.do(t, http.MethodDelete, "/api/v1/questions/q1/vote", voterToken, nil)
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["transition"] != "noop" {
		t.Fatalf("transition = %v, want noop", data["transition"])
	}
}

func TestCastVote_CommentVotable(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "alice", models.RoleUser, 0)
	voterToken := env.seedUser(t, "voter", "bob", models.RoleUser, 20)
	env.seedQuestion(t, "q1", "author")

	c := &models.Comment{ID: "c1", QuestionID: "q1", AuthorID: "author", Body: "a comment"}
	if err := env.store.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/comments/c1/vote", voterToken, CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusOK)

	data := dataMap(t, rec)
	if data["netVoteCount"].(float64) != 1 {
		t.Fatalf("netVoteCount = %v, want 1", data["netVoteCount"])
	}
}

func TestVote_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/vote", "", CastVoteRequest{Direction: "up"})
	wantStatus(t, rec, http.StatusUnauthorized)
	wantErrorCode(t, rec, ErrCodeUnauthorized)
}
