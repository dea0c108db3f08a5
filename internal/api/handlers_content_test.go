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

func TestAskQuestion(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "asker", "alice", models.RoleUser, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/questions", token, AskQuestionRequest{
		Title: "How do keyed mutexes work?",
		Body:  "I want to serialize operations per resource without one global lock.",
		Tags:  []string{"concurrency", "locks"},
	})
	wantStatus(t, rec, http.StatusCreated)

	data := dataMap(t, rec)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("missing question id in %v", data)
	}
	if data["author_id"] != "asker" {
		t.Fatalf("author_id = %v, want asker", data["author_id"])
	}

	q, err := env.store.GetQuestion(context.Background(), id)
	if err != nil {
		t.Fatalf("question not persisted: %v", err)
	}
	if q.Title != "How do keyed mutexes work?" {
		t.Fatalf("unexpected title %q", q.Title)
	}
}

func TestAskQuestion_ValidationFailureMutatesNothing(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "asker", "alice", models.RoleUser, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/questions", token, AskQuestionRequest{
		Title: "short", // below min length
		Body:  "also too short",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, ErrCodeValidationFailed)
}

func TestAskQuestion_TooManyTags(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "asker", "alice", models.RoleUser, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/questions", token, AskQuestionRequest{
		Title: "A perfectly reasonable title",
		Body:  "A body that satisfies the minimum length requirement easily.",
		Tags:  []string{"a", "b", "c", "d", "e", "f"},
	})
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestPostAnswer(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	token := env.seedUser(t, "answerer", "bob", models.RoleUser, 10)
	env.seedQuestion(t, "q1", "asker")

	rec := env.do(t, http.MethodPost, "/api/v1/questions/q1/answers", token, PostAnswerRequest{
		Body: "Use a striped lock keyed by the resource identifier.",
	})
	wantStatus(t, rec, http.StatusCreated)

	data := dataMap(t, rec)
	if data["question_id"] != "q1" || data["author_id"] != "answerer" {
		t.Fatalf("unexpected answer payload: %v", data)
	}

	q, err := env.store.GetQuestion(context.Background(), "q1")
	if err != nil {
		t.Fatalf("GetQuestion() error = %v", err)
	}
	if q.AnswerCount != 1 {
		t.Fatalf("AnswerCount = %d, want 1", q.AnswerCount)
	}
}

func TestPostAnswer_MissingQuestion404(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "answerer", "bob", models.RoleUser, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/questions/missing/answers", token, PostAnswerRequest{
		Body: "Use a striped lock keyed by the resource identifier.",
	})
	wantStatus(t, rec, http.StatusNotFound)
}

func TestPostComment_OnQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	token := env.seedUser(t, "commenter", "bob", models.RoleUser, 60)
	env.seedQuestion(t, "q1", "asker")

	rec := env.do(t, http.MethodPost, "/api/v1/comments", token, PostCommentRequest{
		QuestionID: "q1",
		Body:       "Could you share the error message?",
	})
	wantStatus(t, rec, http.StatusCreated)

	data := dataMap(t, rec)
	if data["question_id"] != "q1" || data["author_id"] != "commenter" {
		t.Fatalf("unexpected comment payload: %v", data)
	}
}

func TestPostComment_OnAnswer(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	env.seedUser(t, "answerer", "carol", models.RoleUser, 10)
	token := env.seedUser(t, "commenter", "bob", models.RoleUser, 60)
	env.seedQuestion(t, "q1", "asker")
	env.seedAnswer(t, "a1", "q1", "answerer")

	rec := env.do(t, http.MethodPost, "/api/v1/comments", token, PostCommentRequest{
		QuestionID: "q1",
		AnswerID:   "a1",
		Body:       "This worked for me, thanks.",
	})
	wantStatus(t, rec, http.StatusCreated)
}

func TestPostComment_AnswerQuestionMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	token := env.seedUser(t, "commenter", "bob", models.RoleUser, 60)
	env.seedQuestion(t, "q1", "asker")
	env.seedQuestion(t, "q2", "asker")
	env.seedAnswer(t, "a2", "q2", "asker")

	rec := env.do(t, http.MethodPost, "/api/v1/comments", token, PostCommentRequest{
		QuestionID: "q1",
		AnswerID:   "a2",
		Body:       "wrong thread",
	})
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestPostComment_BelowReputationThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	token := env.seedUser(t, "newbie", "bob", models.RoleUser, 10)
	env.seedQuestion(t, "q1", "asker")

	rec := env.do(t, http.MethodPost, "/api/v1/comments", token, PostCommentRequest{
		QuestionID: "q1",
		Body:       "first!",
	})
	wantStatus(t, rec, http.StatusForbidden)

	resp := envelope(t, rec)
	details, ok := resp.Error.Details.(map[string]interface{})
	if !ok || details["required"].(float64) != 50 {
		t.Fatalf("expected threshold details, got %v", resp.Error.Details)
	}

	comments, err := env.store.ListComments(context.Background(), "q1", "")
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 0 {
		t.Fatal("rejected comment must not be persisted")
	}
}

func TestPostComment_ThreadedUnderComment(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "asker", "alice", models.RoleUser, 10)
	token := env.seedUser(t, "commenter", "bob", models.RoleUser, 60)
	env.seedQuestion(t, "q1", "asker")

	parent := &models.Comment{ID: "c1", QuestionID: "q1", AuthorID: "asker", Body: "parent"}
	if err := env.store.CreateComment(context.Background(), parent); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/comments", token, PostCommentRequest{
		QuestionID:      "q1",
		ParentCommentID: "c1",
		Body:            "replying to you",
	})
	wantStatus(t, rec, http.StatusCreated)

	data := dataMap(t, rec)
	if data["parent_comment_id"] != "c1" {
		t.Fatalf("parent_comment_id = %v, want c1", data["parent_comment_id"])
	}
}

func TestPostContent_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "asker", "alice", models.RoleUser, 10)

	rec := env.doRaw(t, http.MethodPost, "/api/v1/questions", token, "{not json")
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, ErrCodeBadRequest)
}
