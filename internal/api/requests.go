// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Request bodies with go-playground/validator tags. Validation runs
// before any handler logic so a failed request never touches the store.
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/colloquy/internal/validation"
)

// maxBodyBytes bounds request bodies. The largest legitimate payload is
// a question body; 256 KiB leaves generous headroom.
const maxBodyBytes = 256 << 10

// CastVoteRequest is the body of POST .../{id}/vote.
type CastVoteRequest struct {
	Direction string `json:"direction" validate:"required,direction"`
}

// AcceptAnswerRequest is the body of POST /questions/{id}/accept.
type AcceptAnswerRequest struct {
	AnswerID string `json:"answerId" validate:"required"`
}

// AskQuestionRequest is the body of POST /questions.
type AskQuestionRequest struct {
	Title string   `json:"title" validate:"required,min=8,max=150"`
	Body  string   `json:"body" validate:"required,min=20,max=30000"`
	Tags  []string `json:"tags" validate:"max=5,dive,min=1,max=35"`
}

// PostAnswerRequest is the body of POST /questions/{id}/answers.
type PostAnswerRequest struct {
	Body string `json:"body" validate:"required,min=20,max=30000"`
}

// PostCommentRequest is the body of POST /comments. QuestionID is
// always required; AnswerID narrows the parent to an answer, and
// ParentCommentID threads the comment under another comment.
type PostCommentRequest struct {
	QuestionID      string `json:"questionId" validate:"required"`
	AnswerID        string `json:"answerId" validate:"omitempty"`
	ParentCommentID string `json:"parentCommentId" validate:"omitempty"`
	Body            string `json:"body" validate:"required,min=1,max=1000"`
}

// FlagContentRequest is the body of POST .../{id}/flag.
type FlagContentRequest struct {
	Reason string `json:"reason" validate:"required,min=4,max=500"`
}

// BanRequest is the body of POST /admin/bans.
type BanRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=500"`
}

// AnnouncementRequest is the body of POST /admin/announcements.
type AnnouncementRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Title       string `json:"title" validate:"required,max=120"`
	Message     string `json:"message" validate:"required,max=2000"`
}

// decodeAndValidate reads the request body into dst and runs struct
// validation. A false return means the error response is already
// written.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			rw.BadRequest("Request body is required")
			return false
		}
		rw.BadRequest(fmt.Sprintf("Invalid JSON body: %v", err))
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
