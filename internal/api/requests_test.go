// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode string
	}{
		{
			name:   "valid vote",
			body:   `{"direction":"up"}`,
			wantOK: true,
		},
		{
			name:     "invalid direction",
			body:     `{"direction":"sideways"}`,
			wantCode: ErrCodeValidationFailed,
		},
		{
			name:     "missing direction",
			body:     `{}`,
			wantCode: ErrCodeValidationFailed,
		},
		{
			name:     "empty body",
			body:     "",
			wantCode: ErrCodeBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{"direction":`,
			wantCode: ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			rw := NewResponseWriter(rec, req)

			var dst CastVoteRequest
			ok := decodeAndValidate(rw, req, &dst)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (body %q)", ok, tt.wantOK, rec.Body.String())
			}
			if !tt.wantOK {
				resp := decodeRecorded(t, rec)
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %q", resp.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestDecodeAndValidate_OversizedBodyRejected(t *testing.T) {
	big := `{"direction":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(big))
	rec := httptest.NewRecorder()

	var dst CastVoteRequest
	if decodeAndValidate(NewResponseWriter(rec, req), req, &dst) {
		t.Fatal("oversized body must be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAskQuestionRequest_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", `{"title":"A reasonable question title","body":"` + strings.Repeat("b", 30) + `"}`, true},
		{"title too short", `{"title":"hm","body":"` + strings.Repeat("b", 30) + `"}`, false},
		{"body too short", `{"title":"A reasonable question title","body":"tiny"}`, false},
		{"empty tag", `{"title":"A reasonable question title","body":"` + strings.Repeat("b", 30) + `","tags":[""]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst AskQuestionRequest
			got := decodeAndValidate(NewResponseWriter(rec, req), req, &dst)
			if got != tt.valid {
				t.Fatalf("valid = %v, want %v (body %q)", got, tt.valid, rec.Body.String())
			}
		})
	}
}
