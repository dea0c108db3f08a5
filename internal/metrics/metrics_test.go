// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordStoreOp tests document store metric recording
func TestRecordStoreOp(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		kind      string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful question update",
			operation: "update",
			kind:      "question",
			duration:  2 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful notification create",
			operation: "create",
			kind:      "notification",
			duration:  500 * time.Microsecond,
			err:       nil,
		},
		{
			name:      "failed get with short error",
			operation: "get",
			kind:      "user",
			duration:  time.Millisecond,
			err:       errors.New("not found"),
		},
		{
			name:      "failed update with long error - should truncate to 50 chars",
			operation: "update",
			kind:      "answer",
			duration:  10 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the operation - should not panic
			RecordStoreOp(tt.operation, tt.kind, tt.duration, tt.err)
		})
	}
}

// TestRecordStoreOpErrorTruncation verifies long error labels are bounded
func TestRecordStoreOpErrorTruncation(t *testing.T) {
	longErr := errors.New(strings.Repeat("x", 200))
	RecordStoreOp("update", "comment", time.Millisecond, longErr)

	truncated := strings.Repeat("x", 50)
	c := StoreOpErrors.WithLabelValues("update", "comment", truncated)
	if got := testutil.ToFloat64(c); got < 1 {
		t.Errorf("expected truncated error label to be recorded, counter = %v", got)
	}
}

// TestRecordAPIRequest tests API metric recording
func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("POST", "/api/v1/questions/{id}/vote", "200", 15*time.Millisecond)
	RecordAPIRequest("POST", "/api/v1/questions/{id}/vote", "403", 2*time.Millisecond)

	ok := APIRequestsTotal.WithLabelValues("POST", "/api/v1/questions/{id}/vote", "200")
	if got := testutil.ToFloat64(ok); got < 1 {
		t.Errorf("expected request counter >= 1, got %v", got)
	}
}

// TestTrackActiveRequest verifies the gauge moves both directions
func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	after := testutil.ToFloat64(APIActiveRequests)

	if after != before+1 {
		t.Errorf("expected active requests %v, got %v", before+1, after)
	}
	TrackActiveRequest(false)
}

// TestRecordVote tests vote transition recording
func TestRecordVote(t *testing.T) {
	RecordVote("question", "new")
	RecordVote("answer", "flip")
	RecordVote("comment", "retract")
	RecordVoteRejection("question", "self_vote")
	RecordVoteRejection("answer", "reputation")

	c := VotesCast.WithLabelValues("answer", "flip")
	if got := testutil.ToFloat64(c); got < 1 {
		t.Errorf("expected flip counter >= 1, got %v", got)
	}
}

// TestRecordEventHandled tests handler outcome recording
func TestRecordEventHandled(t *testing.T) {
	RecordEventHandled("forum.vote.transition", "reputation", time.Millisecond, nil)
	RecordEventHandled("forum.vote.transition", "reputation", time.Millisecond, errors.New("store unavailable"))

	ok := EventsProcessed.WithLabelValues("forum.vote.transition", "reputation")
	failed := EventsFailed.WithLabelValues("forum.vote.transition", "reputation")
	if testutil.ToFloat64(ok) < 1 || testutil.ToFloat64(failed) < 1 {
		t.Error("expected both processed and failed counters to be incremented")
	}
}

// TestConcurrentRecording verifies metric recording is safe under concurrency
func TestConcurrentRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordVote("question", "new")
				RecordNotification("answer_posted", "medium")
				RecordStoreOp("get", "question", time.Microsecond, nil)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()
}
