// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/colloquy/internal/config"
)

func testEventsConfig() config.EventsConfig {
	return config.EventsConfig{
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     10 * time.Millisecond,
		PoisonTopic:          "forum.poison",
		CloseTimeout:         5 * time.Second,
	}
}

// startRouter runs the router and waits for handlers to subscribe.
func startRouter(t *testing.T, r *Router) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil {
			t.Errorf("router Run() error = %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("router did not stop in time")
		}
	})

	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start in time")
	}
}

func TestRouter_DeliversEvents(t *testing.T) {
	bus := NewGoChannelBus(NewLogger())
	t.Cleanup(func() { bus.Close(context.Background()) })

	r, err := NewRouter(testEventsConfig(), bus, NewLogger())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	received := make(chan *VoteTransition, 1)
	r.Subscribe("test_votes", TopicVoteTransition, func(msg *message.Message) error {
		e, err := Unmarshal[VoteTransition](msg)
		if err != nil {
			return err
		}
		received <- e
		return nil
	})

	startRouter(t, r)

	e := validTransition()
	if err := bus.Publish(context.Background(), TopicVoteTransition, e.EventID, e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != e.EventID {
			t.Errorf("received event ID = %q, want %q", got.EventID, e.EventID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	bus := NewGoChannelBus(NewLogger())
	t.Cleanup(func() { bus.Close(context.Background()) })

	r, err := NewRouter(testEventsConfig(), bus, NewLogger())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	var attempts atomic.Int32
	done := make(chan struct{})
	r.Subscribe("test_retry", TopicAnswerPosted, func(msg *message.Message) error {
		if attempts.Add(1) < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})

	startRouter(t, r)

	e := &AnswerPosted{
		EventID:    NewEventID(),
		QuestionID: "q1",
		AnswerID:   "a1",
		AuthorID:   "user-b",
		OccurredAt: time.Now().UTC(),
	}
	if err := bus.Publish(context.Background(), TopicAnswerPosted, e.EventID, e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-done:
		if got := attempts.Load(); got != 2 {
			t.Errorf("attempts = %d, want 2", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("handler never succeeded, attempts = %d", attempts.Load())
	}
}

func TestRouter_PoisonQueueReceivesPermanentFailures(t *testing.T) {
	bus := NewGoChannelBus(NewLogger())
	t.Cleanup(func() { bus.Close(context.Background()) })

	cfg := testEventsConfig()
	r, err := NewRouter(cfg, bus, NewLogger())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	r.Subscribe("test_poison", TopicCommentPosted, func(msg *message.Message) error {
		return errors.New("permanent failure")
	})

	poisoned := make(chan *message.Message, 1)
	r.Subscribe("test_poison_sink", cfg.PoisonTopic, func(msg *message.Message) error {
		poisoned <- msg
		return nil
	})

	startRouter(t, r)

	e := &CommentPosted{
		EventID:    NewEventID(),
		CommentID:  "c1",
		QuestionID: "q1",
		AuthorID:   "user-c",
		OccurredAt: time.Now().UTC(),
	}
	if err := bus.Publish(context.Background(), TopicCommentPosted, e.EventID, e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-poisoned:
		if msg.UUID != e.EventID {
			t.Errorf("poisoned message UUID = %q, want %q", msg.UUID, e.EventID)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("event never reached the poison topic")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewGoChannelBus(NewLogger())
	if err := bus.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	e := validTransition()
	if err := bus.Publish(context.Background(), TopicVoteTransition, e.EventID, e); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish() after close error = %v, want ErrBusClosed", err)
	}
}
