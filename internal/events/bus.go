// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/colloquy/internal/metrics"
)

// Bus publishes domain events and hands subscribers to the router. The
// default transport is Watermill's in-process GoChannel; building with
// -tags nats swaps in NATS JetStream for multi-process fan-out.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool

	// closers shut down transport resources beyond pub/sub (embedded
	// NATS server when running with the nats tag).
	closers []func(context.Context) error
}

// NewGoChannelBus creates an in-process bus. Publisher and subscriber are
// the same GoChannel, so handlers in this process see every published
// event with no external broker.
func NewGoChannelBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewLogger()
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)

	return &Bus{publisher: ch, subscriber: ch, logger: logger}
}

// Publish validates, encodes, and publishes one event on a topic.
func (b *Bus) Publish(ctx context.Context, topic, eventID string, event validatable) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	msg, err := Marshal(eventID, event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscriber returns the transport subscriber for router wiring.
func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

// Publisher returns the transport publisher (used for the poison queue).
func (b *Bus) Publisher() message.Publisher {
	return b.publisher
}

// Close shuts down the transport. Safe to call more than once.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	closers := b.closers
	b.mu.Unlock()

	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	// GoChannel pub and sub are the same object; closing twice is safe.
	if err := b.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	for _, c := range closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
