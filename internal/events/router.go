// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/metrics"
)

// Router wraps the Watermill router with pre-configured middleware:
// panic recovery, exponential backoff retry, and poison queue routing
// for events that fail every retry.
type Router struct {
	router *message.Router
	bus    *Bus
	logger watermill.LoggerAdapter
}

// NewRouter creates the domain event router. Failed events are retried
// with backoff; events that exhaust retries are published to the poison
// topic instead of blocking the subscription.
func NewRouter(cfg config.EventsConfig, bus *Bus, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = NewLogger()
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Middleware order (outer to inner): recover panics first, retry
	// transient failures, then divert permanent failures to the poison
	// topic so one bad event cannot wedge the subscription.
	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(bus.Publisher(), cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poison)
	}

	return &Router{router: wmRouter, bus: bus, logger: logger}, nil
}

// Subscribe registers a no-output handler for one topic. The handler's
// error return drives retry and poison routing.
func (r *Router) Subscribe(name, topic string, handler func(msg *message.Message) error) {
	r.router.AddConsumerHandler(
		name,
		topic,
		r.bus.Subscriber(),
		func(msg *message.Message) error {
			start := time.Now()
			err := handler(msg)
			metrics.RecordEventHandled(topic, name, time.Since(start), err)
			return err
		},
	)
}

// Run starts the router and blocks until ctx is cancelled or the router
// fails. Handlers registered after Run are not picked up.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel closed once the router is running and all
// handlers are subscribed. Publishing before this point can drop events
// on the in-process transport.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to the configured close timeout.
func (r *Router) Close() error {
	return r.router.Close()
}
