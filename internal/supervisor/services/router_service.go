// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package services

import (
	"context"
	"fmt"
)

// EventRouter matches *events.Router's blocking Run method.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService wraps the domain event router as a supervised
// service. The router's handlers must be registered before the service
// starts; handlers added after Run are not picked up.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService creates a new event router service wrapper.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{
		router: router,
		name:   "event-router",
	}
}

// Serve implements suture.Service. The router blocks until the context
// is canceled; a premature nil return is reported as an error so the
// supervisor restarts the subscriptions.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if err != nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	if ctx.Err() == nil {
		return fmt.Errorf("event router stopped unexpectedly")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *EventRouterService) String() string {
	return s.name
}
