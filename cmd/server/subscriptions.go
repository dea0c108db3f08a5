// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package main

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/notify"
	"github.com/tomtom215/colloquy/internal/realtime"
	"github.com/tomtom215/colloquy/internal/reputation"
)

// subscribeHandlers registers every domain event consumer on the
// router. Each consumer gets its own handler name so retries and
// poison routing are tracked per concern: a reputation write failing
// must not block the live-push relay for the same event.
func subscribeHandlers(
	router *events.Router,
	cfg *config.Config,
	accumulator *reputation.Accumulator,
	fanout *notify.Fanout,
	relay *realtime.Relay,
) {
	// Reputation is the only consumer that writes forum state.
	router.Subscribe("reputation-vote", events.TopicVoteTransition, accumulator.HandleVoteTransition)

	// Notification fan-out persists inbox entries and pushes to live
	// sessions.
	router.Subscribe("notify-vote", events.TopicVoteTransition, fanout.HandleVoteTransition)
	router.Subscribe("notify-accepted", events.TopicAnswerAccepted, fanout.HandleAnswerAccepted)
	router.Subscribe("notify-answer", events.TopicAnswerPosted, fanout.HandleAnswerPosted)
	router.Subscribe("notify-comment", events.TopicCommentPosted, fanout.HandleCommentPosted)

	// Realtime relay repaints rooms with committed state.
	router.Subscribe("relay-vote", events.TopicVoteTransition, relay.HandleVoteTransition)
	router.Subscribe("relay-accepted", events.TopicAnswerAccepted, relay.HandleAnswerAccepted)
	router.Subscribe("relay-comment", events.TopicCommentPosted, relay.HandleCommentPosted)

	if cfg.Events.PoisonTopic != "" {
		router.Subscribe("poison-log", cfg.Events.PoisonTopic, logPoisonedEvent)
	}
}

// logPoisonedEvent records events that exhausted their retries. The
// payload stays on the poison topic's subscription; this consumer only
// makes the failure visible.
func logPoisonedEvent(msg *message.Message) error {
	metrics.EventsPoisoned.Inc()
	logging.Error().
		Str("event_id", msg.UUID).
		Str("origin_topic", msg.Metadata.Get(middleware.PoisonedTopicKey)).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Str("payload", string(msg.Payload)).
		Msg("Event exhausted retries and was poisoned")
	return nil
}
