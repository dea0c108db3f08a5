// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// validatable is implemented by all domain events.
type validatable interface {
	Validate() error
}

// Marshal validates an event and encodes it as a Watermill message. The
// message UUID is the event ID, so transport-level deduplication and the
// reputation idempotence key are the same identifier.
func Marshal(eventID string, event validatable) (*message.Message, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return message.NewMessage(eventID, data), nil
}

// Unmarshal decodes a Watermill message payload into the given event type.
func Unmarshal[T any](msg *message.Message) (*T, error) {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
