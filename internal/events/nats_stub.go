// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

//go:build !nats

package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/colloquy/internal/config"
)

// NewNATSBus is a stub for non-NATS builds.
func NewNATSBus(_ config.NATSConfig, _ watermill.LoggerAdapter) (*Bus, error) {
	return nil, ErrNATSNotEnabled
}
