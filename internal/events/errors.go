// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package events

import "errors"

// ErrNATSNotEnabled is returned when NATS transport is requested without the nats build tag.
var ErrNATSNotEnabled = errors.New("NATS transport not enabled (build with -tags nats)")

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus closed")
