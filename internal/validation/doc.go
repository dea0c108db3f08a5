// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package validation wraps go-playground/validator v10 behind a
// singleton with forum-specific rules (username, direction) and error
// translation matching the API's response envelope.
package validation
