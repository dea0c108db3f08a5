// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package logging provides centralized zerolog-based logging for Colloquy.
//
// All packages log through this wrapper rather than holding logger
// instances, which keeps log configuration in one place:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("component", "vote-ledger").Msg("started")
//	logging.Ctx(ctx).Warn().Err(err).Msg("delivery failed")
//
// A slog adapter bridges the same backend into libraries that speak
// log/slog, notably sutureslog for the supervisor tree.
package logging
