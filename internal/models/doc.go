// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package models defines the persisted document types for the forum:
// questions, answers, comments, their vote ledgers, users, and
// notifications. Documents are stored as JSON in the content store and
// mutated only through the owning component (vote ledger, acceptance
// coordinator, reputation accumulator, notification fanout).
package models
