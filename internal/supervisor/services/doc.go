// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package services adapts Colloquy's long-running components to the
// suture.Service interface so the supervisor tree can manage their
// lifecycle. Each wrapper depends on a small interface rather than the
// concrete component, which keeps the wrappers testable without
// standing up the real thing.
package services
