// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package store

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when an update could not be committed after
	// exhausting the configured number of write-conflict retries.
	ErrConflict = errors.New("store: write conflict")

	// ErrAlreadyExists is returned when creating a document whose ID is taken.
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUsernameTaken is returned when creating a user with a username
	// that is already registered.
	ErrUsernameTaken = errors.New("store: username taken")
)
