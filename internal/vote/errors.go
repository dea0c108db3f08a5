// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package vote

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirection is returned for a direction other than up/down.
	ErrInvalidDirection = errors.New("vote: invalid direction")

	// ErrSelfVote is returned when a user votes on their own content.
	ErrSelfVote = errors.New("vote: cannot vote on own content")
)

// InsufficientReputationError is returned when the voter's reputation is
// below the threshold for the attempted action.
type InsufficientReputationError struct {
	Action   string
	Required int64
	Current  int64
}

func (e *InsufficientReputationError) Error() string {
	return fmt.Sprintf("vote: %s requires %d reputation, have %d", e.Action, e.Required, e.Current)
}
