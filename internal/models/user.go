// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package models

import "time"

// Roles recognized by the authorization layer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// reputationHistoryCap bounds the per-user audit trail. Old entries are
// dropped oldest-first once the cap is reached; the score itself is
// never recomputed from history.
const reputationHistoryCap = 200

// ReputationEntry is one applied delta in a user's reputation history.
// EntryID is the ID of the domain event that produced the delta and is
// used to skip re-applying a redelivered event.
type ReputationEntry struct {
	EventID   string    `json:"event_id"`
	Delta     int64     `json:"delta"`
	Reason    string    `json:"reason"`
	ItemID    string    `json:"item_id,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// User is the forum's per-user aggregate: the reputation ledger plus
// the identity fields needed for display and mention resolution.
// Authentication is external; this document never holds credentials.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`

	// Reputation is the raw score. It may go negative internally;
	// DisplayReputation clamps at zero for presentation.
	Reputation int64             `json:"reputation"`
	History    []ReputationEntry `json:"history,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active,omitempty"`
}

// DisplayReputation returns the score floored at zero.
func (u *User) DisplayReputation() int64 {
	if u.Reputation < 0 {
		return 0
	}
	return u.Reputation
}

// HasApplied reports whether the event has already contributed to the
// score. Only the retained history window is consulted.
func (u *User) HasApplied(eventID string) bool {
	for i := range u.History {
		if u.History[i].EventID == eventID {
			return true
		}
	}
	return false
}

// ApplyDelta records a reputation change. The caller must have checked
// HasApplied first; ApplyDelta does not deduplicate.
func (u *User) ApplyDelta(entry ReputationEntry) {
	u.Reputation += entry.Delta
	u.History = append(u.History, entry)
	if len(u.History) > reputationHistoryCap {
		u.History = u.History[len(u.History)-reputationHistoryCap:]
	}
}
