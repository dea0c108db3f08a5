// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package models

import "time"

// Direction is a vote direction. The zero value DirectionNone means
// "no vote on record" and is used for retractions in transitions.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is a castable direction (up or down).
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// ItemType identifies which kind of document carries a vote ledger.
type ItemType string

const (
	ItemQuestion ItemType = "question"
	ItemAnswer   ItemType = "answer"
	ItemComment  ItemType = "comment"
)

// Valid reports whether t names a votable item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemQuestion, ItemAnswer, ItemComment:
		return true
	}
	return false
}

// VoteRecord is one voter's current vote on one item. An item's vote
// ledger holds at most one record per voter; a changed vote flips the
// record's direction in place rather than creating a second record.
type VoteRecord struct {
	VoterID   string    `json:"voter_id"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NetVotes returns upvotes minus downvotes. The net count is always
// derived from the ledger, never stored where it could diverge.
func NetVotes(votes []VoteRecord) int {
	net := 0
	for _, v := range votes {
		switch v.Direction {
		case DirectionUp:
			net++
		case DirectionDown:
			net--
		}
	}
	return net
}

// VoteOf returns the voter's current direction on the ledger, or
// DirectionNone if the voter has no vote on record.
func VoteOf(votes []VoteRecord, voterID string) Direction {
	for i := range votes {
		if votes[i].VoterID == voterID {
			return votes[i].Direction
		}
	}
	return DirectionNone
}
