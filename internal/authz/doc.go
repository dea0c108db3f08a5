// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package authz provides role-based authorization using Casbin.
//
// The model and policy are compiled into the binary: the forum's
// capability set (who may post, vote, accept, or send announcements)
// is a product decision, not an operator setting. Admins inherit every
// user permission through a grouping rule.
//
// This package only answers "may this role do this kind of thing".
// Ownership and state checks belong to the domain packages that can
// see the documents involved: only the asker accepts an answer, voters
// cannot vote on their own posts, and reputation thresholds come from
// the vote policy.
package authz
