// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

/*
Package events defines the domain events emitted after committed state
changes and the Watermill plumbing that carries them.

# Events

Four events, one topic each:

	forum.vote.transition   VoteTransition
	forum.answer.accepted   AnswerAccepted
	forum.answer.posted     AnswerPosted
	forum.comment.posted    CommentPosted

Events are emitted only after their state change has committed. A crash
between commit and emission means a lost event, never a phantom one; the
reputation handler re-derives nothing from events it never saw, and the
EventID idempotence key makes redelivery safe.

# Transport

The default transport is Watermill's in-process GoChannel, which is all a
single-binary deployment needs. Building with -tags nats swaps in NATS
JetStream (optionally with an embedded server) so multiple processes can
share the event stream.

# Router

The Router wires handlers with panic recovery, exponential backoff retry,
and poison queue routing, in that order, so one malformed event cannot
wedge a subscription.
*/
package events
