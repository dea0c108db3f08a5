// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

/*
Package store provides the BadgerDB-backed document store for forum content,
user accounts, and notifications.

# Layout

Documents are JSON-encoded under typed key prefixes:

	question:<id>                                 question document
	answer:<id>                                   answer document
	comment:<id>                                  comment document
	user:<id>                                     user document
	username:<lowercase_name>                     username -> user ID
	qanswers:<question_id>:<answer_id>            question -> answer index
	qcomments:<question_id>:<comment_id>          question -> comment index
	acomments:<answer_id>:<comment_id>            answer -> comment index
	notification:<recipient>:<inv_nano>:<id>      notification, newest-first order

Notification keys embed the creation time inverted against MaxInt64 so a
plain ascending prefix iteration returns newest notifications first.

# Concurrency

Badger runs transactions under serializable snapshot isolation. The typed
Update methods (UpdateQuestion, UpdateAnswer, UpdateComment, UpdateUser) run
a caller-supplied mutator inside a single read-write transaction: the
mutator sees the committed state, and two racing updates to the same
document cannot both commit. Commit conflicts are retried with linear
backoff up to the configured limit, after which ErrConflict is returned. A
mutator error aborts the transaction with no side effects, which is how
domain rules (self-vote checks, threshold checks) veto a write atomically.

# Expiry

Notifications with a bounded priority carry a Badger entry TTL, so expiry is
enforced by the storage engine and needs no background sweeper. Rewrites
(marking read) carry the remaining TTL forward.
*/
package store
