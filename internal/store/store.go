// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	questionKeyPrefix     = "question:"
	answerKeyPrefix       = "answer:"
	commentKeyPrefix      = "comment:"
	userKeyPrefix         = "user:"
	usernameKeyPrefix     = "username:"
	questionAnswersPrefix = "qanswers:"     // qanswers:<question_id>:<answer_id> -> answer_id
	questionCommentsIdx   = "qcomments:"    // qcomments:<question_id>:<comment_id> -> comment_id
	answerCommentsIdx     = "acomments:"    // acomments:<answer_id>:<comment_id> -> comment_id
	notificationKeyPrefix = "notification:" // notification:<recipient_id>:<inv_nano>:<id>
)

// Store is a BadgerDB-backed document store for forum content, users, and
// notifications. All typed Update methods run their mutator inside a single
// transaction and retry on write conflicts, so concurrent writers serialize
// without partial effects.
type Store struct {
	db      *badger.DB
	retries int
}

// Open opens (or creates) the store at the configured path. With InMemory set
// the store holds everything in RAM and loses it on Close, which is what the
// test suite uses.
func Open(cfg config.StoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Badger's own logger is too chatty; we log at this layer

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("conflict_retries", cfg.ConflictRetries).
		Msg("Document store opened")

	return &Store{db: db, retries: cfg.ConflictRetries}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store can serve requests. Used by the
// readiness probe.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store: database is closed")
	}
	return nil
}

// RunGC runs one round of Badger value-log garbage collection. Callers run
// this periodically; badger.ErrNoRewrite means there was nothing to collect
// and is not reported as an error.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("value log gc: %w", err)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on commit conflicts up
// to the configured limit. Any non-conflict error from fn aborts immediately
// and discards all writes from that attempt.
func (s *Store) update(ctx context.Context, kind string, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = s.db.Update(fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		metrics.StoreConflictRetries.WithLabelValues(kind).Inc()
		logging.Debug().Str("kind", kind).Int("attempt", attempt+1).Msg("Write conflict, retrying")
		// Linear backoff keeps retries from re-colliding in lockstep
		time.Sleep(time.Duration(attempt+1) * time.Millisecond)
	}
	metrics.StoreConflictExhausted.WithLabelValues(kind).Inc()
	return fmt.Errorf("%w after %d retries: %v", ErrConflict, s.retries, err)
}

// view runs fn in a read-only transaction.
func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}

// getDoc reads and unmarshals one document inside txn.
func getDoc[T any](txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var doc T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &doc, nil
}

// setDoc marshals and writes one document inside txn.
func setDoc[T any](txn *badger.Txn, key []byte, doc *T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// exists reports whether key is present inside txn.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
