// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
)

func userKey(id string) []byte { return []byte(userKeyPrefix + id) }

func usernameKey(username string) []byte {
	return []byte(usernameKeyPrefix + strings.ToLower(username))
}

// CreateUser stores a new user and claims their username. Usernames are
// unique case-insensitively; ErrUsernameTaken is returned on collision.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	start := time.Now()
	err := s.update(ctx, "user", func(txn *badger.Txn) error {
		ok, err := exists(txn, userKey(u.ID))
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyExists
		}

		taken, err := exists(txn, usernameKey(u.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		if err := setDoc(txn, userKey(u.ID), u); err != nil {
			return err
		}
		return txn.Set(usernameKey(u.Username), []byte(u.ID))
	})
	metrics.RecordStoreOp("create", "user", time.Since(start), err)
	return err
}

// EnsureUser returns the user with the given ID, creating the document
// with a zero reputation ledger when it does not exist yet. The
// identity provider owns credentials; the forum owns the reputation
// ledger, and the ledger's owner document is created here on the
// user's first authenticated request. ErrUsernameTaken is returned
// when the username is already claimed by a different user ID.
func (s *Store) EnsureUser(ctx context.Context, id, username, role string) (*models.User, error) {
	start := time.Now()
	var out *models.User
	err := s.update(ctx, "user", func(txn *badger.Txn) error {
		u, err := getDoc[models.User](txn, userKey(id))
		if err == nil {
			out = u
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		taken, err := exists(txn, usernameKey(username))
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		fresh := &models.User{
			ID:        id,
			Username:  username,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}
		if err := setDoc(txn, userKey(id), fresh); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(username), []byte(id)); err != nil {
			return err
		}
		out = fresh
		return nil
	})
	metrics.RecordStoreOp("ensure", "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns the user with the given ID, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	start := time.Now()
	var u *models.User
	err := s.view(func(txn *badger.Txn) error {
		var verr error
		u, verr = getDoc[models.User](txn, userKey(id))
		return verr
	})
	metrics.RecordStoreOp("get", "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername resolves a username (case-insensitive) to its user.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	start := time.Now()
	var u *models.User
	err := s.view(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var userID string
		err = item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
		if err != nil {
			return err
		}

		u, err = getDoc[models.User](txn, userKey(userID))
		return err
	})
	metrics.RecordStoreOp("get_by_username", "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser applies mutate to the stored user inside one transaction and
// persists the result. A mutator error aborts with no side effects.
func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	start := time.Now()
	var out *models.User
	err := s.update(ctx, "user", func(txn *badger.Txn) error {
		u, err := getDoc[models.User](txn, userKey(id))
		if err != nil {
			return err
		}
		if err := mutate(u); err != nil {
			return err
		}
		if err := setDoc(txn, userKey(id), u); err != nil {
			return err
		}
		out = u
		return nil
	})
	metrics.RecordStoreOp("update", "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
