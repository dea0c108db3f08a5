// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
)

// notificationKey builds notification:<recipient>:<inv_nano>:<id>. The
// middle component is the creation time inverted against MaxInt64, so plain
// ascending iteration over the recipient prefix yields newest first.
func notificationKey(n *models.Notification) []byte {
	inv := uint64(math.MaxInt64 - n.CreatedAt.UnixNano())
	return []byte(fmt.Sprintf("%s%s:%020d:%s", notificationKeyPrefix, n.RecipientID, inv, n.ID))
}

func notificationPrefix(recipientID string) []byte {
	return []byte(notificationKeyPrefix + recipientID + ":")
}

// CreateNotification persists a notification. A positive ttl sets a Badger
// entry TTL so expiry needs no sweeper; zero means the notification never
// expires.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification, ttl time.Duration) error {
	start := time.Now()
	err := s.update(ctx, "notification", func(txn *badger.Txn) error {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		key := notificationKey(n)
		if ttl > 0 {
			e := badger.NewEntry(key, data).WithTTL(ttl)
			return txn.SetEntry(e)
		}
		return txn.Set(key, data)
	})
	metrics.RecordStoreOp("create", "notification", time.Since(start), err)
	return err
}

// ListNotifications returns a page of the recipient's notifications, newest
// first. With unreadOnly set, read notifications are skipped before paging.
func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*models.Notification, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 20
	}

	var out []*models.Notification
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := notificationPrefix(recipientID)
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var n models.Notification
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			})
			if err != nil {
				return err
			}
			if unreadOnly && n.IsRead {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, &n)
			if len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	metrics.RecordStoreOp("list", "notification", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for a recipient.
func (s *Store) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	start := time.Now()
	count := 0
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := notificationPrefix(recipientID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var n models.Notification
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			})
			if err != nil {
				return err
			}
			if !n.IsRead {
				count++
			}
		}
		return nil
	})
	metrics.RecordStoreOp("unread_count", "notification", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkNotificationRead marks one notification read, preserving any remaining
// TTL on the entry. Marking an already-read notification is a no-op. Returns
// ErrNotFound if the recipient has no such notification.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientID, notificationID string) (*models.Notification, error) {
	start := time.Now()
	var out *models.Notification
	err := s.update(ctx, "notification", func(txn *badger.Txn) error {
		key, item, err := findNotification(txn, recipientID, notificationID)
		if err != nil {
			return err
		}

		var n models.Notification
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &n) }); err != nil {
			return err
		}
		if n.IsRead {
			out = &n
			return nil
		}

		n.MarkRead(time.Now().UTC())
		if err := rewriteNotification(txn, key, item, &n); err != nil {
			return err
		}
		out = &n
		return nil
	})
	metrics.RecordStoreOp("mark_read", "notification", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAllNotificationsRead marks every unread notification for the recipient
// read and returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error) {
	start := time.Now()
	changed := 0
	err := s.update(ctx, "notification", func(txn *badger.Txn) error {
		changed = 0
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		now := time.Now().UTC()
		prefix := notificationPrefix(recipientID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var n models.Notification
			err := item.Value(func(val []byte) error { return json.Unmarshal(val, &n) })
			if err != nil {
				return err
			}
			if n.IsRead {
				continue
			}

			n.MarkRead(now)
			if err := rewriteNotification(txn, item.KeyCopy(nil), item, &n); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	metrics.RecordStoreOp("mark_all_read", "notification", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// DeleteNotification removes one notification. Returns ErrNotFound if the
// recipient has no such notification.
func (s *Store) DeleteNotification(ctx context.Context, recipientID, notificationID string) error {
	start := time.Now()
	err := s.update(ctx, "notification", func(txn *badger.Txn) error {
		key, _, err := findNotification(txn, recipientID, notificationID)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	metrics.RecordStoreOp("delete", "notification", time.Since(start), err)
	return err
}

// findNotification scans the recipient's prefix for the key ending in the
// notification ID. The per-user notification set is small and TTL-bounded,
// so a prefix scan beats maintaining a second index.
func findNotification(txn *badger.Txn, recipientID, notificationID string) ([]byte, *badger.Item, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := notificationPrefix(recipientID)
	suffix := ":" + notificationID
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		if strings.HasSuffix(string(key), suffix) {
			item, err := txn.Get(key)
			if err != nil {
				return nil, nil, err
			}
			return key, item, nil
		}
	}
	return nil, nil, ErrNotFound
}

// rewriteNotification writes the updated document back under the same key,
// carrying over whatever TTL remains on the existing entry.
func rewriteNotification(txn *badger.Txn, key []byte, item *badger.Item, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if exp := item.ExpiresAt(); exp > 0 {
		remaining := time.Until(time.Unix(int64(exp), 0))
		if remaining <= 0 {
			// Entry is at its expiry boundary; drop it rather than resurrect
			return txn.Delete(key)
		}
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(remaining))
	}
	return txn.Set(key, data)
}
