// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/models"
)

func questionKey(id string) []byte { return []byte(questionKeyPrefix + id) }
func answerKey(id string) []byte   { return []byte(answerKeyPrefix + id) }
func commentKey(id string) []byte  { return []byte(commentKeyPrefix + id) }

// CreateQuestion stores a new question. The ID must be unused.
func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	start := time.Now()
	err := s.update(ctx, "question", func(txn *badger.Txn) error {
		ok, err := exists(txn, questionKey(q.ID))
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyExists
		}
		return setDoc(txn, questionKey(q.ID), q)
	})
	metrics.RecordStoreOp("create", "question", time.Since(start), err)
	return err
}

// GetQuestion returns the question with the given ID, or ErrNotFound.
func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	start := time.Now()
	var q *models.Question
	err := s.view(func(txn *badger.Txn) error {
		var verr error
		q, verr = getDoc[models.Question](txn, questionKey(id))
		return verr
	})
	metrics.RecordStoreOp("get", "question", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion applies mutate to the stored question inside one
// transaction and persists the result. A mutator error aborts the update
// with no side effects. The returned question is the committed state.
func (s *Store) UpdateQuestion(ctx context.Context, id string, mutate func(*models.Question) error) (*models.Question, error) {
	start := time.Now()
	var out *models.Question
	err := s.update(ctx, "question", func(txn *badger.Txn) error {
		q, err := getDoc[models.Question](txn, questionKey(id))
		if err != nil {
			return err
		}
		if err := mutate(q); err != nil {
			return err
		}
		if err := setDoc(txn, questionKey(id), q); err != nil {
			return err
		}
		out = q
		return nil
	})
	metrics.RecordStoreOp("update", "question", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAnswer stores a new answer, indexes it under its question, and bumps
// the question's answer count and activity timestamp, all in one transaction.
// Returns ErrNotFound if the question does not exist.
func (s *Store) CreateAnswer(ctx context.Context, a *models.Answer) error {
	start := time.Now()
	err := s.update(ctx, "answer", func(txn *badger.Txn) error {
		ok, err := exists(txn, answerKey(a.ID))
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyExists
		}

		q, err := getDoc[models.Question](txn, questionKey(a.QuestionID))
		if err != nil {
			return err
		}
		q.AnswerCount++
		q.LastActivity = a.CreatedAt

		if err := setDoc(txn, answerKey(a.ID), a); err != nil {
			return err
		}
		idxKey := []byte(questionAnswersPrefix + a.QuestionID + ":" + a.ID)
		if err := txn.Set(idxKey, []byte(a.ID)); err != nil {
			return err
		}
		return setDoc(txn, questionKey(q.ID), q)
	})
	metrics.RecordStoreOp("create", "answer", time.Since(start), err)
	return err
}

// GetAnswer returns the answer with the given ID, or ErrNotFound.
func (s *Store) GetAnswer(ctx context.Context, id string) (*models.Answer, error) {
	start := time.Now()
	var a *models.Answer
	err := s.view(func(txn *badger.Txn) error {
		var verr error
		a, verr = getDoc[models.Answer](txn, answerKey(id))
		return verr
	})
	metrics.RecordStoreOp("get", "answer", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAnswer applies mutate to the stored answer inside one transaction.
func (s *Store) UpdateAnswer(ctx context.Context, id string, mutate func(*models.Answer) error) (*models.Answer, error) {
	start := time.Now()
	var out *models.Answer
	err := s.update(ctx, "answer", func(txn *badger.Txn) error {
		a, err := getDoc[models.Answer](txn, answerKey(id))
		if err != nil {
			return err
		}
		if err := mutate(a); err != nil {
			return err
		}
		if err := setDoc(txn, answerKey(id), a); err != nil {
			return err
		}
		out = a
		return nil
	})
	metrics.RecordStoreOp("update", "answer", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAnswers returns all answers for a question in insertion order.
func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]*models.Answer, error) {
	start := time.Now()
	var answers []*models.Answer
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(questionAnswersPrefix + questionID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var answerID string
			err := it.Item().Value(func(val []byte) error {
				answerID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			a, err := getDoc[models.Answer](txn, answerKey(answerID))
			if err != nil {
				continue // index entry may outlive the answer
			}
			answers = append(answers, a)
		}
		return nil
	})
	metrics.RecordStoreOp("list", "answer", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// CreateComment stores a new comment and indexes it under its direct parent
// (the answer when AnswerID is set, the question otherwise).
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	start := time.Now()
	err := s.update(ctx, "comment", func(txn *badger.Txn) error {
		ok, err := exists(txn, commentKey(c.ID))
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyExists
		}

		if err := setDoc(txn, commentKey(c.ID), c); err != nil {
			return err
		}

		var idxKey []byte
		if c.AnswerID != "" {
			idxKey = []byte(answerCommentsIdx + c.AnswerID + ":" + c.ID)
		} else {
			idxKey = []byte(questionCommentsIdx + c.QuestionID + ":" + c.ID)
		}
		return txn.Set(idxKey, []byte(c.ID))
	})
	metrics.RecordStoreOp("create", "comment", time.Since(start), err)
	return err
}

// GetComment returns the comment with the given ID, or ErrNotFound.
func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	start := time.Now()
	var c *models.Comment
	err := s.view(func(txn *badger.Txn) error {
		var verr error
		c, verr = getDoc[models.Comment](txn, commentKey(id))
		return verr
	})
	metrics.RecordStoreOp("get", "comment", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComment applies mutate to the stored comment inside one transaction.
func (s *Store) UpdateComment(ctx context.Context, id string, mutate func(*models.Comment) error) (*models.Comment, error) {
	start := time.Now()
	var out *models.Comment
	err := s.update(ctx, "comment", func(txn *badger.Txn) error {
		c, err := getDoc[models.Comment](txn, commentKey(id))
		if err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		if err := setDoc(txn, commentKey(id), c); err != nil {
			return err
		}
		out = c
		return nil
	})
	metrics.RecordStoreOp("update", "comment", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListComments returns the comments attached directly to a question or an
// answer. Exactly one of questionID/answerID should be non-empty.
func (s *Store) ListComments(ctx context.Context, questionID, answerID string) ([]*models.Comment, error) {
	start := time.Now()
	var prefix []byte
	if answerID != "" {
		prefix = []byte(answerCommentsIdx + answerID + ":")
	} else {
		prefix = []byte(questionCommentsIdx + questionID + ":")
	}

	var comments []*models.Comment
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var commentID string
			err := it.Item().Value(func(val []byte) error {
				commentID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			c, err := getDoc[models.Comment](txn, commentKey(commentID))
			if err != nil {
				continue
			}
			comments = append(comments, c)
		}
		return nil
	})
	metrics.RecordStoreOp("list", "comment", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
