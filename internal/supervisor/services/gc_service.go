// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package services

import (
	"context"
	"time"

	"github.com/tomtom215/colloquy/internal/logging"
)

// GarbageCollector matches *store.Store's RunGC method.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService periodically runs the store's value-log garbage
// collection. Badger reclaims value-log space only when asked, so a
// long-lived process without this loop grows its on-disk footprint
// indefinitely.
type StoreGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewStoreGCService creates a new store GC service wrapper. A
// non-positive interval falls back to 10 minutes.
func NewStoreGCService(gc GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		gc:       gc,
		interval: interval,
		name:     "store-gc",
	}
}

// Serve implements suture.Service. GC failures are logged and the loop
// continues; a transient failure this round does not warrant a restart.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Store garbage collection failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *StoreGCService) String() string {
	return s.name
}
