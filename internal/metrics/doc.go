// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Document store operation latency and write-conflict retries (Badger)
  - Vote transitions, rejections, and reputation deltas
  - Answer acceptance operations
  - Notification creation, suppression, and live delivery
  - API endpoint latency and throughput
  - WebSocket connection counts, room counts, and dropped messages
  - Circuit breaker state transitions
  - Domain event publishing and handler outcomes

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3953/metrics

# Usage Example

	import "github.com/tomtom215/colloquy/internal/metrics"

	start := time.Now()
	q, err := store.UpdateQuestion(ctx, id, mutate)
	metrics.RecordStoreOp("update", "question", time.Since(start), err)

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use chi route patterns, never raw paths
  - Error types are truncated to 50 characters
  - User and item identifiers are never used as label values

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/store: document store metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
