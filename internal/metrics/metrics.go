// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Document store performance (Badger)
// - Vote, acceptance, and reputation operations
// - Notification fan-out and delivery
// - API endpoint latency and throughput
// - WebSocket connections and rooms

var (
	// Store Metrics
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_op_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "kind"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_op_errors_total",
			Help: "Total number of document store operation errors",
		},
		[]string{"operation", "kind", "error_type"},
	)

	StoreConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_conflict_retries_total",
			Help: "Total number of transaction retries caused by write conflicts",
		},
		[]string{"kind"},
	)

	StoreConflictExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_conflict_exhausted_total",
			Help: "Total number of updates abandoned after exhausting conflict retries",
		},
		[]string{"kind"},
	)

	// Vote Metrics
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total number of vote transitions applied",
		},
		[]string{"item_type", "transition"}, // transition: "new", "flip", "retract", "noop"
	)

	VotesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_rejected_total",
			Help: "Total number of votes rejected before application",
		},
		[]string{"item_type", "reason"}, // reason: "self_vote", "reputation", "not_found", "invalid"
	)

	// Reputation Metrics
	ReputationDeltaApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reputation_delta_applied_total",
			Help: "Total number of reputation deltas applied to user accounts",
		},
		[]string{"reason"},
	)

	ReputationDeltaSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reputation_delta_skipped_total",
			Help: "Total number of reputation deltas skipped as already applied",
		},
	)

	ReputationDeltaFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reputation_delta_failed_total",
			Help: "Total number of reputation deltas that could not be persisted",
		},
	)

	// Acceptance Metrics
	AcceptanceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acceptance_operations_total",
			Help: "Total number of answer acceptance operations",
		},
		[]string{"operation", "result"}, // operation: "accept", "unaccept"; result: "applied", "noop", "denied", "error"
	)

	// Notification Metrics
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"type", "priority"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Total number of notifications suppressed before creation",
		},
		[]string{"reason"}, // "self_action", "duplicate", "invalid_recipient"
	)

	NotificationsPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_pushed_total",
			Help: "Total number of notifications delivered to live sessions",
		},
	)

	NotificationsPushSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_push_skipped_total",
			Help: "Total number of live pushes skipped",
		},
		[]string{"reason"}, // "offline", "breaker_open", "error"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_rooms",
			Help: "Current number of rooms with at least one member",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped",
		},
		[]string{"reason"}, // "slow_consumer", "rate_limited", "oversized"
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of domain events successfully handled",
		},
		[]string{"topic", "handler"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of domain events that failed handling",
		},
		[]string{"topic", "handler"},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_processing_duration_seconds",
			Help:    "Duration of domain event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic", "handler"},
	)

	EventsPoisoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_poisoned_total",
			Help: "Total number of events routed to the poison queue",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordStoreOp records a document store operation metric
func RecordStoreOp(operation, kind string, duration time.Duration, err error) {
	StoreOpDuration.WithLabelValues(operation, kind).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		StoreOpErrors.WithLabelValues(operation, kind, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordVote records an applied vote transition
func RecordVote(itemType, transition string) {
	VotesCast.WithLabelValues(itemType, transition).Inc()
}

// RecordVoteRejection records a vote rejected before application
func RecordVoteRejection(itemType, reason string) {
	VotesRejected.WithLabelValues(itemType, reason).Inc()
}

// RecordNotification records a persisted notification
func RecordNotification(notifType, priority string) {
	NotificationsCreated.WithLabelValues(notifType, priority).Inc()
}

// RecordEventHandled records the outcome of a domain event handler
func RecordEventHandled(topic, handler string, duration time.Duration, err error) {
	EventProcessingDuration.WithLabelValues(topic, handler).Observe(duration.Seconds())
	if err != nil {
		EventsFailed.WithLabelValues(topic, handler).Inc()
		return
	}
	EventsProcessed.WithLabelValues(topic, handler).Inc()
}
