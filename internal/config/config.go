// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package config provides layered configuration for Colloquy using Koanf v2.
// Precedence is ENV > config file > built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Colloquy server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Policy   PolicyConfig   `koanf:"policy"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Events   EventsConfig   `koanf:"events"`
	NATS     NATSConfig     `koanf:"nats"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// StoreConfig holds content store (BadgerDB) settings.
type StoreConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is true.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence. Used by tests
	// and throwaway deployments.
	InMemory bool `koanf:"in_memory"`

	// ConflictRetries bounds the internal retry loop on transaction
	// conflicts before the conflict surfaces to the caller.
	ConflictRetries int `koanf:"conflict_retries"`
}

// SecurityConfig holds identity verification and rate limit settings.
type SecurityConfig struct {
	// JWTSecret verifies bearer tokens minted by the external identity
	// provider. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// RateLimitReqs is the per-user request budget per RateLimitWindow
	// for mutating endpoints (votes, comments, answers).
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// PolicyConfig holds the tunable forum policy values. These are policy,
// not structure: changing them must never require a code change.
type PolicyConfig struct {
	VoteDeltas           VoteDeltas           `koanf:"vote_deltas"`
	ReputationThresholds ReputationThresholds `koanf:"reputation_thresholds"`
	NotificationExpiry   NotificationExpiry   `koanf:"notification_expiry"`
}

// VoteDeltas maps a vote direction per item type to the reputation
// points applied to the content author.
type VoteDeltas struct {
	QuestionUp   int64 `koanf:"question_up"`
	QuestionDown int64 `koanf:"question_down"`
	AnswerUp     int64 `koanf:"answer_up"`
	AnswerDown   int64 `koanf:"answer_down"`
	CommentUp    int64 `koanf:"comment_up"`
	CommentDown  int64 `koanf:"comment_down"`
}

// ReputationThresholds are the minimum reputation scores required to
// perform forum actions.
type ReputationThresholds struct {
	Vote     int64 `koanf:"vote"`
	Downvote int64 `koanf:"downvote"`
	Comment  int64 `koanf:"comment"`
}

// NotificationExpiry maps notification priority to retention. Zero
// means the notification never expires.
type NotificationExpiry struct {
	Low    time.Duration `koanf:"low"`
	Medium time.Duration `koanf:"medium"`
	High   time.Duration `koanf:"high"`
}

// RealtimeConfig holds websocket session registry settings.
type RealtimeConfig struct {
	// SendBuffer is the per-client outbound queue length. A client that
	// falls this far behind is disconnected.
	SendBuffer int `koanf:"send_buffer"`

	// BroadcastBuffer is the hub's shared broadcast queue length.
	BroadcastBuffer int `koanf:"broadcast_buffer"`

	// MaxMessageSize caps inbound client frames in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// MessageRate and MessageBurst throttle inbound client events
	// (token bucket, events per second).
	MessageRate  float64 `koanf:"message_rate"`
	MessageBurst int     `koanf:"message_burst"`
}

// EventsConfig holds domain event router settings.
type EventsConfig struct {
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	PoisonTopic          string        `koanf:"poison_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// NATSConfig holds the optional NATS JetStream transport used for
// multi-process fanout. Requires building with -tags nats; without the
// tag the in-process GoChannel transport is used regardless.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	DurableName    string `koanf:"durable_name"`
	QueueGroup     string `koanf:"queue_group"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3953,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Path:            "/data/colloquy",
			InMemory:        false,
			ConflictRetries: 5,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Policy: PolicyConfig{
			VoteDeltas: VoteDeltas{
				QuestionUp:   10,
				QuestionDown: -2,
				AnswerUp:     10,
				AnswerDown:   -2,
				CommentUp:    2,
				CommentDown:  -1,
			},
			ReputationThresholds: ReputationThresholds{
				Vote:     15,
				Downvote: 125,
				Comment:  50,
			},
			NotificationExpiry: NotificationExpiry{
				Low:    7 * 24 * time.Hour,
				Medium: 30 * 24 * time.Hour,
				High:   0, // never
			},
		},
		Realtime: RealtimeConfig{
			SendBuffer:      256,
			BroadcastBuffer: 1024,
			MaxMessageSize:  64 * 1024,
			MessageRate:     10,
			MessageBurst:    20,
		},
		Events: EventsConfig{
			RetryMaxRetries:      5,
			RetryInitialInterval: time.Second,
			RetryMaxInterval:     time.Minute,
			PoisonTopic:          "forum.poison",
			CloseTimeout:         30 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats/jetstream",
			DurableName:    "forum-fanout",
			QueueGroup:     "fanout",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.Store.ConflictRetries < 1 {
		return fmt.Errorf("store.conflict_retries must be at least 1, got %d", c.Store.ConflictRetries)
	}
	if c.Server.Environment == "production" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters in production")
	}

	t := c.Policy.ReputationThresholds
	if t.Vote < 0 || t.Downvote < 0 || t.Comment < 0 {
		return fmt.Errorf("policy.reputation_thresholds must be non-negative")
	}
	if t.Downvote < t.Vote {
		return fmt.Errorf("policy.reputation_thresholds.downvote (%d) below vote threshold (%d)", t.Downvote, t.Vote)
	}

	d := c.Policy.VoteDeltas
	if d.QuestionUp <= 0 || d.AnswerUp <= 0 || d.CommentUp <= 0 {
		return fmt.Errorf("policy.vote_deltas upvote deltas must be positive")
	}
	if d.QuestionDown >= 0 || d.AnswerDown >= 0 || d.CommentDown >= 0 {
		return fmt.Errorf("policy.vote_deltas downvote deltas must be negative")
	}

	e := c.Policy.NotificationExpiry
	if e.Low < 0 || e.Medium < 0 || e.High < 0 {
		return fmt.Errorf("policy.notification_expiry durations must be non-negative")
	}

	if c.Realtime.SendBuffer < 1 || c.Realtime.BroadcastBuffer < 1 {
		return fmt.Errorf("realtime buffers must be at least 1")
	}
	if c.Realtime.MessageRate <= 0 || c.Realtime.MessageBurst < 1 {
		return fmt.Errorf("realtime message rate limit must be positive")
	}

	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
