// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package main is the entry point for the Colloquy server.
//
// Colloquy is a self-hosted community Q&A forum engine. It keeps votes,
// answer acceptance, reputation, and notifications consistent across a
// REST API and a websocket fan-out surface.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from env vars and config file (Koanf v2)
//  2. Store: BadgerDB document store for all forum state
//  3. Event bus: in-process GoChannel, or NATS JetStream with -tags nats
//  4. Domain services: vote ledger, acceptance coordinator, reputation
//     accumulator, notification fan-out
//  5. Realtime hub: websocket session registry and room fan-out
//  6. Event router: subscribes reputation, notification, and realtime
//     handlers to the domain event topics
//  7. HTTP server: chi REST API plus the websocket upgrade endpoint
//
// All long-running components run under a suture v4 supervisor tree.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// Required for any deployment:
//   - JWT_SECRET: 32+ character secret shared with the identity provider
//
// # Build Tags
//
//	go build -tags "nats" ./cmd/server  # Enable NATS JetStream transport
//
// Without the tag the event bus runs in-process and NATS_ENABLED=true is
// a startup error.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, the event router finishes handlers
// in flight, and the hub closes websocket sessions with a going-away
// frame.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/colloquy/internal/accept"
	"github.com/tomtom215/colloquy/internal/api"
	"github.com/tomtom215/colloquy/internal/authz"
	"github.com/tomtom215/colloquy/internal/config"
	"github.com/tomtom215/colloquy/internal/events"
	"github.com/tomtom215/colloquy/internal/identity"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/metrics"
	"github.com/tomtom215/colloquy/internal/notify"
	"github.com/tomtom215/colloquy/internal/realtime"
	"github.com/tomtom215/colloquy/internal/reputation"
	"github.com/tomtom215/colloquy/internal/store"
	"github.com/tomtom215/colloquy/internal/supervisor"
	"github.com/tomtom215/colloquy/internal/supervisor/services"
	"github.com/tomtom215/colloquy/internal/vote"
)

// storeGCInterval is how often the Badger value-log GC loop runs.
const storeGCInterval = 10 * time.Minute

// authzCacheTTL bounds how long a Casbin decision is reused before
// being re-evaluated.
const authzCacheTTL = time.Minute

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Colloquy")
	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	st, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	// Context for graceful shutdown. Canceling it winds down the whole
	// supervisor tree.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := newBus(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event bus")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Events.CloseTimeout)
		defer closeCancel()
		if err := bus.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	verifier, err := identity.NewVerifier(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize identity verifier")
	}

	enforcer, err := authz.NewEnforcer(authzCacheTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	// Domain services. The hub doubles as the fan-out's live-push sink.
	hub := realtime.NewHub(cfg.Realtime, st)
	ledger := vote.NewLedger(st, bus, cfg.Policy.ReputationThresholds)
	coordinator := accept.NewCoordinator(st, bus)
	accumulator := reputation.NewAccumulator(st, cfg.Policy.VoteDeltas)
	fanout := notify.NewFanout(st, hub, cfg.Policy.NotificationExpiry)
	relay := realtime.NewRelay(hub)

	router, err := events.NewRouter(cfg.Events, bus, events.NewLogger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}
	subscribeHandlers(router, cfg, accumulator, fanout, relay)

	handler := api.NewHandler(st, ledger, coordinator, fanout, bus, hub, cfg.Policy)
	httpRouter := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)), verifier, enforcer)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpRouter.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// sutureslog needs slog; the adapter bridges to the zerolog global.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(st, storeGCInterval))
	}
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(services.NewEventRouterService(router))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Publishing before the router's subscriptions are live can drop
	// events on the in-process transport.
	select {
	case <-router.Running():
		logging.Info().Msg("Event router running, all handlers subscribed")
	case <-ctx.Done():
	}

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor finishes.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newBus selects the event transport. NATS requires the nats build tag;
// requesting it without the tag is a configuration error rather than a
// silent fallback to in-process delivery.
func newBus(cfg *config.Config) (*events.Bus, error) {
	if cfg.NATS.Enabled {
		bus, err := events.NewNATSBus(cfg.NATS, events.NewLogger())
		if err != nil {
			if errors.Is(err, events.ErrNATSNotEnabled) {
				logging.Error().Msg("NATS_ENABLED=true requires a binary built with -tags nats")
			}
			return nil, err
		}
		logging.Info().Str("url", cfg.NATS.URL).Msg("Event bus using NATS JetStream transport")
		return bus, nil
	}

	logging.Info().Msg("Event bus using in-process GoChannel transport")
	return events.NewGoChannelBus(events.NewLogger()), nil
}
