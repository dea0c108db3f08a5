// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/colloquy/internal/config"
)

// NewNATSBus creates a NATS JetStream-backed bus for multi-process
// fan-out. With EmbeddedServer set an in-process NATS server is started
// first and the bus connects to it, so single-binary deployments need no
// external broker.
func NewNATSBus(cfg config.NATSConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = NewLogger()
	}

	url := cfg.URL
	var embedded *natsserver.Server
	if cfg.EmbeddedServer {
		srv, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		embedded = srv
		url = srv.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true, // message UUID is the event ID; broker dedups redeliveries
		},
	}, logger)
	if err != nil {
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		pub.Close()
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	bus := &Bus{publisher: pub, subscriber: sub, logger: logger}
	if embedded != nil {
		srv := embedded
		bus.closers = append(bus.closers, func(ctx context.Context) error {
			srv.Shutdown()
			done := make(chan struct{})
			go func() {
				srv.WaitForShutdown()
				close(done)
			}()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-done:
				return nil
			}
		})
	}
	return bus, nil
}

// startEmbeddedServer starts an in-process NATS server with JetStream.
func startEmbeddedServer(cfg config.NATSConfig) (*natsserver.Server, error) {
	opts := &natsserver.Options{
		ServerName: "colloquy-events",
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		NoLog:      false,
		MaxPayload: 1024 * 1024, // forum events are small; 1MB is generous
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	srv.ConfigureLogger()

	go srv.Start()
	if !srv.ReadyForConnections(30 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}
	return srv, nil
}

func shutdownEmbedded(srv *natsserver.Server) {
	if srv != nil {
		srv.Shutdown()
	}
}
