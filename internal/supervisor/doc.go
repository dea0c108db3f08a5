// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

/*
Package supervisor provides process supervision for Colloquy using suture v4.

The supervisor tree organizes the long-running services into three layers
for failure isolation:

	RootSupervisor ("colloquy")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── HubService
	│   └── EventRouterService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that a crash in the event router does not tear down
live websocket sessions, and that neither takes the HTTP API with it.
Crashed services are restarted with exponential backoff; restart storms are
bounded by a failure threshold with decay.

Supervision events are logged through sutureslog, bridged to the process's
zerolog logger via logging.NewSlogLogger.
*/
package supervisor
