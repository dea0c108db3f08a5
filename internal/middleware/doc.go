// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

// Package middleware provides the HTTP middleware shared by every API
// route: request ID propagation into the logging context, Prometheus
// instrumentation keyed by chi route pattern, and gzip compression.
//
// Authentication and authorization middleware live in the identity and
// authz packages; rate limiting and CORS come from the chi ecosystem
// and are configured in the api package.
package middleware
