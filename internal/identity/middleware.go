// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/colloquy/internal/logging"
)

type contextKey string

const principalKey contextKey = "principal"

// tokenCookie is checked when no Authorization header is present, so
// browser websocket upgrades can authenticate without custom headers.
const tokenCookie = "token"

// ContextWithPrincipal returns a context carrying the principal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the authenticated principal, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// Authenticate verifies the request's bearer token and stores the
// principal in the request context. Requests without valid credentials
// are rejected; the onReject callback writes the 401 response in the
// API layer's envelope.
func Authenticate(v *Verifier, onReject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				onReject(w, r, ErrNoCredentials)
				return
			}

			principal, err := v.Parse(tokenString)
			if err != nil {
				logging.Debug().
					Err(err).
					Str("path", r.URL.Path).
					Msg("rejected credentials")
				onReject(w, r, err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the bearer token from the Authorization header,
// falling back to the token cookie.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
