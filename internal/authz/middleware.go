// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package authz

import (
	"net/http"

	"github.com/tomtom215/colloquy/internal/identity"
	"github.com/tomtom215/colloquy/internal/logging"
)

// RejectFunc writes the forbidden/error response in the API layer's
// envelope.
type RejectFunc func(w http.ResponseWriter, r *http.Request, status int)

// Require returns middleware enforcing that the authenticated
// principal's role permits the action on the object. It must run after
// authentication.
func (e *Enforcer) Require(object, action string, reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := identity.FromContext(r.Context())
			if !ok {
				reject(w, r, http.StatusForbidden)
				return
			}

			allowed, err := e.Allowed(principal.Role, object, action)
			if err != nil {
				logging.Err(err).
					Str("role", principal.Role).
					Str("object", object).
					Str("action", action).
					Msg("authorization check failed")
				reject(w, r, http.StatusInternalServerError)
				return
			}
			if !allowed {
				reject(w, r, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
