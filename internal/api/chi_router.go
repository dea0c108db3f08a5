// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/colloquy/internal/authz"
	"github.com/tomtom215/colloquy/internal/identity"
	"github.com/tomtom215/colloquy/internal/middleware"
	"github.com/tomtom215/colloquy/internal/models"
)

// Router assembles the HTTP surface from handlers and middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	verifier      *identity.Verifier
	enforcer      *authz.Enforcer
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware, verifier *identity.Verifier, enforcer *authz.Enforcer) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		verifier:      verifier,
		enforcer:      enforcer,
	}
}

// SetupChi configures all HTTP routes using the chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(middleware.RequestID)        // X-Request-ID header plus logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.Compression)

	authenticate := identity.Authenticate(router.verifier, rejectUnauthenticated)
	require := router.require

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitors can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Prometheus scrape endpoint. Expected to be firewalled from the
	// public edge in deployment, so no auth here.
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Forum API
	// ========================
	// Everything below requires a verified identity.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(authenticate)
		r.Use(router.provision)

		// Realtime upgrade. Rate limited per IP, not per user: a
		// reconnect storm after a deploy is not abuse.
		r.With(router.chiMiddleware.RateLimit()).Get("/ws", router.handler.WebSocket)

		r.Route("/questions", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.With(require(authz.ObjectQuestions, authz.ActionCreate)).
				Post("/", router.handler.AskQuestion)
			r.With(require(authz.ObjectAnswers, authz.ActionCreate)).
				Post("/{id}/answers", router.handler.PostAnswer)

			r.Group(func(r chi.Router) {
				r.Use(require(authz.ObjectVotes, authz.ActionCast))
				r.Post("/{id}/vote", router.handler.CastVote(models.ItemQuestion))
				r.Delete("/{id}/vote", router.handler.RetractVote(models.ItemQuestion))
			})

			r.Group(func(r chi.Router) {
				r.Use(require(authz.ObjectAcceptance, authz.ActionDecide))
				r.Post("/{id}/accept", router.handler.AcceptAnswer)
				r.Delete("/{id}/accept", router.handler.UnacceptAnswer)
			})

			r.With(require(authz.ObjectFlags, authz.ActionCreate)).
				Post("/{id}/flag", router.handler.FlagContent(models.ItemQuestion))
		})

		r.Route("/answers", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.Group(func(r chi.Router) {
				r.Use(require(authz.ObjectVotes, authz.ActionCast))
				r.Post("/{id}/vote", router.handler.CastVote(models.ItemAnswer))
				r.Delete("/{id}/vote", router.handler.RetractVote(models.ItemAnswer))
			})

			r.With(require(authz.ObjectFlags, authz.ActionCreate)).
				Post("/{id}/flag", router.handler.FlagContent(models.ItemAnswer))
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.With(require(authz.ObjectComments, authz.ActionCreate)).
				Post("/", router.handler.PostComment)

			r.Group(func(r chi.Router) {
				r.Use(require(authz.ObjectVotes, authz.ActionCast))
				r.Post("/{id}/vote", router.handler.CastVote(models.ItemComment))
				r.Delete("/{id}/vote", router.handler.RetractVote(models.ItemComment))
			})

			r.With(require(authz.ObjectFlags, authz.ActionCreate)).
				Post("/{id}/flag", router.handler.FlagContent(models.ItemComment))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(require(authz.ObjectNotifications, authz.ActionManage))

			r.Get("/", router.handler.ListNotifications)
			r.Get("/unread-count", router.handler.UnreadNotificationCount)
			r.Post("/{id}/read", router.handler.MarkNotificationRead)
			r.Post("/read-all", router.handler.MarkAllNotificationsRead)
			r.Delete("/{id}", router.handler.DeleteNotification)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.With(require(authz.ObjectAnnouncements, authz.ActionCreate)).
				Post("/announcements", router.handler.Announce)
			r.With(require(authz.ObjectBans, authz.ActionCreate)).
				Post("/bans", router.handler.BanUser)
		})
	})

	return r
}

// provision makes sure the acting user's document exists before any
// handler reads it. The identity provider owns credentials; the forum
// owns the reputation ledger, and the ledger's owner document is
// created here with a zero score on the user's first authenticated
// request. Thresholds and reputation deltas then always find their
// subject.
func (router *Router) provision(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := identity.FromContext(r.Context())
		if !ok {
			// The authenticate middleware runs first; without a
			// principal this route was wired wrong.
			WriteUnauthorized(w, r, "Authentication required")
			return
		}

		if _, err := router.handler.store.EnsureUser(r.Context(), p.ID, p.Username, p.Role); err != nil {
			NewResponseWriter(w, r).StoreError(err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// require wraps the authz middleware with the envelope error writer.
func (router *Router) require(object, action string) func(http.Handler) http.Handler {
	return router.enforcer.Require(object, action, rejectForbidden)
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrExpiredCredentials):
		WriteUnauthorized(w, r, "Token has expired")
	case errors.Is(err, identity.ErrNoCredentials):
		WriteUnauthorized(w, r, "Authentication required")
	default:
		WriteUnauthorized(w, r, "Invalid credentials")
	}
}

func rejectForbidden(w http.ResponseWriter, r *http.Request, status int) {
	if status == http.StatusInternalServerError {
		WriteError(w, r, status, ErrCodeInternalError, "Authorization check failed")
		return
	}
	WriteForbidden(w, r, "You do not have permission to do that")
}
