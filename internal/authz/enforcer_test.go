// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package authz

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/colloquy/internal/identity"
	"github.com/tomtom215/colloquy/internal/logging"
	"github.com/tomtom215/colloquy/internal/models"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
	os.Exit(m.Run())
}

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(time.Minute)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_Policy(t *testing.T) {
	e := newTestEnforcer(t)

	cases := []struct {
		name    string
		role    string
		object  string
		action  string
		allowed bool
	}{
		{"user casts votes", models.RoleUser, ObjectVotes, ActionCast, true},
		{"user creates questions", models.RoleUser, ObjectQuestions, ActionCreate, true},
		{"user creates answers", models.RoleUser, ObjectAnswers, ActionCreate, true},
		{"user creates comments", models.RoleUser, ObjectComments, ActionCreate, true},
		{"user decides acceptance", models.RoleUser, ObjectAcceptance, ActionDecide, true},
		{"user manages notifications", models.RoleUser, ObjectNotifications, ActionManage, true},
		{"user flags content", models.RoleUser, ObjectFlags, ActionCreate, true},
		{"user cannot override acceptance", models.RoleUser, ObjectAcceptance, ActionOverride, false},
		{"user cannot send announcements", models.RoleUser, ObjectAnnouncements, ActionCreate, false},
		{"user cannot ban", models.RoleUser, ObjectBans, ActionCreate, false},
		{"admin inherits vote cast", models.RoleAdmin, ObjectVotes, ActionCast, true},
		{"admin overrides acceptance", models.RoleAdmin, ObjectAcceptance, ActionOverride, true},
		{"admin sends announcements", models.RoleAdmin, ObjectAnnouncements, ActionCreate, true},
		{"admin bans users", models.RoleAdmin, ObjectBans, ActionCreate, true},
		{"unknown role denied", "visitor", ObjectVotes, ActionCast, false},
		{"unknown object denied", models.RoleAdmin, "backups", ActionCreate, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := e.Allowed(tc.role, tc.object, tc.action)
			if err != nil {
				t.Fatalf("Allowed: %v", err)
			}
			if allowed != tc.allowed {
				t.Errorf("expected %v for %s/%s/%s, got %v", tc.allowed, tc.role, tc.object, tc.action, allowed)
			}
		})
	}
}

func TestEnforcer_EmptyRoleFallsBackToUser(t *testing.T) {
	e := newTestEnforcer(t)

	allowed, err := e.Allowed("", ObjectVotes, ActionCast)
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if !allowed {
		t.Error("empty role should receive base user permissions")
	}

	allowed, err = e.Allowed("", ObjectAnnouncements, ActionCreate)
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if allowed {
		t.Error("empty role must not receive admin permissions")
	}
}

func TestEnforcer_CachedDecisionStable(t *testing.T) {
	e := newTestEnforcer(t)

	for i := 0; i < 3; i++ {
		allowed, err := e.Allowed(models.RoleUser, ObjectVotes, ActionCast)
		if err != nil {
			t.Fatalf("Allowed: %v", err)
		}
		if !allowed {
			t.Fatalf("decision changed on call %d", i+1)
		}
	}
}

func TestRequire_Middleware(t *testing.T) {
	e := newTestEnforcer(t)

	var rejectedStatus int
	reject := func(w http.ResponseWriter, r *http.Request, status int) {
		rejectedStatus = status
		w.WriteHeader(status)
	}

	called := false
	handler := e.Require(ObjectAnnouncements, ActionCreate, reject)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("admin allowed", func(t *testing.T) {
		called, rejectedStatus = false, 0
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		ctx := identity.ContextWithPrincipal(r.Context(), &identity.Principal{ID: "u-1", Role: models.RoleAdmin})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r.WithContext(ctx))

		if !called || w.Code != http.StatusOK {
			t.Errorf("expected handler call with 200, got called=%v code=%d", called, w.Code)
		}
	})

	t.Run("user forbidden", func(t *testing.T) {
		called, rejectedStatus = false, 0
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		ctx := identity.ContextWithPrincipal(r.Context(), &identity.Principal{ID: "u-2", Role: models.RoleUser})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r.WithContext(ctx))

		if called {
			t.Error("handler must not run for forbidden request")
		}
		if rejectedStatus != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rejectedStatus)
		}
	})

	t.Run("unauthenticated forbidden", func(t *testing.T) {
		called, rejectedStatus = false, 0
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		if called {
			t.Error("handler must not run without a principal")
		}
		if rejectedStatus != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rejectedStatus)
		}
	})
}
