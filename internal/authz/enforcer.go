// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package authz

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/colloquy/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions used by the forum's policy.
const (
	ObjectQuestions     = "questions"
	ObjectAnswers       = "answers"
	ObjectComments      = "comments"
	ObjectVotes         = "votes"
	ObjectAcceptance    = "acceptance"
	ObjectNotifications = "notifications"
	ObjectAnnouncements = "announcements"
	ObjectFlags         = "flags"
	ObjectBans          = "bans"

	ActionCreate   = "create"
	ActionCast     = "cast"
	ActionDecide   = "decide"
	ActionManage   = "manage"
	ActionOverride = "override"
)

// Enforcer answers role-based permission checks. Policy is compiled in;
// the forum's capability model changes with the binary, not at runtime.
// Ownership rules (only the asker accepts, voters cannot vote on their
// own posts) live in the domain packages, not here.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer builds the enforcer from the embedded model and policy.
func NewEnforcer(cacheTTL time.Duration) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{
		enforcer: enforcer,
		cache:    newDecisionCache(cacheTTL),
	}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// Allowed reports whether the role may perform the action on the
// object. Unknown or empty roles fall back to the base user role so a
// token minted before a role field existed keeps working.
func (e *Enforcer) Allowed(role, object, action string) (bool, error) {
	if role == "" {
		role = models.RoleUser
	}

	if allowed, ok := e.cache.get(role, object, action); ok {
		return allowed, nil
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	e.cache.set(role, object, action, allowed)
	return allowed, nil
}

// Close stops the cache's cleanup goroutine.
func (e *Enforcer) Close() {
	e.cache.stop()
}
