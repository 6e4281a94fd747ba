// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

package auth

import (
	"context"
	"time"
)

// Event kinds recorded on the authentication audit trail.
const (
	EventUserRegistered = "user_registered"
	EventLoginSucceeded = "login_succeeded"
	EventLoginFailed    = "login_failed"
	EventLoginDisabled  = "login_disabled_account"
	EventLogout         = "logout"
)

// Event is a single entry on the authentication audit trail.
//
// # Security
//
// Events may carry more detail than client-facing errors: a failed login
// records the attempted username even though the HTTP response stays generic.
// The trail is internal observability data, never exposed via the API.
type Event struct {
	Kind     string    `json:"kind"`
	UserID   string    `json:"userId,omitempty"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

// Auditor records authentication events.
//
// # Contract
//
// Record is best-effort and must never block or fail a credential operation:
// implementations log their own errors and return normally.
type Auditor interface {
	Record(ctx context.Context, event Event)
}

// NopAuditor drops every event. Used when no Redis backend is configured.
type NopAuditor struct{}

// Record implements [Auditor] by discarding the event.
func (NopAuditor) Record(context.Context, Event) {}
