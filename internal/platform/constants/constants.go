// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

/*
Package constants provides centralized, immutable values for the QVSLV identity service.

It defines default timeouts, security tunables, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: bcrypt cost, token lifetime, JWT issuer and fallback secret.
  - Field Policy: length bounds applied during registration validation.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "qvslv-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Security Tunables
//
// The historical deployments of QVSLV disagreed on these values (bcrypt cost
// 10 vs 12, token lifetime 24h vs 7d). They are therefore surfaced as named
// configuration values; the constants below are only the defaults.

const (
	// DefaultBcryptCost is the bcrypt work factor applied to new password hashes.
	DefaultBcryptCost = 12

	// DefaultTokenTTL is the validity window of an issued session token.
	DefaultTokenTTL = 24 * time.Hour

	// AuthIssuer is the standard 'iss' claim in session JWTs.
	AuthIssuer = "qvslv.org"

	// FallbackJWTSecret is used when JWT_SECRET is not provided.
	//
	// # Security
	//
	// This is insecure by definition and exists only so the service can boot
	// in local development. Startup logs a loud warning whenever it is active.
	FallbackJWTSecret = "qvslv-dev-secret-change-me"
)

// # Registration Field Policy

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MinUsernameLength and MaxUsernameLength bound the username field.
	MinUsernameLength = 3
	MaxUsernameLength = 30

	// MaxNameLength bounds firstName and lastName.
	MaxNameLength = 50

	// MaxMotivationLength bounds the optional motivation statement.
	MaxMotivationLength = 500
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Redis Keys (Audit Taxonomy)

const (
	// RedisKeyAuthEvents is the capped list holding recent authentication events.
	RedisKeyAuthEvents = "auth:events"

	// AuthEventsMaxLen caps the audit list so it never grows unbounded.
	AuthEventsMaxLen = 10000
)
