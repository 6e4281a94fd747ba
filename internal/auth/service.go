// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

// Credential service: orchestrates validation, hashing, uniqueness and token
// issuance for registration, login and session verification.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qvslv/qvslv-api/internal/platform/apperr"
	"github.com/qvslv/qvslv-api/internal/platform/constants"
	"github.com/qvslv/qvslv-api/internal/platform/sec"
	"github.com/qvslv/qvslv-api/internal/platform/validate"
	"github.com/qvslv/qvslv-api/pkg/uuidv7"
)

// TokenProvider defines the contract for minting and verifying session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed session token for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)

	// VerifyToken checks signature and expiry, returning the embedded claims.
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Policy bundles the security tunables the historical deployments disagreed
// on. They are injected from configuration rather than hardcoded.
type Policy struct {
	// BcryptCost is the bcrypt work factor for new password hashes.
	BcryptCost int

	// TokenTTL is the validity window of issued session tokens.
	TokenTTL time.Duration

	// RegistrationRole is stamped onto every new account, overriding any
	// role value a caller might try to supply.
	RegistrationRole Role
}

// DefaultPolicy returns the current production defaults (cost 12, 24h, VERIFIED).
func DefaultPolicy() Policy {
	return Policy{
		BcryptCost:       constants.DefaultBcryptCost,
		TokenTTL:         constants.DefaultTokenTTL,
		RegistrationRole: RoleVerified,
	}
}

// Service implements the credential and session use cases.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	auditor        Auditor
	policy         Policy
}

// NewService constructs a new [Service] with its dependencies.
//
// A nil auditor disables the audit trail (events are dropped).
func NewService(userRepo UserRepository, tokenProv TokenProvider, auditor Auditor, policy Policy) *Service {
	if auditor == nil {
		auditor = NopAuditor{}
	}
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		auditor:        auditor,
		policy:         policy,
	}
}

// RegisterInput holds the data required to enroll a new member.
//
// Note the absence of a Role field: clearance is never client-settable, so a
// role value in the request payload simply has nowhere to land.
type RegisterInput struct {
	FirstName      string
	LastName       string
	Username       string
	Email          string
	Password       string
	Specialization string
	Motivation     string
}

// Register validates, normalizes, hashes, and persists a brand new account.
//
// # Flow
//
//	Received -> Validated -> Deduplicated -> Hashed -> Persisted -> Completed
//
// Each gate short-circuits with a client-safe error; the first failing gate
// wins so callers always see one kind of failure at a time.
//
// # Business Rules
//   - Emails and usernames must be unique (email reported first on collision).
//   - Passwords shorter than the minimum never reach the hasher.
//   - The stored role is always [Policy.RegistrationRole].
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Normalization ──────────────────────────────────────────────────

	// Passwords are deliberately left untouched: trimming them would silently
	// change the credential.
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	specialization := strings.TrimSpace(input.Specialization)
	motivation := strings.TrimSpace(input.Motivation)

	// ── 2. Validation Gates ───────────────────────────────────────────────

	if err := validateRegistration(firstName, lastName, username, email, input.Password, specialization, motivation); err != nil {
		return nil, err
	}

	// ── 3. Uniqueness Check ───────────────────────────────────────────────

	// The unique indexes remain the authoritative guard; this pre-check only
	// exists to return a precise field in the common, non-racy case.
	existing, err := service.userRepository.FindByEmailOrUsername(ctx, email, username)
	if err == nil {
		// Email takes precedence when both natural keys collide.
		if existing.Email == email {
			return nil, conflictError("email")
		}
		return nil, conflictError("username")
	}
	if apperr.As(err) == nil || apperr.As(err).Code != "NOT_FOUND" {
		return nil, fmt.Errorf("auth_service_dedup_failed: %w", err)
	}

	// ── 4. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. The work factor comes from
	// configuration so historical deployments (cost 10) stay reproducible.
	hashedPassword, err := sec.HashPassword(input.Password, service.policy.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 5. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:             uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		FirstName:      firstName,
		LastName:       lastName,
		Username:       username,
		Email:          email,
		PasswordHash:   hashedPassword,
		Specialization: Specialization(specialization),
		Motivation:     motivation,
		Role:           service.policy.RegistrationRole, // Rule: never client-settable.
		IsActive:       true,
	}

	// ── 6. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(ctx, user); err != nil {
		// A concurrent duplicate surfaces here as apperr.Conflict.
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.auditor.Record(ctx, Event{Kind: EventUserRegistered, UserID: user.ID, Username: user.Username})

	return user, nil
}

// validateRegistration runs the registration gates in contract order:
// required fields, then length bounds, then email pattern, then password
// policy, then specialization membership. Each gate is a distinguishable
// error kind; within a gate all failing fields are reported together.
func validateRegistration(firstName, lastName, username, email, password, specialization, motivation string) error {
	// Gate 1: presence.
	required := &validate.Validator{}
	required.
		Required("firstName", firstName).
		Required("lastName", lastName).
		Required("username", username).
		Required("email", email).
		Required("password", password).
		Required("specialization", specialization)
	if err := required.Err(); err != nil {
		return err
	}

	// Gate 2: length bounds.
	lengths := &validate.Validator{}
	lengths.
		MaxLen("firstName", firstName, constants.MaxNameLength).
		MaxLen("lastName", lastName, constants.MaxNameLength).
		MinLen("username", username, constants.MinUsernameLength).
		MaxLen("username", username, constants.MaxUsernameLength).
		MaxLen("motivation", motivation, constants.MaxMotivationLength)
	if err := lengths.Err(); err != nil {
		return err
	}

	// Gate 3: email shape.
	if !validate.IsEmail(email) {
		return validate.RequiredError("email", "Must be a valid email address")
	}

	// Gate 4: password policy. Runs before any hashing.
	if len(password) < constants.MinPasswordLength {
		return validate.RequiredError("password",
			fmt.Sprintf("Must be at least %d characters", constants.MinPasswordLength))
	}

	// Gate 5: specialization membership.
	enum := &validate.Validator{}
	enum.OneOf("specialization", specialization, SpecializationValues()...)
	return enum.Err()
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginSession represents a successfully established session.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Login validates credentials and issues a session token.
//
// # Flow
//  1. Require username and password.
//  2. Case-insensitive username lookup ("NEO" logs into "neo").
//  3. Disabled accounts are rejected with a distinct 403 before password
//     verification — correct credentials do not reactivate an account.
//  4. A miss and a bcrypt mismatch return the same generic 401 to prevent
//     account enumeration; the audit trail keeps the distinction.
//  5. On success: bump lastLogin/loginCount, persist, mint the token.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	// ── 1. Presence Check ─────────────────────────────────────────────────

	username := strings.TrimSpace(input.Username)
	presence := &validate.Validator{}
	presence.Required("username", username).Required("password", input.Password)
	if err := presence.Err(); err != nil {
		return nil, err
	}

	// ── 2. Account Lookup ─────────────────────────────────────────────────

	user, err := service.userRepository.FindByUsernameCI(ctx, username)
	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.Code == "NOT_FOUND" {
			// Generic message: never reveal whether the account exists.
			service.auditor.Record(ctx, Event{Kind: EventLoginFailed, Username: username})
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// ── 3. Account Status ─────────────────────────────────────────────────

	if !user.IsActive {
		service.auditor.Record(ctx, Event{Kind: EventLoginDisabled, UserID: user.ID, Username: user.Username})
		return nil, apperr.Forbidden("Account disabled")
	}

	// ── 4. Credential Verification ────────────────────────────────────────

	// bcrypt compares in constant time; same generic error as a lookup miss.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.auditor.Record(ctx, Event{Kind: EventLoginFailed, UserID: user.ID, Username: user.Username})
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// ── 5. Login Bookkeeping ──────────────────────────────────────────────

	// Concurrent logins by the same user may race on loginCount; losing an
	// increment is acceptable, exact counting is not a contract.
	now := time.Now()
	user.LastLogin = &now
	user.LoginCount++

	if err := service.userRepository.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_login_save_failed: %w", err)
	}

	// ── 6. Token Issuance ─────────────────────────────────────────────────

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), service.policy.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.auditor.Record(ctx, Event{Kind: EventLoginSucceeded, UserID: user.ID, Username: user.Username})

	return &LoginSession{
		Token:     token,
		ExpiresAt: now.Add(service.policy.TokenTTL),
		User:      user,
	}, nil
}

// VerifySession resolves a bearer token to its active account.
//
// # Contract
//
// Rejects with 401 when the token is missing, fails signature/expiry checks,
// or references a missing or deactivated account. This operation never
// mutates store state.
func (service *Service) VerifySession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	claims, err := service.tokenProvider.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return service.CurrentUser(ctx, claims.UserID)
}

// CurrentUser loads the account behind verified token claims.
//
// A missing or deactivated account yields the same generic 401 as a bad
// token — session verification never confirms account existence.
func (service *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.Code == "NOT_FOUND" {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, fmt.Errorf("auth_service_current_user_failed: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// Logout acknowledges a session termination.
//
// Tokens are stateless and there is no revocation list, so the only work is
// the audit record. Logout is idempotent and never fails.
func (service *Service) Logout(ctx context.Context, token string) {
	event := Event{Kind: EventLogout}
	if token != "" {
		if claims, err := service.tokenProvider.VerifyToken(token); err == nil {
			event.UserID = claims.UserID
			event.Username = claims.Username
		}
	}
	service.auditor.Record(ctx, event)
}
