// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

package auth

import (
	"context"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for QVSLV is PostgreSQL (store_postgres.go).
// Tests use an in-memory implementation.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmailOrUsername returns an account matching the given email or
	// username (both already normalized by the caller). When two distinct
	// accounts match, the email match takes precedence.
	//
	// Returns [apperr.NotFound] if neither natural key is taken.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*User, error)

	// FindByUsernameCI returns the account whose username matches the given
	// value case-insensitively ("Neo" finds "neo" and "NEO").
	//
	// Returns [apperr.NotFound] if no such account exists.
	FindByUsernameCI(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account to the storage.
	//
	// Uniqueness of email and username is guaranteed atomically by the store:
	// a concurrent duplicate registration surfaces as [apperr.Conflict] naming
	// the colliding field, never as two admitted records.
	Create(ctx context.Context, user *User) error

	// Save persists changes to an existing account's mutable fields
	// (lastLogin, loginCount) and refreshes updatedAt.
	Save(ctx context.Context, user *User) error
}
