// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

// PostgreSQL implementation of the user storage layer.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] types to avoid leaking storage
// implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qvslv/qvslv-api/internal/platform/apperr"
	"github.com/qvslv/qvslv-api/internal/platform/dberr"
)

// userColumns is the canonical scan list shared by every SELECT below.
const userColumns = `id, firstname, lastname, username, email, passwordhash,
		specialization, motivation, role, isactive, lastlogin, logincount, createdat, updatedat`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record into the users.account table.
//
// # Atomicity
//
// Uniqueness of email and lower(username) is enforced by unique indexes, so a
// concurrent check-then-insert race cannot admit two records with the same
// natural key — the losing insert surfaces as [apperr.Conflict] here.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, firstname, lastname, username, email, passwordhash,
			specialization, motivation, role, isactive, lastlogin, logincount, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Specialization,
		user.Motivation,
		user.Role,
		user.IsActive,
		user.LastLogin,
		user.LoginCount,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if field := conflictField(err); field != "" {
			return conflictError(field)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmailOrUsername retrieves an account matching either natural key.
//
// When distinct accounts hold the email and the username, the email match is
// returned first so conflict reporting stays deterministic.
func (repository *PostgresUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 OR lower(username) = lower($2)
		ORDER BY (email = $1) DESC
		LIMIT 1`

	user, err := repository.scanOne(ctx, query, email, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_or_username_failed: %w", err)
	}

	return user, nil
}

// FindByUsernameCI retrieves a user record by username, case-insensitively.
//
// The lower(username) comparison is backed by the account_username_lower_key
// index, so this stays an index lookup rather than a sequential scan.
func (repository *PostgresUserRepository) FindByUsernameCI(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE lower(username) = lower($1)`

	user, err := repository.scanOne(ctx, query, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := repository.scanOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// Save persists login bookkeeping (lastLogin, loginCount) and refreshes updatedAt.
func (repository *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET lastlogin = $2, logincount = $3, isactive = $4, updatedat = $5
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.LastLogin,
		user.LoginCount,
		user.IsActive,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_save_failed: %w", err)
	}

	return nil
}

// scanOne runs a single-row query and scans it into a User.
func (repository *PostgresUserRepository) scanOne(ctx context.Context, query string, args ...any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Specialization,
		&user.Motivation,
		&user.Role,
		&user.IsActive,
		&user.LastLogin,
		&user.LoginCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// conflictField maps a unique-violation constraint name to the colliding
// public field name, or "" when err is not a unique violation.
func conflictField(err error) string {
	constraint := dberr.UniqueViolationConstraint(err)
	switch {
	case constraint == "":
		return ""
	case strings.Contains(constraint, "email"):
		return "email"
	case strings.Contains(constraint, "username"):
		return "username"
	default:
		return "username"
	}
}

// conflictError builds the client-facing duplicate-key error for a field.
func conflictError(field string) error {
	message := "Email is already registered"
	if field == "username" {
		message = "Username is already taken"
	}
	return apperr.Conflict(message, apperr.FieldError{Field: field, Message: "Already in use"})
}
