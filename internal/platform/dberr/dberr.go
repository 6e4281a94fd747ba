// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qvslv/qvslv-api/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// UniqueViolationConstraint returns the name of the violated unique constraint
// when err is a PostgreSQL unique-violation (SQLSTATE 23505), or "" otherwise.
//
// The constraint name lets the caller report WHICH natural key collided
// (email vs username) without parsing the error message text.
func UniqueViolationConstraint(err error) string {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
		return pgError.ConstraintName
	}
	return ""
}
