// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qvslv/qvslv-api/internal/platform/sec"
)

// Low cost keeps the test suite fast; the round-trip property is cost-independent.
const testCost = 4

/*
TestHashPassword_RoundTrip verifies that hash then verify succeeds for the
original password and fails for any other password.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("matrix1", testCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	// The salted hash never equals the plain text.
	assert.NotEqual(t, "matrix1", hash)

	assert.True(t, sec.CheckPasswordHash("matrix1", hash))
	assert.False(t, sec.CheckPasswordHash("matrix2", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestHashPassword_SaltUniqueness verifies that hashing the same password twice
produces different blobs (per-hash salt).
*/
func TestHashPassword_SaltUniqueness(t *testing.T) {
	first, err := sec.HashPassword("matrix1", testCost)
	require.NoError(t, err)

	second, err := sec.HashPassword("matrix1", testCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestCheckPasswordHash_MalformedBlob verifies that a corrupted hash yields
false instead of panicking or erroring out.
*/
func TestCheckPasswordHash_MalformedBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"empty", ""},
		{"garbage", "not-a-bcrypt-hash"},
		{"truncated", "$2a$12$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sec.CheckPasswordHash("matrix1", tt.blob))
		})
	}
}
