// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qvslv/qvslv-api/internal/auth"
	"github.com/qvslv/qvslv-api/internal/platform/apperr"
	"github.com/qvslv/qvslv-api/internal/platform/sec"
)

// ── Test Doubles ─────────────────────────────────────────────────────────────

// memoryRepo is an in-memory UserRepository with the same uniqueness and
// case-insensitivity semantics as the PostgreSQL implementation.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*auth.User)}
}

func (repo *memoryRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if user, ok := repo.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	// Email match takes precedence, mirroring the SQL ORDER BY.
	for _, user := range repo.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	for _, user := range repo.users {
		if strings.EqualFold(user.Username, username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepo) FindByUsernameCI(_ context.Context, username string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, user := range repo.users {
		if strings.EqualFold(user.Username, username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepo) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered",
				apperr.FieldError{Field: "email", Message: "Already in use"})
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return apperr.Conflict("Username is already taken",
				apperr.FieldError{Field: "username", Message: "Already in use"})
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *memoryRepo) Save(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user.UpdatedAt = time.Now()
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

// recordingAuditor captures audit events for assertions.
type recordingAuditor struct {
	mu     sync.Mutex
	events []auth.Event
}

func (auditor *recordingAuditor) Record(_ context.Context, event auth.Event) {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	auditor.events = append(auditor.events, event)
}

func (auditor *recordingAuditor) kinds() []string {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()

	kinds := make([]string, len(auditor.events))
	for i, event := range auditor.events {
		kinds[i] = event.Kind
	}
	return kinds
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

// Low bcrypt cost keeps the suite fast; the policy is configurable by design.
func testPolicy() auth.Policy {
	return auth.Policy{
		BcryptCost:       4,
		TokenTTL:         time.Hour,
		RegistrationRole: auth.RoleVerified,
	}
}

func newTestService(t *testing.T) (*auth.Service, *memoryRepo, *recordingAuditor, *sec.TokenService) {
	t.Helper()

	repo := newMemoryRepo()
	auditor := &recordingAuditor{}
	tokens := sec.NewTokenService("test-secret", "qvslv.org")
	service := auth.NewService(repo, tokens, auditor, testPolicy())

	return service, repo, auditor, tokens
}

func validRegistration() auth.RegisterInput {
	return auth.RegisterInput{
		FirstName:      "T",
		LastName:       "A",
		Username:       "neo",
		Email:          "neo@x.com",
		Password:       "matrix1",
		Specialization: "tech",
	}
}

// ── Registration ─────────────────────────────────────────────────────────────

func TestService_Register_Success(t *testing.T) {
	service, _, auditor, _ := newTestService(t)

	input := validRegistration()
	input.Email = "  Neo@X.Com " // normalization exercise
	input.Username = " neo "
	input.Motivation = "  find the truth  "

	user, err := service.Register(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "neo@x.com", user.Email, "email is lower-cased and trimmed")
	assert.Equal(t, "neo", user.Username, "username is trimmed")
	assert.Equal(t, "find the truth", user.Motivation)
	assert.Equal(t, auth.RoleVerified, user.Role)
	assert.Equal(t, auth.SpecializationTech, user.Specialization)
	assert.True(t, user.IsActive)
	assert.Zero(t, user.LoginCount)
	assert.Nil(t, user.LastLogin)
	assert.False(t, user.CreatedAt.IsZero())

	// The hash is a real bcrypt blob derived from the password.
	assert.NotEqual(t, "matrix1", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("matrix1", user.PasswordHash))

	assert.Equal(t, []string{auth.EventUserRegistered}, auditor.kinds())
}

func TestService_Register_ValidationGates(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(input *auth.RegisterInput)
		wantField string
	}{
		{"missing_first_name", func(i *auth.RegisterInput) { i.FirstName = " " }, "firstName"},
		{"missing_last_name", func(i *auth.RegisterInput) { i.LastName = "" }, "lastName"},
		{"missing_username", func(i *auth.RegisterInput) { i.Username = "" }, "username"},
		{"missing_email", func(i *auth.RegisterInput) { i.Email = "" }, "email"},
		{"missing_password", func(i *auth.RegisterInput) { i.Password = "" }, "password"},
		{"missing_specialization", func(i *auth.RegisterInput) { i.Specialization = "" }, "specialization"},
		{"username_too_short", func(i *auth.RegisterInput) { i.Username = "ab" }, "username"},
		{"username_too_long", func(i *auth.RegisterInput) { i.Username = strings.Repeat("a", 31) }, "username"},
		{"first_name_too_long", func(i *auth.RegisterInput) { i.FirstName = strings.Repeat("a", 51) }, "firstName"},
		{"motivation_too_long", func(i *auth.RegisterInput) { i.Motivation = strings.Repeat("a", 501) }, "motivation"},
		{"malformed_email", func(i *auth.RegisterInput) { i.Email = "not-an-email" }, "email"},
		{"weak_password", func(i *auth.RegisterInput) { i.Password = "12345" }, "password"},
		{"unknown_specialization", func(i *auth.RegisterInput) { i.Specialization = "astrology" }, "specialization"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := newTestService(t)

			input := validRegistration()
			tt.mutate(&input)

			_, err := service.Register(context.Background(), input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)

			require.NotEmpty(t, ae.Details)
			fields := make([]string, len(ae.Details))
			for i, detail := range ae.Details {
				fields[i] = detail.Field
			}
			assert.Contains(t, fields, tt.wantField)

			// A rejected registration never persists anything.
			assert.Empty(t, repo.users)
		})
	}
}

func TestService_Register_WeakPasswordNeverHashed(t *testing.T) {
	service, repo, auditor, _ := newTestService(t)

	input := validRegistration()
	input.Password = "12345"

	_, err := service.Register(context.Background(), input)
	require.Error(t, err)

	assert.Empty(t, repo.users, "rejected password must not reach persistence")
	assert.Empty(t, auditor.kinds())
}

func TestService_Register_DuplicateNaturalKeys(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{"same_username_different_email", "neo", "other@x.com", "username"},
		{"same_username_different_case", "NEO", "other@x.com", "username"},
		{"same_email_different_username", "morpheus", "neo@x.com", "email"},
		// Both keys colliding reports email first.
		{"both_keys_collide", "neo", "neo@x.com", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			input.Username = tt.username
			input.Email = tt.email

			_, err := service.Register(context.Background(), input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "CONFLICT", ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.wantField, ae.Details[0].Field)
		})
	}
}

func TestService_Register_StampsConfiguredRole(t *testing.T) {
	repo := newMemoryRepo()
	tokens := sec.NewTokenService("test-secret", "qvslv.org")

	policy := testPolicy()
	policy.RegistrationRole = auth.RoleAnonymous // legacy deployments used this
	service := auth.NewService(repo, tokens, nil, policy)

	user, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAnonymous, user.Role)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestService_Login_Success(t *testing.T) {
	service, _, auditor, tokens := newTestService(t)

	_, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	before := time.Now()
	session, err := service.Login(context.Background(), auth.LoginInput{
		Username: "NEO", // registered as "neo": lookup is case-insensitive
		Password: "matrix1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 1, session.User.LoginCount)
	require.NotNil(t, session.User.LastLogin)
	assert.False(t, session.User.LastLogin.Before(before))
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	// The issued token carries the account identity.
	claims, err := tokens.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "neo", claims.Username)
	assert.Equal(t, "VERIFIED", claims.Role)

	assert.Equal(t, []string{auth.EventUserRegistered, auth.EventLoginSucceeded}, auditor.kinds())

	// A second login increments the counter again.
	session, err = service.Login(context.Background(), auth.LoginInput{Username: "neo", Password: "matrix1"})
	require.NoError(t, err)
	assert.Equal(t, 2, session.User.LoginCount)
}

func TestService_Login_MissingFields(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), auth.LoginInput{Username: "", Password: ""})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

func TestService_Login_GenericFailures(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	// Unknown account and wrong password must be indistinguishable to the
	// caller: same code, same message, no enumeration leakage.
	_, unknownErr := service.Login(context.Background(), auth.LoginInput{Username: "trinity", Password: "matrix1"})
	_, mismatchErr := service.Login(context.Background(), auth.LoginInput{Username: "neo", Password: "wrong"})

	require.Error(t, unknownErr)
	require.Error(t, mismatchErr)

	unknown := apperr.As(unknownErr)
	mismatch := apperr.As(mismatchErr)
	require.NotNil(t, unknown)
	require.NotNil(t, mismatch)

	assert.Equal(t, "UNAUTHORIZED", unknown.Code)
	assert.Equal(t, unknown.Code, mismatch.Code)
	assert.Equal(t, unknown.Message, mismatch.Message)
}

func TestService_Login_DisabledAccount(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	// Deactivate the account directly in the store.
	stored := repo.users[user.ID]
	stored.IsActive = false

	// Correct credentials still yield the distinct authorization failure.
	_, err = service.Login(context.Background(), auth.LoginInput{Username: "neo", Password: "matrix1"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
	assert.NotEqual(t, "UNAUTHORIZED", ae.Code)

	// The failed attempt must not bump the login counter.
	assert.Zero(t, repo.users[user.ID].LoginCount)
}

// ── Session Verification ─────────────────────────────────────────────────────

func TestService_VerifySession(t *testing.T) {
	service, repo, _, tokens := newTestService(t)

	registered, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{Username: "neo", Password: "matrix1"})
	require.NoError(t, err)

	// Valid token resolves to the account without mutating it.
	user, err := service.VerifySession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "neo", user.Username)
	assert.Equal(t, 1, repo.users[registered.ID].LoginCount, "verification must not mutate store state")

	// Missing token.
	_, err = service.VerifySession(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Expired token.
	expired, err := tokens.GenerateAccessToken(registered.ID, "neo", "VERIFIED", -time.Minute)
	require.NoError(t, err)
	_, err = service.VerifySession(context.Background(), expired)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Token signed with a different secret.
	foreign, err := sec.NewTokenService("other-secret", "qvslv.org").
		GenerateAccessToken(registered.ID, "neo", "VERIFIED", time.Hour)
	require.NoError(t, err)
	_, err = service.VerifySession(context.Background(), foreign)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Valid token but deactivated account.
	repo.users[registered.ID].IsActive = false
	_, err = service.VerifySession(context.Background(), session.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Valid token but deleted account.
	repo.users[registered.ID].IsActive = true
	delete(repo.users, registered.ID)
	_, err = service.VerifySession(context.Background(), session.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// ── Logout ───────────────────────────────────────────────────────────────────

func TestService_Logout(t *testing.T) {
	service, _, auditor, tokens := newTestService(t)

	token, err := tokens.GenerateAccessToken("user-1", "neo", "VERIFIED", time.Hour)
	require.NoError(t, err)

	// With a valid token the event carries the identity.
	service.Logout(context.Background(), token)
	// Without (or with a garbage) token it is still recorded, anonymously.
	service.Logout(context.Background(), "")
	service.Logout(context.Background(), "garbage")

	require.Len(t, auditor.events, 3)
	assert.Equal(t, auth.EventLogout, auditor.events[0].Kind)
	assert.Equal(t, "user-1", auditor.events[0].UserID)
	assert.Empty(t, auditor.events[1].UserID)
	assert.Empty(t, auditor.events[2].UserID)
}
