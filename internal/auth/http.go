// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

// HTTP delivery layer for the credential use cases.
//
// # Architecture
//
// The handler acts as the "gatekeeper" to the system. It is responsible for:
//   - JSON request parsing.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// It contains NO business logic or database queries: validation ordering,
// uniqueness and hashing all live in the [Service].

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qvslv/qvslv-api/internal/platform/constants"
	"github.com/qvslv/qvslv-api/internal/platform/middleware"
	requestutil "github.com/qvslv/qvslv-api/internal/platform/request"
	"github.com/qvslv/qvslv-api/internal/platform/respond"
)

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
	verifier    middleware.TokenVerifier
}

// NewHandler constructs a new [Handler] with its dependencies.
//
// The verifier guards the bearer-protected routes; the service re-checks the
// account behind the claims on every request.
func NewHandler(service *Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{authService: service, verifier: verifier}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Authenticates and returns a session token.
//   - POST /logout   : Acknowledges session termination (bearer optional).
//   - GET  /verify   : Resolves a bearer token to its account.
//   - GET  /profile  : Returns the full profile of the bearer's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Bearer-protected routes.
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(handler.verifier))
		protected.Use(middleware.RequireAuth)
		protected.Get("/verify", handler.verify)
		protected.Get("/profile", handler.profile)
	})

	return router
}

// registerRequest represents the JSON payload expected for account creation.
//
// There is intentionally no role field: any "role" key a client sends is
// discarded during decoding, so clearance can never be self-assigned.
type registerRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
	Motivation     string `json:"motivation"`
}

// register handles POST /api/auth/register requests.
//
// # Returns
//   - HTTP 201 Created with the public user view.
//   - HTTP 400 Bad Request on validation failure or duplicate email/username.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Username:       input.Username,
		Email:          input.Email,
		Password:       input.Password,
		Specialization: input.Specialization,
		Motivation:     input.Motivation,
	})

	// Service owns the gate ordering (presence, lengths, email, password,
	// specialization, uniqueness); the respond helper maps the error kind
	// to its HTTP status.
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/auth/login requests.
//
// # Returns
//   - HTTP 200 OK with {token, expiresAt, user}.
//   - HTTP 400 Bad Request when username/password are missing.
//   - HTTP 401 Unauthorized for bad credentials (intentionally generic).
//   - HTTP 403 Forbidden for deactivated accounts.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// verify handles GET /api/auth/verify requests.
//
// The Authenticate middleware has already validated the bearer signature and
// expiry; the service re-checks that the account still exists and is active.
// This endpoint never mutates store state.
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	user, err := handler.authService.CurrentUser(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// profile handles GET /api/auth/profile requests.
//
// Same resolution as verify; the public view includes email, motivation and
// createdAt (and never the password hash).
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	user, err := handler.authService.CurrentUser(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// logout handles POST /api/auth/logout requests.
//
// Session tokens are stateless, so there is nothing to revoke server-side.
// The bearer is optional and the endpoint always acknowledges with 200.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.authService.Logout(request.Context(), requestutil.BearerToken(request))

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Logged out",
	})
}
