// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
	"github.com/taibuivan/gatehouse/pkg/ident"
)

// # Definitions & Constructors

// RateLimiter defines the per-action attempt limiter used by the handlers.
type RateLimiter interface {
	Check(request *http.Request, limit int, action string) error
}

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService   *Service
	limiter       RateLimiter
	secureCookies bool
}

// NewHandler constructs a new [Handler]. secureCookies sets the Secure flag
// on every cookie it writes.
func NewHandler(service *Service, limiter RateLimiter, secureCookies bool) *Handler {
	return &Handler{
		authService:   service,
		limiter:       limiter,
		secureCookies: secureCookies,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates the account and signs it in.
//   - POST /signup   : Alias of /register.
//   - POST /login    : Authenticates and sets the credential cookie.
//   - POST /logout   : Clears every credential cookie.
//   - GET  /me       : Returns the identity in the credential cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/signup", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/me", handler.me)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is returned by register and login. The credential itself
// travels only in the HTTP-only cookie.
type sessionResponse struct {
	User      Profile   `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Register handles the creation of the account.

POST /api/auth/register
POST /api/auth/signup

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 201: sessionResponse, credential cookie set
  - 400: Bad input or validation failure
  - 409: An account already exists
  - 429: Too many registration attempts
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := handler.limiter.Check(request, constants.RegisterAttemptsPerWindow, constants.ActionRegister); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, MinUsernameLength).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Custom(FieldUsername, ident.HasControl(input.Username), "Must not contain control characters").
		Custom(FieldUsername, ident.HasMarkup(input.Username), "Must not contain <, >, \" or `").
		Required(FieldPassword, input.Password).
		MaxLen(FieldPassword, input.Password, MaxPasswordLength).
		StrongPassword(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sec.SetCredentialCookie(writer, session.Token, handler.authService.CredentialLifetime(), handler.secureCookies)
	respond.Created(writer, sessionResponse{User: session.User, ExpiresAt: session.Claims.ExpiresAt})
}

/*
Login authenticates the account and establishes a session.

POST /api/auth/login

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 200: sessionResponse, credential cookie set
  - 401: Invalid credentials
  - 429: Too many login attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := handler.limiter.Check(request, constants.LoginAttemptsPerWindow, constants.ActionLogin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sec.SetCredentialCookie(writer, session.Token, handler.authService.CredentialLifetime(), handler.secureCookies)
	respond.OK(writer, sessionResponse{User: session.User, ExpiresAt: session.Claims.ExpiresAt})
}

/*
Logout tears the session down on the client.

POST /api/auth/logout

Description: Credentials are stateless, so logging out expires every cookie
name that has ever carried one and forbids caching of the response.

Response:
  - 200: {"message": "Logged out successfully"}
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	header := writer.Header()
	header.Set(constants.HeaderCacheControl, constants.CacheControlNoStore)
	header.Set(constants.HeaderPragma, "no-cache")
	header.Set(constants.HeaderExpires, "0")

	sec.ExpireCredentialCookies(writer, handler.secureCookies)
	respond.OK(writer, map[string]string{constants.FieldMessage: "Logged out successfully"})
}

/*
Me returns the identity carried by the credential cookie.

GET /api/auth/me

Response:
  - 200: {"user": Profile}
  - 401: No cookie, or the credential is invalid or expired
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := handler.authService.Current(sec.CredentialFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]Profile{FieldUser: ProfileFromClaims(claims)})
}
