// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package replay

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/access"
	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
)

// DefaultProtectedPrefixes are the routes whose state-changing requests
// must carry a replay token.
func DefaultProtectedPrefixes() []string {
	return []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/signup",
		"/api/auth/logout",
		"/api/user",
	}
}

// # Enforcement

// Protect enforces the replay guard on prefixes.
//
// # Flow
//  1. Requests outside prefixes pass.
//  2. GET receives a fresh token in the X-CSRF-Token response header.
//  3. HEAD and OPTIONS pass.
//  4. Anything else must present a valid token, or is rejected with 403.
func Protect(guard *Guard, prefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !access.MatchesAny(request.URL.Path, prefixes) {
				next.ServeHTTP(writer, request)
				return
			}

			switch request.Method {
			case http.MethodGet:
				token, err := guard.Generate(request.Context())
				if err != nil {
					// A GET must not fail because the guard cannot issue.
					ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "replay_token_issue_failed",
						slog.Any("error", err),
					)
				} else {
					writer.Header().Set(constants.HeaderCSRFToken, token)
				}
				next.ServeHTTP(writer, request)
				return

			case http.MethodHead, http.MethodOptions:
				next.ServeHTTP(writer, request)
				return
			}

			err := guard.Verify(request.Context(), request.Header.Get(constants.HeaderCSRFToken))
			if err != nil {
				respond.Error(writer, request, rejection(http.StatusForbidden, err))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// rejection maps a verification error to the client-facing error.
func rejection(status int, err error) *apperr.AppError {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return apperr.ReplayTokenInvalid(status, "CSRF token missing")
	case errors.Is(err, ErrTokenInvalid):
		return apperr.ReplayTokenInvalid(status, "Invalid or expired CSRF token")
	default:
		return apperr.Internal(err)
	}
}

// # Token Endpoint

// Handler serves the explicit token endpoint.
type Handler struct {
	guard *Guard
}

// NewHandler creates the token endpoint handler.
func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

// Routes returns a router with GET (issue) and POST (check) on "/".
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.issue)
	router.Post("/", handler.check)
	return router
}

// issue handles GET /api/auth/csrf.
func (handler *Handler) issue(writer http.ResponseWriter, request *http.Request) {
	token, err := handler.guard.Generate(request.Context())
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, map[string]string{constants.FieldToken: token})
}

// check handles POST /api/auth/csrf.
func (handler *Handler) check(writer http.ResponseWriter, request *http.Request) {
	err := handler.guard.Verify(request.Context(), request.Header.Get(constants.HeaderCSRFToken))
	if err != nil {
		respond.Error(writer, request, rejection(http.StatusBadRequest, err))
		return
	}

	respond.OK(writer, map[string]bool{constants.FieldValid: true})
}
