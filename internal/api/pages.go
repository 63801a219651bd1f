// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

// PageHandler serves the minimal endpoints behind the gate.
//
// Page rendering is left to a frontend; these handlers only report who the
// gate let through so that gating can be observed end to end.
type PageHandler struct{}

// NewPageHandler constructs a [PageHandler].
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Page string        `json:"page"`
	User *auth.Profile `json:"user,omitempty"`
}

// Page returns a handler describing the named page and its viewer. The gate
// attaches claims on protected paths; a page made public by policy answers 401.
func (handler *PageHandler) Page(name string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		claims, err := requestutil.RequiredClaims(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		profile := auth.ProfileFromClaims(claims)
		respond.OK(writer, pageResponse{Page: name, User: &profile})
	}
}

// Index handles GET /.
func (handler *PageHandler) Index(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

// UserRoutes returns the /api/user routes.
//
// # Endpoints
//   - GET /profile : Identity forwarded by the gate.
func (handler *PageHandler) UserRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/profile", handler.profile)
	return router
}

/*
Profile returns the identity the gate forwarded as request headers.

GET /api/user/profile

Response:
  - 200: {"user": ForwardedIdentity}
  - 401: No identity was forwarded
*/
func (handler *PageHandler) profile(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.Forwarded(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]requestutil.ForwardedIdentity{auth.FieldUser: identity})
}
