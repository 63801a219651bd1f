// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts common body decoding patterns and identity lookups, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
RequiredClaims ensures the request is authenticated and returns the claims.

Returns:
  - *sec.Claims: The verified claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.Claims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// ForwardedIdentity is the identity the request gate attached as headers.
type ForwardedIdentity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

/*
Forwarded reads the identity headers set by the request gate.

Handlers behind the gate trust these headers without re-verifying the
credential; the gate strips client-supplied copies before forwarding.

Returns:
  - ForwardedIdentity: The forwarded identity
  - error: apperr.Unauthorized if no identity was forwarded
*/
func Forwarded(request *http.Request) (ForwardedIdentity, error) {
	identity := ForwardedIdentity{
		UserID:   request.Header.Get(constants.HeaderUserID),
		Username: request.Header.Get(constants.HeaderUsername),
		Role:     request.Header.Get(constants.HeaderUserRole),
	}

	if identity.UserID == "" {
		return ForwardedIdentity{}, apperr.Unauthorized("Authentication required")
	}

	return identity, nil
}

/*
ProxyIP returns the caller address reported by proxy headers.

The first X-Forwarded-For hop wins, then X-Real-IP. Every component that keys
on the caller (throttle, action limiter, logs) resolves it through here so
they agree on who the caller is.

Returns:
  - string: The address, or "" when neither header carries one
*/
func ProxyIP(request *http.Request) string {
	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}

	return strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))
}
