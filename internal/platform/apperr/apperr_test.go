// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

/*
TestInvalidCredentials_HidesCause checks that the client message never
depends on why authentication failed.
*/
func TestInvalidCredentials_HidesCause(t *testing.T) {
	unknown := apperr.InvalidCredentials(errors.New("user not found"))
	wrong := apperr.InvalidCredentials(errors.New("secret mismatch"))

	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.HTTPStatus)
}

/*
TestAppError_Unwrap verifies that sentinel causes stay reachable through errors.Is.
*/
func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("handler: %w", apperr.InvalidCredentials(sentinel))

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, apperr.IsAppError(err))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInvalidCredentials, ae.Code)
}

/*
TestWithCause_DoesNotMutateOriginal guards shared error values.
*/
func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	base := apperr.Conflict("User already registered")
	withCause := base.WithCause(errors.New("boom"))

	assert.Nil(t, base.Cause)
	assert.NotNil(t, withCause.Cause)
	assert.Equal(t, base.Message, withCause.Message)
}

/*
TestConstructors_Status maps each constructor to its HTTP status.
*/
func TestConstructors_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"rate_limited", apperr.RateLimited(), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{"replay_forbidden", apperr.ReplayTokenInvalid(http.StatusForbidden, "x"), http.StatusForbidden, apperr.CodeReplayTokenInvalid},
		{"replay_bad_request", apperr.ReplayTokenInvalid(http.StatusBadRequest, "x"), http.StatusBadRequest, apperr.CodeReplayTokenInvalid},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, apperr.CodeValidation},
		{"credential", apperr.InvalidCredential("expired", nil), http.StatusUnauthorized, apperr.CodeInvalidCredential},
		{"internal", apperr.Internal(errors.New("x")), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}
