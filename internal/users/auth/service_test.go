// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "Str0ng!Pass"
)

func newTestService(t *testing.T) (*Service, *sec.CredentialService) {
	t.Helper()

	credentials, err := sec.NewCredentialService(testSecret, 7*24*time.Hour)
	require.NoError(t, err)

	repository := NewFileUserRepository(filepath.Join(t.TempDir(), "user.json"))
	return NewService(repository, credentials), credentials
}

/*
TestService_RegisterThenLogin issues verifiable credentials for the account.
*/
func TestService_RegisterThenLogin(t *testing.T) {
	service, credentials := newTestService(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, RegisterInput{Username: "Alice", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, "user", registered.User.Role)
	assert.NotEmpty(t, registered.User.ID)

	session, err := service.Login(ctx, "ALICE", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)

	claims, err := credentials.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
	assert.Equal(t, 7*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

/*
TestService_AuthenticateFailures keeps the cause but hides it from clients.
*/
func TestService_AuthenticateFailures(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Authenticate(ctx, "alice", testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assertInvalidCredentials(t, err)

	_, err = service.Register(ctx, RegisterInput{Username: "alice", Password: testPassword})
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "alice", "Wr0ng!Pass")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSecret)
	assertInvalidCredentials(t, err)

	_, err = service.Authenticate(ctx, "mallory", testPassword)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func assertInvalidCredentials(t *testing.T, err error) {
	t.Helper()

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	assert.Equal(t, "Invalid credentials", appErr.Message)
}

/*
TestService_RegisterTwice conflicts on the occupied store.
*/
func TestService_RegisterTwice(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Username: "alice", Password: testPassword})
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterInput{Username: "bob", Password: testPassword})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserExists)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, "User already registered", appErr.Message)
}

/*
TestService_Current distinguishes a missing from a rejected credential.
*/
func TestService_Current(t *testing.T) {
	service, credentials := newTestService(t)

	_, err := service.Current("")
	require.Error(t, err)
	assert.Equal(t, "Authentication required", apperr.As(err).Message)

	_, err = service.Current("garbage")
	require.Error(t, err)
	assert.Equal(t, "Session expired, please login again", apperr.As(err).Message)
	assert.True(t, errors.Is(err, sec.ErrInvalidCredential))

	token, _, err := credentials.Issue(sec.ClaimsInput{Subject: "s", Username: "alice", Role: "user"})
	require.NoError(t, err)

	claims, err := service.Current(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}
