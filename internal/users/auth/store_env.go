// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"

	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/pkg/ident"
)

// EnvUserRepository implements [UserRepository] on a record supplied by
// configuration (AUTH_USERNAME, AUTH_PASSWORD_HASH, AUTH_USER_ID).
//
// A record created through registration lives in memory only and is lost on
// restart.
type EnvUserRepository struct {
	mu   sync.RWMutex
	user *User
}

// NewEnvUserRepository seeds the repository. An empty username or hash
// leaves it without a record.
func NewEnvUserRepository(username, passwordHash, userID string) *EnvUserRepository {
	repository := &EnvUserRepository{}

	if username != "" && passwordHash != "" {
		repository.user = &User{
			ID:           userID,
			Username:     ident.Canonical(username),
			PasswordHash: passwordHash,
			Role:         sec.RoleUser,
		}
	}

	return repository
}

// FindByUsername implements [UserRepository].
func (repository *EnvUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	if repository.user == nil || !ident.Equal(repository.user.Username, username) {
		return nil, ErrUserNotFound
	}

	found := *repository.user
	return &found, nil
}

// Create implements [UserRepository].
func (repository *EnvUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.user != nil {
		return ErrUserExists
	}

	stored := *user
	repository.user = &stored
	return nil
}

// Check implements [UserRepository]; the record is always readable.
func (repository *EnvUserRepository) Check(context.Context) error {
	return nil
}
