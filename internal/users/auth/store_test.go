// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

func testUser() *User {
	return &User{
		ID:           "0190a5c2-0000-7000-8000-000000000001",
		Username:     "alice",
		PasswordHash: "$2a$10$placeholder",
		Role:         sec.RoleUser,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

/*
TestFileUserRepository_Lifecycle covers create, lookup and the single-record rule.
*/
func TestFileUserRepository_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "user.json")
	repository := NewFileUserRepository(path)
	ctx := context.Background()

	// Empty store
	require.NoError(t, repository.Check(ctx))
	_, err := repository.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Create
	require.NoError(t, repository.Create(ctx, testUser()))

	found, err := repository.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, found.ID)
	assert.Equal(t, testUser().PasswordHash, found.PasswordHash)
	assert.True(t, testUser().CreatedAt.Equal(found.CreatedAt))

	// Identifier mismatch
	_, err = repository.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Single tenant
	other := testUser()
	other.Username = "bob"
	assert.ErrorIs(t, repository.Create(ctx, other), ErrUserExists)

	// Survives a new repository instance on the same file
	reopened := NewFileUserRepository(path)
	_, err = reopened.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
}

/*
TestFileUserRepository_AtomicWrite leaves only the target file behind.
*/
func TestFileUserRepository_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.json")
	require.NoError(t, NewFileUserRepository(path).Create(context.Background(), testUser()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

/*
TestFileUserRepository_Corrupt reports decoding failures.
*/
func TestFileUserRepository_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repository := NewFileUserRepository(path)
	assert.Error(t, repository.Check(context.Background()))

	_, err := repository.FindByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

/*
TestEnvUserRepository seeds from configuration and accepts one registration.
*/
func TestEnvUserRepository(t *testing.T) {
	ctx := context.Background()

	seeded := NewEnvUserRepository("Alice", "$2a$10$hash", "1")
	found, err := seeded.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", found.ID)
	assert.Equal(t, sec.RoleUser, found.Role)
	assert.ErrorIs(t, seeded.Create(ctx, testUser()), ErrUserExists)

	empty := NewEnvUserRepository("", "", "1")
	_, err = empty.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, empty.Create(ctx, testUser()))
	_, err = empty.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.ErrorIs(t, empty.Create(ctx, testUser()), ErrUserExists)
	assert.NoError(t, empty.Check(ctx))
}
