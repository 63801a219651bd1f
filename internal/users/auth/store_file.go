// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/taibuivan/gatehouse/pkg/ident"
)

// FileUserRepository implements [UserRepository] on a JSON file.
//
// Reads share an RW lock; writes go to a temporary file in the same
// directory which is then renamed over the target, so readers never observe
// a partial record.
type FileUserRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileUserRepository creates a repository backed by the file at path.
// The file need not exist yet.
func NewFileUserRepository(path string) *FileUserRepository {
	return &FileUserRepository{path: path}
}

/*
FindByUsername returns the stored record if its username matches.

Parameters:
  - context: context.Context
  - username: string (Canonical form)

Returns:
  - *User: Stored record
  - error: ErrUserNotFound or read failures
*/
func (repository *FileUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, err := repository.load()
	if err != nil {
		return nil, err
	}

	if !ident.Equal(user.Username, username) {
		return nil, ErrUserNotFound
	}

	return user, nil
}

/*
Create writes the record unless one is already stored.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrUserExists or write failures
*/
func (repository *FileUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	// Single-tenant: any stored record blocks creation.
	_, err := repository.load()
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	raw, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("auth_file_store_encode_failed: %w", err)
	}

	return repository.writeAtomic(raw)
}

// Check reads the file if it exists.
func (repository *FileUserRepository) Check(_ context.Context) error {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	_, err := repository.load()
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}

// load reads the stored record. A missing or empty file means no record.
func (repository *FileUserRepository) load() (*User, error) {
	raw, err := os.ReadFile(repository.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth_file_store_read_failed: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrUserNotFound
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("auth_file_store_decode_failed: %w", err)
	}

	if user.Username == "" {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

func (repository *FileUserRepository) writeAtomic(raw []byte) error {
	dir := filepath.Dir(repository.path)
	if err := os.MkdirAll(dir, userDirMode); err != nil {
		return fmt.Errorf("auth_file_store_mkdir_failed: %w", err)
	}

	temp, err := os.CreateTemp(dir, filepath.Base(repository.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("auth_file_store_temp_failed: %w", err)
	}
	tempName := temp.Name()

	// Remove the temporary file on any failure path.
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := temp.Write(raw); err != nil {
		_ = temp.Close()
		return fmt.Errorf("auth_file_store_write_failed: %w", err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		return fmt.Errorf("auth_file_store_sync_failed: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("auth_file_store_close_failed: %w", err)
	}
	if err := os.Chmod(tempName, userFileMode); err != nil {
		return fmt.Errorf("auth_file_store_chmod_failed: %w", err)
	}
	if err := os.Rename(tempName, repository.path); err != nil {
		return fmt.Errorf("auth_file_store_rename_failed: %w", err)
	}

	committed = true
	return nil
}
