// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when no record matches the identifier.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrUserExists is returned when creating a record in an occupied store.
	ErrUserExists = errors.New("auth: user already exists")

	// ErrInvalidSecret is returned when the secret does not match the record.
	ErrInvalidSecret = errors.New("auth: invalid secret")
)

// # User Data Access

// UserRepository defines the data access contract for the single account.
type UserRepository interface {

	/*
		FindByUsername returns the record when its canonical username equals username.

		Parameters:
		  - context: context.Context
		  - username: string (Canonical form)

		Returns:
		  - *User: Stored record
		  - error: ErrUserNotFound when absent or different, or storage failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists the account record.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: ErrUserExists when a record is already stored, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Check verifies that the store is readable.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Storage failures
	*/
	Check(context context.Context) error
}
