// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the single-account identity layer.

It defines the user record, the stores that hold it, and the service that
authenticates an identifier/secret pair and turns it into a signed
credential.

# Architecture

The deployment serves exactly one account. Stores hold at most one record;
registering while a record exists is a conflict. Records are never updated
or deleted here.
*/
package auth

import (
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// # Domain Entities

// User is the stored account record.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"password_hash"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Profile is the client-facing view of an account.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ProfileFromClaims builds the client-facing view from verified claims.
func ProfileFromClaims(claims *sec.Claims) Profile {
	return Profile{
		ID:       claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}
}

// # Field Identifiers

// Field names used for validation and response payloads.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldUser     = "user"
)
