// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Default role for the registered account
	RoleUser UserRole = "user"
)

// String implements [fmt.Stringer].
func (r UserRole) String() string {
	return string(r)
}
