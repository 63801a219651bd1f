// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "os"

// # Account Constraints

const (
	// MinUsernameLength is the shortest accepted username.
	MinUsernameLength = 3

	// MaxUsernameLength is the longest accepted username.
	MaxUsernameLength = 64

	// MaxPasswordLength caps password input; bcrypt ignores bytes past 72.
	MaxPasswordLength = 72
)

// # File Store

const (
	// userFileMode restricts the user file to the service account.
	userFileMode os.FileMode = 0o600

	// userDirMode is used when the user file's directory must be created.
	userDirMode os.FileMode = 0o700
)
