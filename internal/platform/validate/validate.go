// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers validate request payloads with this package before calling a
// service. The resulting error is a MalformedInput failure: a 400 whose
// message is the first rule that failed and whose details list all of them.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

var (
	// passwordAlphabet restricts passwords to letters, digits and the special set.
	passwordAlphabet = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
	lowerCase        = regexp.MustCompile(`[a-z]`)
	upperCase        = regexp.MustCompile(`[A-Z]`)
	digit            = regexp.MustCompile(`\d`)
	special          = regexp.MustCompile(`[@$!%*?&]`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// StrongPassword fails unless value has at least 8 characters drawn from
// letters, digits and @$!%*?&, with at least one lowercase letter, one
// uppercase letter, one digit and one special character.
func (v *Validator) StrongPassword(field, value string) *Validator {
	strong := len(value) >= 8 &&
		passwordAlphabet.MatchString(value) &&
		lowerCase.MatchString(value) &&
		upperCase.MatchString(value) &&
		digit.MatchString(value) &&
		special.MatchString(value)

	if !strong {
		v.add(field, "Must be at least 8 characters with upper and lower case letters, a digit and one of @$!%*?&")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("username", strings.Contains(name, " "), "Must not contain spaces")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed. The error message is the first failure.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	first := v.errs[0]
	return apperr.ValidationError(first.Field+": "+first.Message, v.errs...)
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
