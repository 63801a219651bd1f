// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ident canonicalises user-chosen identifiers such as usernames.
//
// # Usage
//
// Two spellings that a person would read as the same name ("Alice",
// "ALICE", "Ａｌｉｃｅ") must resolve to the same account. Every identifier
// is passed through [Canonical] before it is stored or compared.
package ident

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical returns the comparison form of an identifier.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKC (folds compatibility forms: full-width → ASCII).
// 2. Applies Unicode case folding.
// 3. Trims surrounding whitespace.
func Canonical(s string) string {
	// 1. Compatibility normalization
	result, _, _ := transform.String(norm.NFKC, s)

	// 2. Case folding
	result = cases.Fold().String(result)

	// 3. Whitespace
	return strings.TrimSpace(result)
}

// Equal reports whether a and b name the same identifier.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// HasControl reports whether s contains control or invisible format characters.
func HasControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
	}) >= 0
}

// markup lists the characters rejected in new identifiers. They would need
// escaping wherever the name is echoed into HTML or headers.
const markup = "<>\"`"

// HasMarkup reports whether s contains characters reserved for markup.
func HasMarkup(s string) bool {
	return strings.ContainsAny(s, markup)
}
