// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access classifies request paths for the request gate.

A [Policy] holds two prefix lists. Public prefixes are consulted first, then
protected prefixes; a path matching neither falls to the policy default.

Default-allow (DefaultDeny == false) leaves unmatched paths public. That is
the historical behaviour of this service and it means a newly added page is
exposed until someone lists it as protected. Set DefaultDeny to invert it.

Policies can be loaded from YAML:

	public:
	  - /
	  - /login
	protected:
	  - /profile
	default_deny: false
*/
package access

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Class is the outcome of classifying a path.
type Class int

const (
	// Public paths pass through the gate untouched.
	Public Class = iota
	// Protected paths require a valid credential.
	Protected
)

// String implements [fmt.Stringer] for logs and metric labels.
func (c Class) String() string {
	if c == Protected {
		return "protected"
	}
	return "public"
}

// Policy is the path classification table of the request gate.
type Policy struct {
	Public      []string `yaml:"public"`
	Protected   []string `yaml:"protected"`
	DefaultDeny bool     `yaml:"default_deny"`
}

// DefaultPolicy returns the built-in classification table.
func DefaultPolicy() Policy {
	return Policy{
		Public: []string{
			"/",
			"/login",
			"/register",
			"/api/auth",
			"/contact",
			"/about",
			"/static",
			"/favicon.ico",
			"/health",
			"/ready",
			"/metrics",
		},
		Protected: []string{
			"/profile",
			"/dashboard",
			"/settings",
			"/api/user",
		},
	}
}

// Load reads a YAML policy from path.
func Load(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("access: failed to read policy %s: %w", path, err)
	}

	var policy Policy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("access: failed to parse policy %s: %w", path, err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy, nil
}

// Validate rejects prefixes that are not absolute paths.
func (p Policy) Validate() error {
	for _, prefix := range append(append([]string(nil), p.Public...), p.Protected...) {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("access: prefix %q must start with /", prefix)
		}
	}
	return nil
}

// Classify returns whether path is public or protected.
func (p Policy) Classify(path string) Class {
	if matchesAny(path, p.Public) {
		return Public
	}

	if matchesAny(path, p.Protected) {
		return Protected
	}

	if p.DefaultDeny {
		return Protected
	}
	return Public
}

// MatchesAny reports whether path falls under any of prefixes.
func MatchesAny(path string, prefixes []string) bool {
	return matchesAny(path, prefixes)
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if matches(path, prefix) {
			return true
		}
	}
	return false
}

// matches is segment aware: "/profile" covers "/profile" and "/profile/edit"
// but not "/profiles". The root prefix "/" covers only the root path.
func matches(path, prefix string) bool {
	if prefix == "/" {
		return path == "/"
	}

	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
