// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, header names, and cookie settings
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Throttle capacities, action limits and IP tracking TTLs.
  - Security: Credential cookie, replay token and identity header names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "gatehouse"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often idle throttle entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its throttle entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// AnonymousIdentity is the caller identity used when no forwarding header is present.
	AnonymousIdentity = "anonymous"

	// ActionLogin labels login attempts in the action rate limiter.
	ActionLogin = "LOGIN"

	// ActionRegister labels registration attempts in the action rate limiter.
	ActionRegister = "REGISTER"

	// LoginAttemptsPerWindow bounds login attempts per caller per window.
	LoginAttemptsPerWindow = 5

	// RegisterAttemptsPerWindow bounds registration attempts per caller per window.
	RegisterAttemptsPerWindow = 3
)

// # Authentication

const (
	// CredentialCookieName is the cookie that carries the signed session credential.
	CredentialCookieName = "token"

	// CredentialCookiePath scopes the credential cookie to the whole site.
	CredentialCookiePath = "/"

	// MinSecretLength is the minimum accepted length of the signing secret.
	MinSecretLength = 32

	// LoginPath is where unauthenticated visitors of protected paths are sent.
	LoginPath = "/login"

	// APIPrefix marks paths whose handlers receive forwarded identity headers.
	APIPrefix = "/api"
)

// StaleCredentialCookies lists every cookie name that has ever carried a
// credential. All of them are expired whenever a session is torn down.
var StaleCredentialCookies = []string{CredentialCookieName, "auth-token", "user", "session"}

// # HTTP Headers

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderOrigin         = "Origin"
	HeaderCSRFToken      = "X-CSRF-Token"
	HeaderUserID         = "X-User-ID"
	HeaderUserRole       = "X-User-Role"
	HeaderUsername       = "X-Username"
	HeaderCacheControl   = "Cache-Control"
	HeaderPragma         = "Pragma"
	HeaderExpires        = "Expires"
	HeaderContentType    = "Content-Type"
	ContentTypeJSON      = "application/json; charset=utf-8"
	CacheControlNoStore  = "no-store, no-cache, must-revalidate, no-transform"
	ContentSecurityRules = "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:;"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
	FieldToken   = "token"
	FieldValid   = "valid"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixReplayToken = "replay:token:"
	RedisPrefixRateLimit   = "ratelimit:"
)
