// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and credential management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, credential signing,
// random tokens) from the domain logic. The [CredentialService] is injected
// into the auth service and the request gate through small interfaces.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// # Verification Outcomes

var (
	// ErrInvalidCredential is the root of every verification failure.
	ErrInvalidCredential = errors.New("sec: invalid credential")

	// ErrCredentialMalformed reports a token that does not decode into a
	// complete claim set.
	ErrCredentialMalformed = fmt.Errorf("%w: malformed", ErrInvalidCredential)

	// ErrCredentialExpired reports a correctly signed token whose exp has passed.
	ErrCredentialExpired = fmt.Errorf("%w: expired", ErrInvalidCredential)

	// ErrCredentialSignature reports a token not signed with the service secret.
	ErrCredentialSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidCredential)
)

// # Claims

// ClaimsInput is the identity to be signed into a credential.
type ClaimsInput struct {
	Subject  string
	Username string
	Role     string
}

// Claims is the decoded, validated content of a credential.
type Claims struct {
	Subject   string    `json:"sub"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// credentialPayload is the wire shape of the JWT body.
type credentialPayload struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// claims converts the wire payload into [Claims], rejecting incomplete sets.
func (payload *credentialPayload) claims() (*Claims, error) {
	switch {
	case strings.TrimSpace(payload.Subject) == "":
		return nil, fmt.Errorf("%w: missing sub", ErrCredentialMalformed)
	case strings.TrimSpace(payload.Username) == "":
		return nil, fmt.Errorf("%w: missing username", ErrCredentialMalformed)
	case strings.TrimSpace(payload.Role) == "":
		return nil, fmt.Errorf("%w: missing role", ErrCredentialMalformed)
	case payload.IssuedAt == nil:
		return nil, fmt.Errorf("%w: missing iat", ErrCredentialMalformed)
	case payload.ExpiresAt == nil:
		return nil, fmt.Errorf("%w: missing exp", ErrCredentialMalformed)
	}

	return &Claims{
		Subject:   payload.Subject,
		Username:  payload.Username,
		Role:      payload.Role,
		IssuedAt:  payload.IssuedAt.Time,
		ExpiresAt: payload.ExpiresAt.Time,
	}, nil
}

// # Service

// CredentialService issues and verifies HS256-signed session credentials.
//
// It holds no mutable state after construction and is safe for concurrent use.
type CredentialService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// CredentialOption customises a [CredentialService].
type CredentialOption func(*CredentialService)

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CredentialOption {
	return func(service *CredentialService) {
		service.now = now
	}
}

// NewCredentialService creates a service signing with secret.
// The secret must be at least [constants.MinSecretLength] bytes long and the
// lifetime a positive whole number of seconds.
func NewCredentialService(secret string, lifetime time.Duration, options ...CredentialOption) (*CredentialService, error) {
	if len(secret) < constants.MinSecretLength {
		return nil, fmt.Errorf("sec: signing secret must be at least %d characters", constants.MinSecretLength)
	}

	if lifetime <= 0 {
		return nil, fmt.Errorf("sec: credential lifetime must be positive, got %s", lifetime)
	}

	// exp is encoded in whole seconds; a fractional lifetime would report an
	// expiry later than the one Verify enforces.
	if lifetime%time.Second != 0 {
		return nil, fmt.Errorf("sec: credential lifetime must be whole seconds, got %s", lifetime)
	}

	service := &CredentialService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}

	for _, option := range options {
		option(service)
	}

	return service, nil
}

// Lifetime returns the configured credential lifetime.
func (service *CredentialService) Lifetime() time.Duration {
	return service.lifetime
}

// Issue signs a credential for input with iat = now and exp = iat + lifetime.
func (service *CredentialService) Issue(input ClaimsInput) (string, *Claims, error) {
	if input.Subject == "" || input.Username == "" || input.Role == "" {
		return "", nil, fmt.Errorf("sec: cannot issue credential with empty claims")
	}

	issuedAt := service.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(service.lifetime)

	payload := credentialPayload{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: input.Username,
		Role:     input.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sec: failed to sign credential: %w", err)
	}

	return signedToken, &Claims{
		Subject:   input.Subject,
		Username:  input.Username,
		Role:      input.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
//
// Every failure wraps [ErrInvalidCredential]; callers branch on
// [ErrCredentialMalformed], [ErrCredentialExpired] or [ErrCredentialSignature]
// with [errors.Is]. Expiry is a hard boundary: exp <= now fails.
func (service *CredentialService) Verify(tokenString string) (*Claims, error) {
	payload := &credentialPayload{}

	_, err := jwt.ParseWithClaims(tokenString, payload,
		func(token *jwt.Token) (interface{}, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return payload.claims()
}

// classify maps jwt library errors onto the credential outcomes.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrCredentialExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrCredentialSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrCredentialMalformed, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
}
