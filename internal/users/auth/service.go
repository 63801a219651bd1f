// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/pkg/ident"
	"github.com/taibuivan/gatehouse/pkg/uuid"
)

// # Contracts & Types

// CredentialIssuer defines the contract for signing and verifying credentials.
type CredentialIssuer interface {
	// Issue signs input into a credential valid for [CredentialIssuer.Lifetime].
	Issue(input sec.ClaimsInput) (string, *sec.Claims, error)

	// Verify checks signature, schema and expiry of a credential.
	Verify(token string) (*sec.Claims, error)

	// Lifetime is the validity period of issued credentials.
	Lifetime() time.Duration
}

// Service implements the authentication use cases.
type Service struct {
	userRepository UserRepository
	credentials    CredentialIssuer
	now            func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, credentials CredentialIssuer) *Service {
	return &Service{
		userRepository: userRepo,
		credentials:    credentials,
		now:            time.Now,
	}
}

// Session is an issued credential together with the account it names.
type Session struct {
	Token  string
	Claims *sec.Claims
	User   Profile
}

// # Authentication Flow

/*
Authenticate checks an identifier/secret pair against the stored record.

Description: Both an unknown identifier and a wrong secret surface as the
same client error; the cause (ErrUserNotFound or ErrInvalidSecret) is kept
for logs only.

Parameters:
  - context: context.Context
  - identifier: string (Username as typed)
  - secret: string (Plain password)

Returns:
  - sec.ClaimsInput: Identity to sign
  - error: apperr.InvalidCredentials or storage failures
*/
func (service *Service) Authenticate(context context.Context, identifier, secret string) (sec.ClaimsInput, error) {
	user, err := service.userRepository.FindByUsername(context, ident.Canonical(identifier))
	if errors.Is(err, ErrUserNotFound) {
		return sec.ClaimsInput{}, apperr.InvalidCredentials(ErrUserNotFound)
	}
	if err != nil {
		return sec.ClaimsInput{}, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	// bcrypt compares in constant time.
	if !sec.CheckPasswordHash(secret, user.PasswordHash) {
		return sec.ClaimsInput{}, apperr.InvalidCredentials(ErrInvalidSecret)
	}

	return sec.ClaimsInput{
		Subject:  user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	}, nil
}

/*
Login authenticates the pair and issues a credential.

Parameters:
  - context: context.Context
  - identifier: string
  - secret: string

Returns:
  - *Session: Signed credential and profile
  - error: apperr.InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, identifier, secret string) (*Session, error) {
	input, err := service.Authenticate(context, identifier, secret)
	if err != nil {
		service.record(constants.ActionLogin, err)
		return nil, err
	}

	session, err := service.issue(input)
	service.record(constants.ActionLogin, err)
	return session, err
}

// # Registration Flow

// RegisterInput holds the data required to enroll the account.
type RegisterInput struct {
	Username string
	Password string
}

/*
Register creates the single account and issues its first credential.

Parameters:
  - context: context.Context
  - input: RegisterInput (validated by the caller)

Returns:
  - *Session: Signed credential and profile
  - error: apperr.Conflict if an account exists, or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	session, err := service.register(context, input)
	service.record(constants.ActionRegister, err)
	return session, err
}

func (service *Service) register(context context.Context, input RegisterInput) (*Session, error) {

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable opaque subject.
	user := &User{
		ID:           uuid.New(),
		Username:     ident.Canonical(input.Username),
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		CreatedAt:    service.now().UTC(),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, apperr.Conflict("User already registered").WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return service.issue(sec.ClaimsInput{
		Subject:  user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
}

// # Credential Inspection

/*
Current verifies a credential presented by the client.

Parameters:
  - token: string (Empty when no cookie was sent)

Returns:
  - *sec.Claims: Verified claims
  - error: apperr.Unauthorized when absent, apperr.InvalidCredential when rejected
*/
func (service *Service) Current(token string) (*sec.Claims, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	claims, err := service.credentials.Verify(token)
	if err != nil {
		return nil, apperr.InvalidCredential("Session expired, please login again", err)
	}

	return claims, nil
}

// CredentialLifetime is the validity period of issued credentials.
func (service *Service) CredentialLifetime() time.Duration {
	return service.credentials.Lifetime()
}

func (service *Service) issue(input sec.ClaimsInput) (*Session, error) {
	token, claims, err := service.credentials.Issue(input)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	return &Session{
		Token:  token,
		Claims: claims,
		User:   ProfileFromClaims(claims),
	}, nil
}

func (service *Service) record(action string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, outcome).Inc()
}
