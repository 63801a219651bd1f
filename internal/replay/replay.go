// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package replay implements the replay guard: short-lived opaque tokens that
state-changing requests must echo back in the X-CSRF-Token header.

A token is 32 random bytes, hex encoded, remembered with its issuance time.
It verifies while now - issuedAt < window. Tokens are reusable within the
window unless the guard is built with [WithSingleUse], in which case a
successful verification consumes the token.

Token state lives behind the [Store] interface: [MemoryStore] for a single
process, [RedisStore] when several instances share one guard.
*/
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

const (
	// TokenBytes is the number of random bytes in a token.
	TokenBytes = 32

	// DefaultWindow is how long a token stays valid.
	DefaultWindow = time.Hour
)

var (
	// ErrTokenInvalid is returned for unknown or expired tokens.
	ErrTokenInvalid = errors.New("replay: invalid or expired token")

	// ErrTokenMissing is returned when no token was presented.
	ErrTokenMissing = errors.New("replay: token missing")
)

// Guard issues and verifies replay tokens.
type Guard struct {
	store     Store
	window    time.Duration
	singleUse bool
	now       func() time.Time
}

// Option configures a [Guard].
type Option func(*Guard)

// WithWindow overrides [DefaultWindow].
func WithWindow(window time.Duration) Option {
	return func(guard *Guard) {
		if window > 0 {
			guard.window = window
		}
	}
}

// WithSingleUse makes successful verification consume the token.
func WithSingleUse(enabled bool) Option {
	return func(guard *Guard) { guard.singleUse = enabled }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(guard *Guard) { guard.now = now }
}

// NewGuard creates a guard over store.
func NewGuard(store Store, options ...Option) *Guard {
	guard := &Guard{
		store:  store,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, option := range options {
		option(guard)
	}
	return guard
}

// Window returns the validity window of issued tokens.
func (guard *Guard) Window() time.Duration {
	return guard.window
}

// Generate creates, stores and returns a fresh token. Expired entries are
// swept on the way; a failed sweep is logged and does not fail the token,
// which is already stored.
func (guard *Guard) Generate(ctx context.Context) (string, error) {
	token, err := sec.GenerateSecureToken(TokenBytes)
	if err != nil {
		metrics.ReplayTokensTotal.WithLabelValues(metrics.OperationGenerate, metrics.OutcomeFailure).Inc()
		return "", fmt.Errorf("replay: generate token: %w", err)
	}

	now := guard.now()
	if err := guard.store.Put(ctx, token, now, guard.window); err != nil {
		metrics.ReplayTokensTotal.WithLabelValues(metrics.OperationGenerate, metrics.OutcomeFailure).Inc()
		return "", fmt.Errorf("replay: store token: %w", err)
	}

	if err := guard.store.Sweep(ctx, now.Add(-guard.window)); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "replay_sweep_failed", slog.Any("error", err))
	}

	metrics.ReplayTokensTotal.WithLabelValues(metrics.OperationGenerate, metrics.OutcomeSuccess).Inc()
	return token, nil
}

// Verify returns nil if token is known and inside the window. Expired
// entries are deleted on detection.
func (guard *Guard) Verify(ctx context.Context, token string) error {
	err := guard.verify(ctx, token)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeRejected
	}
	metrics.ReplayTokensTotal.WithLabelValues(metrics.OperationVerify, outcome).Inc()

	return err
}

func (guard *Guard) verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenMissing
	}

	issuedAt, found, err := guard.store.Get(ctx, token)
	if err != nil {
		return fmt.Errorf("replay: lookup token: %w", err)
	}
	if !found {
		return ErrTokenInvalid
	}

	if guard.now().Sub(issuedAt) >= guard.window {
		if err := guard.store.Delete(ctx, token); err != nil {
			return fmt.Errorf("replay: delete expired token: %w", err)
		}
		return ErrTokenInvalid
	}

	if guard.singleUse {
		if err := guard.store.Delete(ctx, token); err != nil {
			return fmt.Errorf("replay: consume token: %w", err)
		}
	}

	return nil
}
