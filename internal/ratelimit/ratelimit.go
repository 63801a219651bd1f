// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit counts attempts per (action, caller) inside a fixed window.

The window is anchored at the first hit for a key and lasts [Options.Window].
The (limit+1)-th hit inside a window is rejected with HTTP 429; the first hit
after the window closes starts a new one. No retry-after hint is returned.

Callers are identified by the first hop of X-Forwarded-For, then X-Real-IP,
falling back to a shared "anonymous" bucket.

Counter state lives behind [Store]: [MemoryStore] (bounded LRU) or
[RedisStore]. A failing store never blocks a request: the error is logged
and the attempt is allowed.
*/
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
)

// DefaultWindow is the counting window used when none is configured.
const DefaultWindow = time.Minute

// ErrRateLimitExceeded is the cause carried by the 429 error from [Limiter.Check].
var ErrRateLimitExceeded = errors.New("ratelimit: limit exceeded")

// Store increments window counters.
type Store interface {
	// Increment adds one hit to key and returns the count inside the
	// current window, opening a new window when none is active.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces per-action attempt limits.
type Limiter struct {
	store  Store
	window time.Duration
}

// New creates a limiter over store. A non-positive window uses [DefaultWindow].
func New(store Store, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, window: window}
}

/*
Check records one attempt of action by the caller of request.

Parameters:
  - request: *http.Request (Identity source and context)
  - limit: int (Allowed attempts per window)
  - action: string (e.g. LOGIN, REGISTER)

Returns:
  - error: apperr.RateLimited wrapping [ErrRateLimitExceeded] when over the limit
*/
func (limiter *Limiter) Check(request *http.Request, limit int, action string) error {
	ctx := request.Context()
	key := action + ":" + Identity(request)

	count, err := limiter.store.Increment(ctx, key, limiter.window)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "ratelimit_store_failed",
			slog.String("action", action),
			slog.Any("error", err),
		)
		return nil
	}

	if count > int64(limit) {
		metrics.RateLimitRejectedTotal.WithLabelValues(action).Inc()
		return apperr.RateLimited().WithCause(ErrRateLimitExceeded)
	}

	return nil
}

// Identity returns the caller identity used in rate-limit keys.
func Identity(request *http.Request) string {
	if ip := requestutil.ProxyIP(request); ip != "" {
		return ip
	}
	return constants.AnonymousIdentity
}
