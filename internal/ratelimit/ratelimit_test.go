// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

type fakeClock struct {
	current time.Time
}

func (clock *fakeClock) Now() time.Time          { return clock.current }
func (clock *fakeClock) Advance(d time.Duration) { clock.current = clock.current.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(DefaultCacheSize, time.Hour, WithClock(clock.Now))
	return New(store, time.Minute), clock
}

func requestFrom(ip string) *http.Request {
	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	if ip != "" {
		request.Header.Set("X-Forwarded-For", ip)
	}
	return request
}

/*
TestLimiter_NPlusOne rejects the first attempt over the limit.
*/
func TestLimiter_NPlusOne(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := range 5 {
		require.NoError(t, limiter.Check(requestFrom("203.0.113.1"), 5, "LOGIN"), "attempt %d", i+1)
	}

	err := limiter.Check(requestFrom("203.0.113.1"), 5, "LOGIN")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
}

/*
TestLimiter_NextWindow resets once the window has elapsed.
*/
func TestLimiter_NextWindow(t *testing.T) {
	limiter, clock := newTestLimiter()

	for range 3 {
		require.NoError(t, limiter.Check(requestFrom("203.0.113.2"), 3, "REGISTER"))
	}
	require.Error(t, limiter.Check(requestFrom("203.0.113.2"), 3, "REGISTER"))

	// Hits inside the window do not extend it.
	clock.Advance(59 * time.Second)
	require.Error(t, limiter.Check(requestFrom("203.0.113.2"), 3, "REGISTER"))

	clock.Advance(time.Second)
	assert.NoError(t, limiter.Check(requestFrom("203.0.113.2"), 3, "REGISTER"))
}

/*
TestLimiter_KeysAreIndependent separates actions and callers.
*/
func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter()

	require.NoError(t, limiter.Check(requestFrom("203.0.113.3"), 1, "LOGIN"))
	require.Error(t, limiter.Check(requestFrom("203.0.113.3"), 1, "LOGIN"))

	assert.NoError(t, limiter.Check(requestFrom("203.0.113.3"), 1, "REGISTER"))
	assert.NoError(t, limiter.Check(requestFrom("203.0.113.4"), 1, "LOGIN"))
}

/*
TestIdentity resolves the caller from proxy headers.
*/
func TestIdentity(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "anonymous", Identity(request))

	request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", Identity(request))

	request.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", Identity(request))
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

/*
TestLimiter_FailsOpen allows attempts when the store errors.
*/
func TestLimiter_FailsOpen(t *testing.T) {
	limiter := New(failingStore{}, time.Minute)

	for range 10 {
		assert.NoError(t, limiter.Check(requestFrom(""), 1, "LOGIN"))
	}
}

/*
TestMemoryStore_Bounded evicts the least recently used keys.
*/
func TestMemoryStore_Bounded(t *testing.T) {
	store := NewMemoryStore(2, time.Hour)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := store.Increment(ctx, key, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.Len())

	// "a" was evicted, so it starts over.
	count, err := store.Increment(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

/*
TestRedisStore runs against REDIS_TEST_URL when available.
*/
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	options, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { client.Del(ctx, "ratelimit:"+key) })

	store := NewRedisStore(client)
	for want := int64(1); want <= 3; want++ {
		count, err := store.Increment(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	ttl, err := client.TTL(ctx, "ratelimit:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
