// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// RedisStore implements [Store] using Redis so that all instances share
// counters.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed counter store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Increment adds one hit to key.

Description: INCR and EXPIRE NX run in one MULTI/EXEC, so the window is
anchored at the first hit and later hits never extend it.

Parameters:
  - context: context.Context
  - key: string
  - window: time.Duration

Returns:
  - int64: Hits inside the current window
  - error: Connectivity failures
*/
func (store *RedisStore) Increment(context context.Context, key string, window time.Duration) (int64, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var incr *redis.IntCmd
	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(context, redisKey)
		pipe.ExpireNX(context, redisKey, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_ratelimit_incr_failed: %w", err)
	}

	return incr.Val(), nil
}
