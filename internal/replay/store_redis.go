// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package replay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// RedisStore implements [Store] using Redis so that several instances share
// one set of tokens. Entries carry a TTL, so [RedisStore.Sweep] is a no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed token store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Put stores a token with its issuance time and TTL.

Parameters:
  - context: context.Context
  - token: string
  - issuedAt: time.Time
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (store *RedisStore) Put(context context.Context, token string, issuedAt time.Time, ttl time.Duration) error {

	// Store the issuance time as unix nanoseconds
	value := strconv.FormatInt(issuedAt.UnixNano(), 10)

	if err := store.client.Set(context, constants.RedisPrefixReplayToken+token, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_replay_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the issuance time for a token.

Description: An absent or TTL-expired key is reported as not found.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - time.Time: Issuance time
  - bool: Whether the token is known
  - error: Connectivity or decoding failures
*/
func (store *RedisStore) Get(context context.Context, token string) (time.Time, bool, error) {
	value, err := store.client.Get(context, constants.RedisPrefixReplayToken+token).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("redis_replay_token_get_failed: %w", err)
	}

	nanos, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis_replay_token_corrupt: %w", err)
	}

	return time.Unix(0, nanos), true, nil
}

/*
Delete removes the token from Redis.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(context context.Context, token string) error {
	if err := store.client.Del(context, constants.RedisPrefixReplayToken+token).Err(); err != nil {
		return fmt.Errorf("redis_replay_token_delete_failed: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys on its own.
func (store *RedisStore) Sweep(context.Context, time.Time) error {
	return nil
}
