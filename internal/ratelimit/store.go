// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize bounds the number of tracked keys in [MemoryStore].
const DefaultCacheSize = 500

type counter struct {
	count int64
	start time.Time
}

// MemoryStore keeps counters in a bounded, time-evicting LRU cache.
//
// The cache TTL only bounds memory; window boundaries are decided from each
// counter's start time so that a busy key cannot extend its own window.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, counter]
	now   func() time.Time
}

// MemoryOption configures a [MemoryStore].
type MemoryOption func(*MemoryStore)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(store *MemoryStore) { store.now = now }
}

// NewMemoryStore creates a store tracking at most size keys, each retained
// for at most ttl after its last hit.
func NewMemoryStore(size int, ttl time.Duration, options ...MemoryOption) *MemoryStore {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultWindow
	}

	store := &MemoryStore{
		cache: expirable.NewLRU[string, counter](size, nil, ttl),
		now:   time.Now,
	}
	for _, option := range options {
		option(store)
	}
	return store
}

// Increment implements [Store].
func (store *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()

	current, found := store.cache.Get(key)
	if !found || now.Sub(current.start) >= window {
		current = counter{start: now}
	}

	current.count++
	store.cache.Add(key, current)

	return current.count, nil
}

// Len returns the number of tracked keys.
func (store *MemoryStore) Len() int {
	return store.cache.Len()
}
