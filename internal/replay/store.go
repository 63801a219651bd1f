// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package replay

import (
	"context"
	"sync"
	"time"
)

// Store persists issued tokens with their issuance time.
type Store interface {
	// Put records token as issued at issuedAt. ttl is a retention hint.
	Put(ctx context.Context, token string, issuedAt time.Time, ttl time.Duration) error

	// Get returns the issuance time of token and whether it is known.
	Get(ctx context.Context, token string) (time.Time, bool, error)

	// Delete forgets token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// Sweep forgets every token issued at or before cutoff.
	Sweep(ctx context.Context, cutoff time.Time) error
}

// MemoryStore keeps tokens in a process-local map.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]time.Time)}
}

func (store *MemoryStore) Put(_ context.Context, token string, issuedAt time.Time, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.tokens[token] = issuedAt
	return nil
}

func (store *MemoryStore) Get(_ context.Context, token string) (time.Time, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	issuedAt, found := store.tokens[token]
	return issuedAt, found, nil
}

func (store *MemoryStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.tokens, token)
	return nil
}

func (store *MemoryStore) Sweep(_ context.Context, cutoff time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for token, issuedAt := range store.tokens {
		if !issuedAt.After(cutoff) {
			delete(store.tokens, token)
		}
	}
	return nil
}

// Len returns the number of remembered tokens.
func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.tokens)
}
