// Package cache implements the read-through lookup used in front of the
// relational store.
package cache

import (
	"context"
	"errors"
	"sync"
)

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is a string key-value cache without expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return "", ErrMiss
	}

	return value, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value

	return nil
}

// Len returns the number of cached entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Nop is a Store that never holds anything. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, error) { return "", ErrMiss }

func (Nop) Set(context.Context, string, string) error { return nil }

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = Nop{}
)
