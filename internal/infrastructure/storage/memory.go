package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values for the life of the process only
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// Get retrieves a value by key
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	value, exists := ms.items[key]
	return value, exists, nil
}

// Set stores a key-value pair
func (ms *MemoryStore) Set(_ context.Context, key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = value
	return nil
}

// Delete removes keys
func (ms *MemoryStore) Delete(_ context.Context, keys ...string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, key := range keys {
		delete(ms.items, key)
	}
	return nil
}
