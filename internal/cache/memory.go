package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// memoryStore is an in-process Store backed by an LRU, used for the
// "memory://" cache URL scheme, and the backend an empty cache URL
// selects. Its contents do not survive a restart.
type memoryStore struct {
	entries *lru.Cache
}

func newMemoryStore(size int) (*memoryStore, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("cache: creating memory store: %w", err)
	}
	return &memoryStore{entries: entries}, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (interface{}, bool, error) {
	value, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}) error {
	m.entries.Add(key, value)
	return nil
}
