package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process TopicCache used in tests and when no Redis
// instance is configured. Entries expire lazily on read.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]time.Time),
	}
}

func (m *MemoryCache) Close() error {
	return nil
}

func (m *MemoryCache) IsRecent(ctx context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, exists := m.data[hash]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(m.data, hash)
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) MarkUsed(ctx context.Context, hash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[hash] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]time.Time)
	return nil
}
