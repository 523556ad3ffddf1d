package adapters

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements ports.SuppressionStore with an in-process map.
// Expired entries are swept lazily before each lookup; the table stays
// bounded by active alert traffic.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an in-process suppression store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Seen checks whether key fired within the window and records the attempt
// when it has not.
func (m *MemoryStore) Seen(_ context.Context, key string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for k, at := range m.entries {
		if now.Sub(at) > window {
			delete(m.entries, k)
		}
	}

	if at, ok := m.entries[key]; ok && now.Sub(at) <= window {
		return true, nil
	}

	m.entries[key] = now
	return false, nil
}
