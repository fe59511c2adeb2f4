package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/wastenutrient/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is an in-process CacheProvider used when Redis is disabled.
type MemoryAdapter struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryAdapter creates a cache holding at most maxEntries values. When
// full, expired entries are dropped first, then the whole cache is reset.
func NewMemoryAdapter(maxEntries int) *MemoryAdapter {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryAdapter{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value from cache
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, providers.ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a value in cache with expiration; zero means no expiry
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evict()
	}

	var expiresAt time.Time
	if expirationSeconds > 0 {
		expiresAt = m.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryAdapter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryAdapter) evict() {
	now := m.now()
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	if len(m.entries) >= m.maxEntries {
		m.entries = make(map[string]memoryEntry)
	}
}
