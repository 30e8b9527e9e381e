package repositories

import (
	"context"
	"sync"
	"time"
)

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

type memoryRateLimitRepository struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

// NewMemoryRateLimitRepository creates an in-memory counter store with the
// same windowing semantics as the Postgres upsert.
func NewMemoryRateLimitRepository() RateLimitRepository {
	return &memoryRateLimitRepository{entries: make(map[string]*rateLimitEntry)}
}

func (r *memoryRateLimitRepository) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	e, ok := r.entries[key]
	if !ok || now.After(e.expiresAt) {
		r.entries[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		return 1 <= limit, nil
	}
	e.count++
	return e.count <= limit, nil
}

func (r *memoryRateLimitRepository) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for k, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, k)
		}
	}
	return nil
}
