package repository

import (
	"context"
	"sync"
	"time"
)

// maxAttemptEntries caps the map. At the cap expired entries are pruned, and if none have
// expired the entry with the earliest window end is evicted.
const maxAttemptEntries = 10000

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryAttemptRepository counts failed logins in process memory. It is the default when no
// Redis URL is configured and is only accurate for a single gateway instance.
type MemoryAttemptRepository struct {
	mu      sync.Mutex
	entries    map[string]attemptEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryAttemptRepository creates an empty in-memory attempt counter.
func NewMemoryAttemptRepository() *MemoryAttemptRepository {
	return &MemoryAttemptRepository{
		entries:    make(map[string]attemptEntry),
		maxEntries: maxAttemptEntries,
		now:        time.Now,
	}
}

// Failures returns the live failure count for key and the time left in its window.
func (r *MemoryAttemptRepository) Failures(_ context.Context, key string) (int, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.entries[key]
	if !ok {
		return 0, 0, nil
	}
	if !now.Before(entry.expiresAt) {
		delete(r.entries, key)
		return 0, 0, nil
	}
	return entry.count, entry.expiresAt.Sub(now), nil
}

// RegisterFailure increments the count for key, opening a window on the first failure.
func (r *MemoryAttemptRepository) RegisterFailure(_ context.Context, key string, window time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.entries[key]
	if !ok && len(r.entries) >= r.maxEntries {
		r.sweep(now)
		if len(r.entries) >= r.maxEntries {
			r.evictOldest()
		}
	}

	if !ok || !now.Before(entry.expiresAt) {
		entry = attemptEntry{expiresAt: now.Add(window)}
	}
	entry.count++
	r.entries[key] = entry

	return entry.count, nil
}

// Reset forgets key.
func (r *MemoryAttemptRepository) Reset(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
	return nil
}

// sweep drops expired entries. Callers must hold mu.
func (r *MemoryAttemptRepository) sweep(now time.Time) {
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
		}
	}
}

// evictOldest drops the entry whose window ends first. Callers must hold mu.
func (r *MemoryAttemptRepository) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range r.entries {
		if !found || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.expiresAt, true
		}
	}
	if found {
		delete(r.entries, oldestKey)
	}
}
