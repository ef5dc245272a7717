package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the default in-process Limiter
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewMemoryLimiter creates an in-process attempt limiter
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// TooManyRecent reports whether the key already has Limit failures inside
// the window
func (l *MemoryLimiter) TooManyRecent(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := l.pruneLocked(key, l.now())
	return len(pruned) >= Limit, nil
}

// AddFailure records one failed attempt for the key
func (l *MemoryLimiter) AddFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := l.pruneLocked(key, l.now())
	pruned = append(pruned, l.now())
	l.attempts[key] = pruned
	return nil
}

// Reset clears the key
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	return nil
}

func (l *MemoryLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := l.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-Window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(l.attempts, key)
		return []time.Time{}
	}

	l.attempts[key] = pruned
	return pruned
}
