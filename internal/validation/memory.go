package validation

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often the background sweeper evicts stale entries.
// Eviction is a memory-safety backstop; expiry is also enforced
// synchronously at consume time.
const sweepInterval = 60 * time.Second

// MemoryStore is the default in-process Store. It does not survive
// restarts and does not scale across instances; a deploy mid-PIN-setup
// forces the visitor to restart the identity flow. Use RedisStore for
// multi-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Identity
	done    chan struct{}
	now     func() time.Time
}

// NewMemoryStore creates a memory store and starts its sweeper
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]Identity),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.sweep()
	return s
}

// Create stores the identity under a fresh random token
func (s *MemoryStore) Create(_ context.Context, id Identity) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	id.CreatedAt = s.now()

	s.mu.Lock()
	s.entries[token] = id
	s.mu.Unlock()

	return token, nil
}

// Consume looks up and deletes the token in one step. Expired entries are
// rejected here by timestamp comparison, independent of the sweeper.
func (s *MemoryStore) Consume(_ context.Context, token string) (*Identity, error) {
	s.mu.Lock()
	id, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Sub(id.CreatedAt) > TTL {
		return nil, ErrNotFound
	}
	return &id, nil
}

// Close stops the background sweeper
func (s *MemoryStore) Close() {
	close(s.done)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) evictExpired() {
	threshold := s.now().Add(-TTL)
	s.mu.Lock()
	for token, id := range s.entries {
		if id.CreatedAt.Before(threshold) {
			delete(s.entries, token)
		}
	}
	s.mu.Unlock()
}
