package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

// Clock abstracts time.Now so expiry can be tested deterministically.
type Clock func() time.Time

// Error Contract:
// All store methods follow this pattern:
//   - Return ErrNotFound (wrapped) when no live entry exists for the key;
//     an expired entry behaves exactly as if it were absent
//   - Return nil for successful operations
//   - Return wrapped errors with context for infrastructure failures
type entry struct {
	code      int
	payload   models.PendingRegistration
	expiresAt time.Time
}

// MemoryStore holds pending registrations in memory for tests/dev. Expiry is
// checked lazily on read; a Put for an existing key overwrites it.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemory constructs an empty in-memory verification code store.
func NewMemory(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, key string, code int, payload models.PendingRegistration, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		code:      code,
		payload:   payload,
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int, models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, models.PendingRegistration{}, fmt.Errorf("pending registration not found: %w", sentinel.ErrNotFound)
	}
	if !e.expiresAt.After(s.clock()) {
		delete(s.entries, key)
		// An expired entry behaves as absent to callers routing on ErrNotFound;
		// ErrExpired rides along so diagnostics can tell the two apart.
		return 0, models.PendingRegistration{}, fmt.Errorf("pending registration %w: %w", sentinel.ErrExpired, sentinel.ErrNotFound)
	}
	return e.code, e.payload, nil
}

func (s *MemoryStore) Consume(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
