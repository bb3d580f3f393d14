package user

import (
	"context"
	"fmt"
	"sync"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return ErrNotFound (wrapped) when the requested user does not exist
// - Return ErrConflict (wrapped) when an insert would violate uniqueness
// - Return nil for successful operations
// MemoryStore keeps users in memory for tests/dev. Uniqueness is enforced on
// both username and email, matching the production unique indexes.
type MemoryStore struct {
	mu      sync.RWMutex
	byName  map[string]*models.User
	byEmail map[string]*models.User
}

// NewMemory constructs an empty in-memory user directory.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byName:  make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *MemoryStore) Exists(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byName[username]; ok {
		return true, nil
	}
	if email != "" {
		if _, ok := s.byEmail[email]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byName[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *MemoryStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[u.Username]; ok {
		return fmt.Errorf("username taken: %w", sentinel.ErrConflict)
	}
	if u.Email != "" {
		if _, ok := s.byEmail[u.Email]; ok {
			return fmt.Errorf("email taken: %w", sentinel.ErrConflict)
		}
	}
	copied := *u
	s.byName[u.Username] = &copied
	if u.Email != "" {
		s.byEmail[u.Email] = &copied
	}
	return nil
}
