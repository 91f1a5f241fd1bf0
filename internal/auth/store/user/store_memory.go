package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"peakform/internal/auth/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the user does not exist
// - Return ErrConflict when the email is already taken
// - Return nil for successful operations

// InMemoryStore stores users in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// CreateIfEmailAvailable inserts the user unless the email is taken. The
// check-and-insert is atomic under the store lock, so two concurrent
// registrations for the same email cannot both succeed.
func (s *InMemoryStore) CreateIfEmailAvailable(_ context.Context, u *models.User) error {
	key := emailKey(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[key] = u.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cp := *s.users[userID]
	return &cp, nil
}

// UpdatePasswordHash swaps the stored hash, used for transparent upgrades of
// legacy hashes after login.
func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, userID id.UserID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

// List returns all users ordered by creation time. Serves the legacy bulk
// endpoint.
func (s *InMemoryStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
