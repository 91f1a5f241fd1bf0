package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"peakform/internal/registration/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the wizard does not exist or its draft expired
// - Return ErrConflict when creating an ID that already exists
// - Return nil for successful operations

// InMemoryStore holds wizard drafts in memory for tests/dev and
// single-instance deployments. Expired drafts are reclaimed lazily: any
// access past the TTL removes the entry and reports not found.
type InMemoryStore struct {
	mu      sync.RWMutex
	wizards map[id.WizardID]*models.Wizard
	ttl     time.Duration
	now     func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemory constructs an empty in-memory draft store. ttl <= 0 disables
// expiry.
func NewMemory(ttl time.Duration, opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		wizards: make(map[id.WizardID]*models.Wizard),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, w *models.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.wizards[w.ID]; ok && !s.expired(existing) {
		return fmt.Errorf("wizard already exists: %w", sentinel.ErrConflict)
	}
	cp := *w
	s.wizards[w.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[wizardID]
	if !ok {
		return nil, fmt.Errorf("wizard not found: %w", sentinel.ErrNotFound)
	}
	if s.expired(w) {
		delete(s.wizards, wizardID)
		return nil, fmt.Errorf("wizard draft expired: %w", sentinel.ErrNotFound)
	}
	cp := *w
	return &cp, nil
}

func (s *InMemoryStore) Save(_ context.Context, w *models.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wizards[w.ID]; !ok {
		return fmt.Errorf("wizard not found: %w", sentinel.ErrNotFound)
	}
	cp := *w
	s.wizards[w.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, wizardID id.WizardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, wizardID)
	return nil
}

// Len reports the number of live drafts. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wizards)
}

func (s *InMemoryStore) expired(w *models.Wizard) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(w.UpdatedAt) > s.ttl
}
