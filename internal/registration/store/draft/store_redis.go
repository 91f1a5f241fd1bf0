package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"peakform/internal/registration/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

const wizardKeyPrefix = "wizard:draft:"

// RedisStore is a Redis-backed draft store for multi-instance deployments.
// Every write refreshes the key's TTL, so abandonment is measured from the
// last touch, matching the in-memory store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed draft store. The client lifecycle is
// managed externally.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func wizardKey(wizardID id.WizardID) string {
	return wizardKeyPrefix + wizardID.String()
}

// wizardRecord is the persisted shape. The draft's password fields are
// excluded from API JSON, but the store must round-trip them so a draft
// survives the hop between the credentials step and submit.
type wizardRecord struct {
	models.Wizard
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func encodeWizard(w *models.Wizard) ([]byte, error) {
	rec := wizardRecord{
		Wizard:          *w,
		Password:        w.Draft.Password,
		ConfirmPassword: w.Draft.ConfirmPassword,
	}
	return json.Marshal(rec)
}

func decodeWizard(raw []byte) (*models.Wizard, error) {
	var rec wizardRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	w := rec.Wizard
	w.Draft.Password = rec.Password
	w.Draft.ConfirmPassword = rec.ConfirmPassword
	return &w, nil
}

func (s *RedisStore) Create(ctx context.Context, w *models.Wizard) error {
	payload, err := encodeWizard(w)
	if err != nil {
		return fmt.Errorf("marshal wizard: %w", err)
	}
	ok, err := s.client.SetNX(ctx, wizardKey(w.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create wizard: %w", err)
	}
	if !ok {
		return fmt.Errorf("wizard already exists: %w", sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	raw, err := s.client.Get(ctx, wizardKey(wizardID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("wizard not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get wizard: %w", err)
	}
	w, err := decodeWizard(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal wizard: %w", err)
	}
	return w, nil
}

func (s *RedisStore) Save(ctx context.Context, w *models.Wizard) error {
	payload, err := encodeWizard(w)
	if err != nil {
		return fmt.Errorf("marshal wizard: %w", err)
	}
	// XX: only overwrite an existing key, so Save cannot resurrect an
	// expired draft.
	ok, err := s.client.SetXX(ctx, wizardKey(w.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save wizard: %w", err)
	}
	if !ok {
		return fmt.Errorf("wizard not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, wizardID id.WizardID) error {
	if err := s.client.Del(ctx, wizardKey(wizardID)).Err(); err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}
	return nil
}
