package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"peakform/internal/auth/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "session:user:"
)

// RedisStore is a Redis-backed session store. Sessions expire with the key;
// a revoked session is rewritten in place so revocation is visible until the
// natural expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed session store. The client lifecycle is
// managed externally.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func userIndexKey(userID id.UserID) string {
	return userIndexPrefix + userID.String()
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", sentinel.ErrInvalidState)
	}

	ok, err := s.client.SetNX(ctx, sessionKey(sess.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session already exists: %w", sentinel.ErrConflict)
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, userIndexKey(sess.UserID), sess.ID.String())
	pipe.Expire(ctx, userIndexKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID id.SessionID) error {
	sess, err := s.FindByID(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	sess.Revoke()
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// KeepTTL preserves the original expiry.
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var out []*models.Session
	for _, raw := range ids {
		sessionID, err := id.ParseSessionID(raw)
		if err != nil {
			continue
		}
		sess, err := s.FindByID(ctx, sessionID)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Session expired; drop the stale index entry.
			s.client.SRem(ctx, userIndexKey(userID), raw)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}
