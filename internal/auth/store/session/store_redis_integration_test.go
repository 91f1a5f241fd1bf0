//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"peakform/internal/auth/models"
	"peakform/internal/auth/store/session"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/testutil/containers"
)

type RedisSessionSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisSessionSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionSuite))
}

func (s *RedisSessionSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisSessionSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func activeSession(userID id.UserID) *models.Session {
	return models.NewSession(id.NewSessionID(), userID, "Safari on iPhone", time.Now(), time.Hour)
}

func (s *RedisSessionSuite) TestCreateAndFind() {
	ctx := context.Background()
	sess := activeSession(id.NewUserID())

	s.Require().NoError(s.store.Create(ctx, sess))

	got, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, got.UserID)
	s.Equal(models.SessionStatusActive, got.Status)
}

func (s *RedisSessionSuite) TestCreateDuplicateConflicts() {
	ctx := context.Background()
	sess := activeSession(id.NewUserID())

	s.Require().NoError(s.store.Create(ctx, sess))
	s.Require().ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

func (s *RedisSessionSuite) TestRevokeSurvivesUntilExpiry() {
	ctx := context.Background()
	sess := activeSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, sess))

	s.Require().NoError(s.store.Revoke(ctx, sess.ID))

	got, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionStatusRevoked, got.Status)
	s.False(got.IsActive(time.Now()))
}

func (s *RedisSessionSuite) TestExpiredSessionDisappears() {
	ctx := context.Background()
	sess := models.NewSession(id.NewSessionID(), id.NewUserID(), "Test", time.Now(), time.Second)
	s.Require().NoError(s.store.Create(ctx, sess))

	time.Sleep(1500 * time.Millisecond)

	_, err := s.store.FindByID(ctx, sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionSuite) TestListByUserPrunesExpired() {
	ctx := context.Background()
	userID := id.NewUserID()
	long := activeSession(userID)
	short := models.NewSession(id.NewSessionID(), userID, "Test", time.Now(), time.Second)

	s.Require().NoError(s.store.Create(ctx, long))
	s.Require().NoError(s.store.Create(ctx, short))

	time.Sleep(1500 * time.Millisecond)

	sessions, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(long.ID, sessions[0].ID)
}
