package service

import (
	"context"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	authmetrics "peakform/internal/auth/metrics"
	"peakform/internal/auth/models"
	"peakform/internal/auth/password"
	"peakform/internal/auth/store/session"
	"peakform/internal/auth/store/user"
	"peakform/internal/jwttoken"
	regservice "peakform/internal/registration/service"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/audit"
	"peakform/pkg/requestcontext"
)

type AuthServiceSuite struct {
	suite.Suite
	users    *user.InMemoryStore
	sessions *session.InMemoryStore
	svc      *Service
	ctx      context.Context
	events   []Event
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.users = user.NewMemory()
	s.sessions = session.NewMemory()
	tokens := jwttoken.NewService("test-signing-key", "peakform", "peakform-app")
	s.svc = New(s.users, s.sessions, tokens, time.Hour)
	s.events = nil
	s.svc.Subscribe(func(ev Event) { s.events = append(s.events, ev) })
	s.ctx = requestcontext.WithUserAgent(context.Background(),
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
}

func (s *AuthServiceSuite) registration(email string) regservice.NewRegistration {
	return regservice.NewRegistration{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         email,
		Password:      "secret-pass",
		Role:          id.RoleClient,
		Goals:         []id.Goal{id.GoalBuildMuscle},
		Gender:        id.GenderFemale,
		Age:           30,
		HeightCm:      170,
		WeightKg:      60,
		ActivityLevel: id.ActivityModerate,
		FavoriteSport: "running",
	}
}

func (s *AuthServiceSuite) TestRegisterCreatesAccountAndSession() {
	res, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)
	s.False(res.UserID.IsNil())
	s.False(res.SessionID.IsNil())
	s.NotEmpty(res.AccessToken)

	u, err := s.users.FindByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(id.RoleClient, u.Role)
	s.Equal("Ada Lovelace", u.DisplayName())
	s.NotEqual("secret-pass", u.PasswordHash, "password is stored hashed")

	s.Run("signed-in event published", func() {
		s.Require().Len(s.events, 1)
		s.Equal(EventSignedIn, s.events[0].Type)
		s.Equal(res.UserID, s.events[0].UserID)
	})
}

func (s *AuthServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)

	_, err = s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AuthServiceSuite) TestLoginHappyPath() {
	reg, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)

	res, err := s.svc.Login(s.ctx, "ada@example.com", "secret-pass")
	s.Require().NoError(err)
	s.Equal(reg.UserID, res.User.ID)
	s.NotEmpty(res.AccessToken)
	s.Contains(res.Session.DeviceDisplayName, "Chrome")
}

func (s *AuthServiceSuite) TestLoginWrongPassword() {
	_, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)

	_, err = s.svc.Login(s.ctx, "ada@example.com", "wrong-pass")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthServiceSuite) TestLoginUnknownEmail() {
	_, err := s.svc.Login(s.ctx, "nobody@example.com", "secret-pass")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized),
		"unknown email and bad password are indistinguishable")
}

func (s *AuthServiceSuite) TestLoginUpgradesLegacyHash() {
	now := time.Now()
	u, err := models.NewUser(id.NewUserID(), "legacy@example.com",
		password.LegacyHash("secret-pass"), id.RoleClient, now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfEmailAvailable(s.ctx, u))

	res, err := s.svc.Login(s.ctx, "legacy@example.com", "secret-pass")
	s.Require().NoError(err)
	s.Require().NotNil(res)

	stored, err := s.users.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(password.IsLegacy(stored.PasswordHash), "hash upgraded to bcrypt")

	s.Run("subsequent login verifies against the new hash", func() {
		_, err := s.svc.Login(s.ctx, "legacy@example.com", "secret-pass")
		s.Require().NoError(err)
	})
}

func (s *AuthServiceSuite) TestLogoutRevokesAndPublishes() {
	reg, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)
	s.events = nil

	s.Require().NoError(s.svc.Logout(s.ctx, reg.UserID, reg.SessionID))

	sess, err := s.sessions.FindByID(s.ctx, reg.SessionID)
	s.Require().NoError(err)
	s.Equal(models.SessionStatusRevoked, sess.Status)

	s.Require().Len(s.events, 1)
	s.Equal(EventSignedOut, s.events[0].Type)

	s.Run("logout is idempotent", func() {
		s.Require().NoError(s.svc.Logout(s.ctx, reg.UserID, reg.SessionID))
	})
}

func (s *AuthServiceSuite) TestCurrentUser() {
	reg, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)

	u, sess, err := s.svc.CurrentUser(s.ctx, reg.UserID, reg.SessionID)
	s.Require().NoError(err)
	s.Equal(reg.UserID, u.ID)
	s.Equal(reg.SessionID, sess.ID)

	s.Run("revoked session is unauthorized", func() {
		s.Require().NoError(s.svc.Logout(s.ctx, reg.UserID, reg.SessionID))
		_, _, err := s.svc.CurrentUser(s.ctx, reg.UserID, reg.SessionID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthServiceSuite) TestCurrentUserSessionOwnershipChecked() {
	reg, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)
	other, err := s.svc.Register(s.ctx, s.registration("eve@example.com"))
	s.Require().NoError(err)

	_, _, err = s.svc.CurrentUser(s.ctx, reg.UserID, other.SessionID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthServiceSuite) TestActivityListsUserEvents() {
	auditLog := audit.NewInMemoryStore()
	tokens := jwttoken.NewService("test-signing-key", "peakform", "peakform-app")
	svc := New(s.users, s.sessions, tokens, time.Hour,
		WithAuditPublisher(auditLog),
		WithActivityLog(auditLog),
	)

	reg, err := svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)

	ctx := requestcontext.WithUserID(s.ctx, reg.UserID)
	s.Require().NoError(svc.Logout(ctx, reg.UserID, reg.SessionID))

	events, err := svc.Activity(ctx, reg.UserID)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	s.Equal(string(audit.EventSessionRevoked), events[len(events)-1].Action)

	s.Run("unconfigured store is unavailable", func() {
		_, err := s.svc.Activity(ctx, reg.UserID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *AuthServiceSuite) TestRegisterTracksUserTotal() {
	m := authmetrics.New()
	tokens := jwttoken.NewService("test-signing-key", "peakform", "peakform-app")
	svc := New(s.users, s.sessions, tokens, time.Hour, WithMetrics(m))

	_, err := svc.Register(s.ctx, s.registration("a@example.com"))
	s.Require().NoError(err)
	_, err = svc.Register(s.ctx, s.registration("b@example.com"))
	s.Require().NoError(err)

	s.Equal(float64(2), promtestutil.ToFloat64(m.UsersTotal))
}

func (s *AuthServiceSuite) TestSessionsListsOnlyActive() {
	reg, err := s.svc.Register(s.ctx, s.registration("ada@example.com"))
	s.Require().NoError(err)
	login, err := s.svc.Login(s.ctx, "ada@example.com", "secret-pass")
	s.Require().NoError(err)

	sessions, err := s.svc.Sessions(s.ctx, reg.UserID)
	s.Require().NoError(err)
	s.Len(sessions, 2)

	s.Require().NoError(s.svc.Logout(s.ctx, reg.UserID, login.Session.ID))

	sessions, err = s.svc.Sessions(s.ctx, reg.UserID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(reg.SessionID, sessions[0].ID)
}

func (s *AuthServiceSuite) TestListUsers() {
	_, err := s.svc.Register(s.ctx, s.registration("a@example.com"))
	s.Require().NoError(err)
	_, err = s.svc.Register(s.ctx, s.registration("b@example.com"))
	s.Require().NoError(err)

	users, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 2)
}
