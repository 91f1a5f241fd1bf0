// Package service implements the identity operations: account creation for
// the registration wizard, credential login with transparent legacy-hash
// upgrades, and session lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"peakform/internal/auth/device"
	authmetrics "peakform/internal/auth/metrics"
	"peakform/internal/auth/models"
	"peakform/internal/auth/password"
	"peakform/internal/jwttoken"
	regservice "peakform/internal/registration/service"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/audit"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/requestcontext"
)

// UserStore persists accounts.
type UserStore interface {
	CreateIfEmailAvailable(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, sess *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Revoke(ctx context.Context, sessionID id.SessionID) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
}

// EventType classifies auth state transitions published to subscribers.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event notifies subscribers of an auth state change. The session gate
// subscribes so its auth-state input flips the moment a session starts or
// ends rather than on the next poll.
type Event struct {
	Type      EventType
	UserID    id.UserID
	SessionID id.SessionID
}

// LoginResult bundles everything a fresh sign-in produces.
type LoginResult struct {
	User        *models.User
	Session     *models.Session
	AccessToken string
	ExpiresAt   time.Time
}

// Service implements identity operations. It also satisfies the registration
// wizard's Registrar interface.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *jwttoken.Service
	tokenTTL time.Duration

	logger   *slog.Logger
	audit    audit.Publisher
	activity audit.Store
	metrics  *authmetrics.Metrics

	mu          sync.RWMutex
	subscribers []func(Event)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithActivityLog backs the account-activity listing with an audit store.
func WithActivityLog(store audit.Store) Option {
	return func(s *Service) { s.activity = store }
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(users UserStore, sessions SessionStore, tokens *jwttoken.Service, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers a callback for auth state changes. Callbacks run
// synchronously on the mutating goroutine and must be fast.
func (s *Service) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Service) publish(ev Event) {
	s.mu.RLock()
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Register creates an account from a completed wizard draft and signs the
// new user in. Implements regservice.Registrar.
func (s *Service) Register(ctx context.Context, reg regservice.NewRegistration) (*regservice.RegisteredUser, error) {
	hash, err := password.Hash(reg.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	u, err := models.NewUser(id.NewUserID(), reg.Email, hash, reg.Role, now)
	if err != nil {
		return nil, err
	}
	u.FirstName = reg.FirstName
	u.LastName = reg.LastName
	u.Goals = reg.Goals
	u.Gender = reg.Gender
	u.Age = reg.Age
	u.HeightCm = reg.HeightCm
	u.WeightKg = reg.WeightKg
	u.ActivityLevel = reg.ActivityLevel
	u.FavoriteSport = reg.FavoriteSport

	if err := s.users.CreateIfEmailAvailable(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventUserCreated),
		"user_id", u.ID.String(),
		"role", u.Role.String())
	if s.metrics != nil {
		s.metrics.IncUserCreated()
		if n, countErr := s.users.Count(ctx); countErr == nil {
			s.metrics.SetUsersTotal(n)
		}
	}

	res, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &regservice.RegisteredUser{
		UserID:      u.ID,
		SessionID:   res.Session.ID,
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
	}, nil
}

// Login verifies credentials and starts a session. A matching legacy hash is
// upgraded to bcrypt before the session is issued.
func (s *Service) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, "unknown_email", email)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	ok, needsRehash, err := password.Verify(pass, u.PasswordHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !ok {
		s.loginFailed(ctx, "bad_password", email)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	if needsRehash {
		s.upgradeHash(ctx, u, pass)
	}

	res, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncLogin()
	}
	return res, nil
}

// upgradeHash replaces a legacy hash with bcrypt. Failure is logged and
// swallowed: the login already succeeded and the legacy hash still works.
func (s *Service) upgradeHash(ctx context.Context, u *models.User, pass string) {
	newHash, err := password.Hash(pass)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, u.ID, newHash)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to upgrade legacy password hash",
				"user_id", u.ID.String(), "error", err)
		}
		return
	}
	u.PasswordHash = newHash
	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventPasswordRehash),
		"user_id", u.ID.String())
	if s.metrics != nil {
		s.metrics.IncPasswordUpgrade()
	}
}

func (s *Service) startSession(ctx context.Context, u *models.User) (*LoginResult, error) {
	now := requestcontext.Now(ctx)
	deviceName := device.ParseUserAgent(requestcontext.UserAgent(ctx))
	sess := models.NewSession(id.NewSessionID(), u.ID, deviceName, now, s.tokenTTL)

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, sess.ID, u.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventSessionCreated),
		"user_id", u.ID.String(),
		"session_id", sess.ID.String(),
		"device", deviceName)
	s.publish(Event{Type: EventSignedIn, UserID: u.ID, SessionID: sess.ID})

	return &LoginResult{
		User:        u,
		Session:     sess,
		AccessToken: token,
		ExpiresAt:   sess.ExpiresAt,
	}, nil
}

// Logout revokes the session. Idempotent.
func (s *Service) Logout(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventSessionRevoked),
		"user_id", userID.String(),
		"session_id", sessionID.String())
	if s.metrics != nil {
		s.metrics.IncSessionRevoked()
	}
	s.publish(Event{Type: EventSignedOut, UserID: userID, SessionID: sessionID})
	return nil
}

// CurrentUser loads the signed-in user and checks the session is still
// active.
func (s *Service) CurrentUser(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.User, *models.Session, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !sess.IsActive(requestcontext.Now(ctx)) || sess.UserID != userID {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "session is no longer active")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "user not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, sess, nil
}

// Sessions lists the user's sessions that are still active, newest first.
func (s *Service) Sessions(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	all, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}

	now := requestcontext.Now(ctx)
	active := make([]*models.Session, 0, len(all))
	for _, sess := range all {
		if sess.IsActive(now) {
			active = append(active, sess)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

// Activity returns the audit events recorded for the user, oldest first.
func (s *Service) Activity(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	if s.activity == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "activity log is not configured")
	}
	events, err := s.activity.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity")
	}
	return events, nil
}

// ListUsers returns all accounts, for the legacy bulk endpoint.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) loginFailed(ctx context.Context, reason, email string) {
	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventAuthFailed),
		"reason", reason,
		"email", email)
	if s.metrics != nil {
		s.metrics.IncLoginFailure(reason)
	}
}
