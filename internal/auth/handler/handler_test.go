package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"peakform/internal/auth/service"
	"peakform/internal/auth/store/session"
	"peakform/internal/auth/store/user"
	"peakform/internal/jwttoken"
	"peakform/internal/platform/middleware"
	regservice "peakform/internal/registration/service"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/audit"
	"peakform/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	router http.Handler
	svc    *service.Service
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tokens := jwttoken.NewService("test-signing-key", "peakform", "peakform-app")
	auditLog := audit.NewInMemoryStore()
	s.svc = service.New(user.NewMemory(), session.NewMemory(), tokens, time.Hour,
		service.WithLogger(logger),
		service.WithAuditPublisher(auditLog),
		service.WithActivityLog(auditLog),
	)
	h := New(s.svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestMetadata)
	r.Group(func(r chi.Router) {
		h.Register(r)
		h.RegisterLegacy(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, logger))
		h.RegisterProtected(r)
	})
	s.router = r
}

func (s *AuthHandlerSuite) register(email string) *regservice.RegisteredUser {
	res, err := s.svc.Register(s.T().Context(), regservice.NewRegistration{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret-pass",
		Role:      id.RoleClient,
	})
	s.Require().NoError(err)
	return res
}

func (s *AuthHandlerSuite) TestLoginHappyPath() {
	s.register("ada@example.com")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		map[string]string{"email": "ada@example.com", "password": "secret-pass"}))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[LoginResponse](s.T(), rr)
	s.NotEmpty(resp.AccessToken)
	s.Equal("ada@example.com", resp.User.Email)
	s.Equal("Ada Lovelace", resp.User.DisplayName)
	s.NotContains(rr.Body.String(), "password")
}

func (s *AuthHandlerSuite) TestLoginBadCredentials() {
	s.register("ada@example.com")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		map[string]string{"email": "ada@example.com", "password": "wrong-pass"}))

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(s.T(), rr, "unauthorized")
}

func (s *AuthHandlerSuite) TestLoginValidation() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		map[string]string{"email": "ada@example.com"}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "validation_failed")
}

func (s *AuthHandlerSuite) TestSessionRequiresToken() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth/session"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *AuthHandlerSuite) TestSessionWithToken() {
	reg := s.register("ada@example.com")

	req := testutil.NewRequest(s.T(), http.MethodGet, "/auth/session")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[SessionResponse](s.T(), rr)
	s.Equal("ada@example.com", resp.User.Email)
	s.Equal(reg.SessionID.String(), resp.Session.ID)
}

func (s *AuthHandlerSuite) TestListSessions() {
	reg := s.register("ada@example.com")
	login, err := s.svc.Login(s.T().Context(), "ada@example.com", "secret-pass")
	s.Require().NoError(err)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/auth/sessions")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[SessionListResponse](s.T(), rr)
	s.Require().Len(resp.Sessions, 2)
	seen := []string{resp.Sessions[0].ID, resp.Sessions[1].ID}
	s.Contains(seen, reg.SessionID.String())
	s.Contains(seen, login.Session.ID.String())
}

func (s *AuthHandlerSuite) TestLogoutEndsSession() {
	reg := s.register("ada@example.com")

	req := testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)

	req = testutil.NewRequest(s.T(), http.MethodGet, "/auth/session")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *AuthHandlerSuite) TestActivityListsOwnEvents() {
	reg := s.register("ada@example.com")

	req := testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, req), http.StatusNoContent)

	req = testutil.NewRequest(s.T(), http.MethodGet, "/auth/activity")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[ActivityResponse](s.T(), rr)
	s.Require().NotEmpty(resp.Events)
	var actions []string
	for _, e := range resp.Events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, "session_revoked")
}

func (s *AuthHandlerSuite) TestLegacyCreateAndList() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/users",
		map[string]string{
			"email":     "grace@example.com",
			"password":  "secret-pass",
			"firstName": "Grace",
			"lastName":  "Hopper",
		}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[LegacyUserResponse](s.T(), rr)
	s.Equal("Grace", created.FirstName)
	s.Equal("client", created.Role)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/users"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	users := testutil.UnmarshalResponse[[]LegacyUserResponse](s.T(), rr)
	s.Require().Len(*users, 1)
	s.Equal("grace@example.com", (*users)[0].Email)
}

func (s *AuthHandlerSuite) TestLegacyDuplicateEmail() {
	body := map[string]string{
		"email":     "grace@example.com",
		"password":  "secret-pass",
		"firstName": "Grace",
		"lastName":  "Hopper",
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/users", body))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/users", body))
	testutil.AssertStatus(s.T(), rr, http.StatusConflict)
}
