package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"peakform/internal/gate"
	"peakform/internal/registration/models"
	"peakform/internal/registration/store/draft"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/audit"
	"peakform/pkg/requestcontext"
)

// fakeRegistrar records registrations and simulates duplicate-email refusal.
type fakeRegistrar struct {
	calls    []NewRegistration
	taken    map[string]bool
	failWith error
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{taken: make(map[string]bool)}
}

func (f *fakeRegistrar) Register(_ context.Context, reg NewRegistration) (*RegisteredUser, error) {
	f.calls = append(f.calls, reg)
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.taken[reg.Email] {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	f.taken[reg.Email] = true
	return &RegisteredUser{
		UserID:      id.NewUserID(),
		SessionID:   id.NewSessionID(),
		AccessToken: "token-" + reg.Email,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

type ServiceSuite struct {
	suite.Suite
	store     *draft.InMemoryStore
	registrar *fakeRegistrar
	auditLog  *audit.InMemoryStore
	svc       *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = draft.NewMemory(24*time.Hour, draft.WithClock(func() time.Time { return now }))
	s.registrar = newFakeRegistrar()
	s.auditLog = audit.NewInMemoryStore()
	s.svc = New(s.store, s.registrar, WithAuditPublisher(s.auditLog))
	s.ctx = requestcontext.WithTime(context.Background(), now)
}

func (s *ServiceSuite) fillComplete(w *models.Wizard) {
	w.Draft = models.Draft{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Goals:           []id.Goal{id.GoalBuildMuscle, id.GoalSleepBetter},
		Gender:          id.GenderFemale,
		Age:             "30",
		Height:          "170",
		Weight:          "60",
		ActivityLevel:   id.ActivityModerate,
		FavoriteSport:   "running",
		Email:           "ada@example.com",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	}
	s.Require().NoError(s.store.Save(s.ctx, w))
}

func (s *ServiceSuite) TestStart() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.StepNames, w.Step)
	s.Equal(models.Draft{}, w.Draft)

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(w.ID, got.ID)
}

func (s *ServiceSuite) TestGetUnknownWizard() {
	_, err := s.svc.Get(s.ctx, id.NewWizardID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateMergesWithoutValidation() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)

	first := "Ada"
	bogus := "not-an-email"
	got, err := s.svc.Update(s.ctx, w.ID, models.Patch{FirstName: &first, Email: &bogus})
	s.Require().NoError(err)
	s.Equal("Ada", got.Draft.FirstName)
	s.Equal("not-an-email", got.Draft.Email)
}

func (s *ServiceSuite) TestUpdateTouchesOnlyPatchedFields() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)

	addr := "grace.hopper@example.com"
	got, err := s.svc.Update(s.ctx, w.ID, models.Patch{Email: &addr})
	s.Require().NoError(err)
	s.Equal("grace.hopper@example.com", got.Draft.Email)
	s.Empty(got.Draft.FirstName)
	s.Empty(got.Draft.LastName)
}

func (s *ServiceSuite) TestAdvancePrefillsNamesFromEmail() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)

	addr := "grace.hopper@example.com"
	_, err = s.svc.Update(s.ctx, w.ID, models.Patch{Email: &addr})
	s.Require().NoError(err)

	got, err := s.svc.Advance(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(models.StepGoals, got.Step)
	s.Equal("Grace", got.Draft.FirstName)
	s.Equal("Hopper", got.Draft.LastName)
}

func (s *ServiceSuite) TestAdvanceDoesNotOverwriteTypedNames() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)

	first := "Ada"
	last := "Lovelace"
	addr := "grace.hopper@example.com"
	_, err = s.svc.Update(s.ctx, w.ID, models.Patch{FirstName: &first, LastName: &last, Email: &addr})
	s.Require().NoError(err)

	got, err := s.svc.Advance(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal("Ada", got.Draft.FirstName)
	s.Equal("Lovelace", got.Draft.LastName)
}

func (s *ServiceSuite) TestAdvanceGuarded() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)

	s.Run("empty names block advancing", func() {
		_, err := s.svc.Advance(s.ctx, w.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid names advance to goals", func() {
		first, last := "Ada", "Lovelace"
		_, err := s.svc.Update(s.ctx, w.ID, models.Patch{FirstName: &first, LastName: &last})
		s.Require().NoError(err)

		got, err := s.svc.Advance(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Equal(models.StepGoals, got.Step)
	})

	s.Run("advance persists", func() {
		got, err := s.svc.Get(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Equal(models.StepGoals, got.Step)
	})
}

func (s *ServiceSuite) TestBackKeepsFields() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	first, last := "Ada", "Lovelace"
	_, err = s.svc.Update(s.ctx, w.ID, models.Patch{FirstName: &first, LastName: &last})
	s.Require().NoError(err)
	_, err = s.svc.Advance(s.ctx, w.ID)
	s.Require().NoError(err)

	got, err := s.svc.Back(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(models.StepNames, got.Step)
	s.Equal("Ada", got.Draft.FirstName)
}

func (s *ServiceSuite) TestReset() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)

	got, err := s.svc.Reset(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(models.Draft{}, got.Draft)
	s.Equal(models.StepNames, got.Step)
}

func (s *ServiceSuite) TestSubmitHappyPath() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)

	res, err := s.svc.Submit(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Require().NotNil(res.User)
	s.False(res.User.UserID.IsNil())
	s.NotEmpty(res.User.AccessToken)
	s.Equal(gate.HomeRoute, res.Redirect)

	s.Run("registrar called exactly once with client role", func() {
		s.Require().Len(s.registrar.calls, 1)
		reg := s.registrar.calls[0]
		s.Equal(id.RoleClient, reg.Role)
		s.Equal("ada@example.com", reg.Email)
		s.Equal(30, reg.Age)
		s.Equal(170, reg.HeightCm)
		s.Equal(60, reg.WeightKg)
	})

	s.Run("wizard cleared after success", func() {
		_, err := s.svc.Get(s.ctx, w.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestSubmitRoutesBackOnInvalidNames() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)
	w.Draft.FirstName = "champion"
	w.Step = models.StepCredentials
	s.Require().NoError(s.store.Save(s.ctx, w))

	_, err = s.svc.Submit(s.ctx, w.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.registrar.calls)

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(models.StepNames, got.Step)
	s.Equal("Lovelace", got.Draft.LastName)
}

func (s *ServiceSuite) TestSubmitDuplicateEmailKeepsDraft() {
	s.registrar.taken["ada@example.com"] = true

	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)

	_, err = s.svc.Submit(s.ctx, w.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal("Ada", got.Draft.FirstName)
	s.Equal("ada@example.com", got.Draft.Email)
	s.Equal("secret-pass", got.Draft.Password)
}

func (s *ServiceSuite) TestSubmitRetryAfterDuplicateSucceeds() {
	s.registrar.taken["ada@example.com"] = true

	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)

	_, err = s.svc.Submit(s.ctx, w.ID)
	s.Require().Error(err)

	fixed := "ada.lovelace@example.com"
	_, err = s.svc.Update(s.ctx, w.ID, models.Patch{Email: &fixed})
	s.Require().NoError(err)

	res, err := s.svc.Submit(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal("ada.lovelace@example.com", s.registrar.calls[1].Email)
	s.NotNil(res.User)
}

func (s *ServiceSuite) TestSubmitInternalRegistrarError() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)
	s.registrar.failWith = dErrors.New(dErrors.CodeUnavailable, "identity store down")

	_, err = s.svc.Submit(s.ctx, w.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// Draft survives infrastructure failures too.
	_, err = s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestAuditTrail() {
	w, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.fillComplete(w)

	_, err = s.svc.Submit(s.ctx, w.ID)
	s.Require().NoError(err)

	var actions []string
	for _, e := range s.auditLog.All() {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventWizardStarted))
	s.Contains(actions, string(audit.EventWizardSubmitted))
}
