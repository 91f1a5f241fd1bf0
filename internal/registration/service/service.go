// Package service orchestrates the registration wizard: draft accumulation,
// step sequencing, and the final hand-off to the identity registrar.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"peakform/internal/gate"
	regmetrics "peakform/internal/registration/metrics"
	"peakform/internal/registration/models"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/email"
	"peakform/pkg/platform/audit"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/requestcontext"
)

// DraftStore persists in-progress wizards.
type DraftStore interface {
	Create(ctx context.Context, w *models.Wizard) error
	Get(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error)
	Save(ctx context.Context, w *models.Wizard) error
	Delete(ctx context.Context, wizardID id.WizardID) error
}

// NewRegistration is the completed draft, handed to the identity registrar.
type NewRegistration struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	Role          id.Role
	Goals         []id.Goal
	Gender        id.Gender
	Age           int
	HeightCm      int
	WeightKg      int
	ActivityLevel id.ActivityLevel
	FavoriteSport string
}

// RegisteredUser is what the registrar returns on success: the new account
// plus an already-issued session, so the client lands signed in.
type RegisteredUser struct {
	UserID      id.UserID
	SessionID   id.SessionID
	AccessToken string
	ExpiresAt   time.Time
}

// Registrar creates the account. A duplicate email must surface as
// CodeConflict and must not mutate anything.
type Registrar interface {
	Register(ctx context.Context, reg NewRegistration) (*RegisteredUser, error)
}

// SubmitResult is returned on successful submission.
type SubmitResult struct {
	User     *RegisteredUser
	Redirect string
}

// Service runs the registration wizard.
type Service struct {
	drafts    DraftStore
	registrar Registrar
	logger    *slog.Logger
	audit     audit.Publisher
	metrics   *regmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(drafts DraftStore, registrar Registrar, opts ...Option) *Service {
	s := &Service{drafts: drafts, registrar: registrar}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start opens a fresh wizard with an empty draft.
func (s *Service) Start(ctx context.Context) (*models.Wizard, error) {
	w := models.NewWizard(id.NewWizardID(), requestcontext.Now(ctx))
	if err := s.drafts.Create(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start wizard")
	}

	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventWizardStarted),
		"wizard_id", w.ID.String())
	if s.metrics != nil {
		s.metrics.IncStarted()
	}
	return w, nil
}

// Get returns the wizard's current draft and position.
func (s *Service) Get(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	return s.load(ctx, wizardID)
}

// Update merges a patch into the draft. Fields absent from the patch are
// never touched, and no validation runs here; step guards own that.
func (s *Service) Update(ctx context.Context, wizardID id.WizardID, patch models.Patch) (*models.Wizard, error) {
	w, err := s.load(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	w.Draft.Apply(patch)
	w.UpdatedAt = requestcontext.Now(ctx)

	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return w, nil
}

// prefillNames suggests names from the email's local part when the user gave
// an email before typing names. Suggestions only: any typed name wins.
func (s *Service) prefillNames(w *models.Wizard) {
	if w.Draft.Email == "" || w.Draft.FirstName != "" || w.Draft.LastName != "" {
		return
	}
	first, last := email.DeriveNameFromEmail(w.Draft.Email)
	w.Draft.FirstName = first
	w.Draft.LastName = last
}

// Advance moves forward one step after the current step's guard passes.
// Leaving the names step with both names blank first tries the email-derived
// prefill, so the suggestion lands only at that gate, never on a plain patch.
func (s *Service) Advance(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	w, err := s.load(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	if w.Step == models.StepNames {
		s.prefillNames(w)
	}
	if err := w.CanAdvance(); err != nil {
		if s.metrics != nil {
			s.metrics.IncValidationFailure(w.Step.String())
		}
		audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventWizardValidationFault),
			"wizard_id", w.ID.String(),
			"step", w.Step.String(),
			"reason", dErrors.MessageOf(err))
		return nil, err
	}

	w.ApplyAdvance(requestcontext.Now(ctx))
	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return w, nil
}

// Back moves one step backward. Never guarded, never clears fields.
func (s *Service) Back(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	w, err := s.load(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	w.ApplyBack(requestcontext.Now(ctx))
	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return w, nil
}

// Reset clears every draft field and returns the wizard to the first step.
func (s *Service) Reset(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	w, err := s.load(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	w.Draft.Reset()
	w.Step = models.StepNames
	w.UpdatedAt = requestcontext.Now(ctx)

	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return w, nil
}

// submitSteps is the re-validation order at the final gate.
var submitSteps = []models.Step{
	models.StepNames,
	models.StepGoals,
	models.StepProfile,
	models.StepSport,
	models.StepActivity,
	models.StepCredentials,
}

// Submit re-validates the whole draft, registers the account, and clears the
// wizard. On any guard failure the wizard is routed back to the offending
// step with the draft intact. On a duplicate email the draft survives so the
// user can correct just the email.
func (s *Service) Submit(ctx context.Context, wizardID id.WizardID) (*SubmitResult, error) {
	w, err := s.load(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	for _, step := range submitSteps {
		if guardErr := step.Guard(w.Draft); guardErr != nil {
			w.Step = step
			w.UpdatedAt = requestcontext.Now(ctx)
			if saveErr := s.drafts.Save(ctx, w); saveErr != nil {
				return nil, dErrors.Wrap(saveErr, dErrors.CodeInternal, "failed to save draft")
			}
			if s.metrics != nil {
				s.metrics.IncSubmitRejected("validation")
			}
			audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventWizardValidationFault),
				"wizard_id", w.ID.String(),
				"step", step.String(),
				"reason", dErrors.MessageOf(guardErr))
			return nil, guardErr
		}
	}

	reg := buildRegistration(w.Draft)
	user, err := s.registrar.Register(ctx, reg)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) || errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.IncSubmitRejected("duplicate_email")
			}
			audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventRegistrationRejected),
				"wizard_id", w.ID.String(),
				"reason", "duplicate_email")
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
	}

	if err := s.drafts.Delete(ctx, w.ID); err != nil {
		// The account exists; a leftover draft only costs its TTL.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete submitted wizard",
				"wizard_id", w.ID.String(), "error", err)
		}
	}

	audit.LogAudit(ctx, s.logger, s.audit, string(audit.EventWizardSubmitted),
		"wizard_id", w.ID.String(),
		"user_id", user.UserID.String())
	if s.metrics != nil {
		s.metrics.IncSubmitted()
	}

	return &SubmitResult{User: user, Redirect: gate.HomeRoute}, nil
}

func (s *Service) load(ctx context.Context, wizardID id.WizardID) (*models.Wizard, error) {
	w, err := s.drafts.Get(ctx, wizardID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "wizard not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wizard")
	}
	return w, nil
}

func buildRegistration(d models.Draft) NewRegistration {
	// Guards ran before this point, so the numeric fields parse.
	age, _ := strconv.Atoi(d.Age)
	height, _ := strconv.Atoi(d.Height)
	weight, _ := strconv.Atoi(d.Weight)

	return NewRegistration{
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Password:      d.Password,
		Role:          id.RoleClient,
		Goals:         d.Goals,
		Gender:        d.Gender,
		Age:           age,
		HeightCm:      height,
		WeightKg:      weight,
		ActivityLevel: d.ActivityLevel,
		FavoriteSport: d.FavoriteSport,
	}
}
