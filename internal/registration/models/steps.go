package models

import (
	"time"

	"peakform/internal/catalog"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// Step is the wizard's position. The sequencing the mobile client used to
// enforce implicitly through screen order is an explicit transition table
// here, so "no field is required before its owning step" is testable.
type Step string

const (
	StepNames       Step = "names"
	StepGoals       Step = "goals"
	StepProfile     Step = "profile"
	StepSport       Step = "sport"
	StepActivity    Step = "activity"
	StepCredentials Step = "credentials"
	StepDone        Step = "done"
)

// stepOrder is the single linear path through the wizard.
var stepOrder = []Step{
	StepNames,
	StepGoals,
	StepProfile,
	StepSport,
	StepActivity,
	StepCredentials,
	StepDone,
}

var stepIndex = func() map[Step]int {
	m := make(map[Step]int, len(stepOrder))
	for i, s := range stepOrder {
		m[s] = i
	}
	return m
}()

// WizardRoutes are the shell routes of the wizard steps, all inside the
// auth-route set.
var WizardRoutes = map[Step]string{
	StepNames:       "auth/register",
	StepGoals:       "auth/register/goals",
	StepProfile:     "auth/register/profile",
	StepSport:       "auth/register/sport",
	StepActivity:    "auth/register/activity",
	StepCredentials: "auth/register/credentials",
}

func (s Step) IsValid() bool {
	_, ok := stepIndex[s]
	return ok
}

func (s Step) String() string { return string(s) }

// Next returns the step after s, or s itself when already at the end.
func (s Step) Next() Step {
	i, ok := stepIndex[s]
	if !ok || i == len(stepOrder)-1 {
		return s
	}
	return stepOrder[i+1]
}

// Prev returns the step before s, or s itself when at the start. Backward
// navigation is always permitted and never clears entered fields.
func (s Step) Prev() Step {
	i, ok := stepIndex[s]
	if !ok || i == 0 {
		return s
	}
	return stepOrder[i-1]
}

// Guard checks whether the fields owned by step s permit advancing. Only the
// owning step's fields are examined; earlier steps were gated when they ran
// and later ones have not run yet.
func (s Step) Guard(d Draft) error {
	switch s {
	case StepNames:
		if err := ValidateName("first name", d.FirstName); err != nil {
			return err
		}
		return ValidateName("last name", d.LastName)

	case StepGoals:
		if len(d.Goals) == 0 {
			return dErrors.New(dErrors.CodeValidation, "select at least one goal")
		}
		for _, g := range d.Goals {
			if !g.IsValid() {
				return dErrors.New(dErrors.CodeValidation, "unknown goal: "+g.String())
			}
		}
		return nil

	case StepProfile:
		if d.Gender.IsUnset() || !d.Gender.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "gender is required")
		}
		if err := ValidateNumericRange("age", d.Age, 13, 120); err != nil {
			return err
		}
		if err := ValidateNumericRange("height", d.Height, 100, 250); err != nil {
			return err
		}
		return ValidateNumericRange("weight", d.Weight, 30, 300)

	case StepSport:
		if d.FavoriteSport == "" {
			return dErrors.New(dErrors.CodeValidation, "favorite sport is required")
		}
		if !catalog.IsValidID(d.FavoriteSport) {
			return dErrors.New(dErrors.CodeValidation, "unknown sport: "+d.FavoriteSport)
		}
		return nil

	case StepActivity:
		if !d.ActivityLevel.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "activity level is required")
		}
		return nil

	case StepCredentials:
		if err := ValidateEmail(d.Email); err != nil {
			return err
		}
		return ValidatePasswords(d.Password, d.ConfirmPassword)

	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "wizard is already complete")
	}
}

// Wizard is one client's registration wizard: the draft plus its position.
type Wizard struct {
	ID        id.WizardID `json:"id"`
	Step      Step        `json:"step"`
	Draft     Draft       `json:"draft"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewWizard starts an empty wizard at the names step.
func NewWizard(wizardID id.WizardID, now time.Time) *Wizard {
	return &Wizard{
		ID:        wizardID,
		Step:      StepNames,
		Draft:     Draft{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanAdvance checks the current step's guard. Use with ApplyAdvance.
func (w *Wizard) CanAdvance() error {
	if w.Step == StepDone {
		return dErrors.New(dErrors.CodeInvariantViolation, "wizard is already complete")
	}
	return w.Step.Guard(w.Draft)
}

// ApplyAdvance moves the wizard forward. Call CanAdvance first.
func (w *Wizard) ApplyAdvance(now time.Time) {
	w.Step = w.Step.Next()
	w.UpdatedAt = now
}

// ApplyBack moves the wizard backward without touching the draft.
func (w *Wizard) ApplyBack(now time.Time) {
	w.Step = w.Step.Prev()
	w.UpdatedAt = now
}
