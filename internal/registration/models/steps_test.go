package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// completeDraft returns a draft every step's guard accepts.
func completeDraft() Draft {
	return Draft{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Goals:           []id.Goal{id.GoalBuildMuscle},
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
}

func TestStepOrder(t *testing.T) {
	t.Run("forward walks the full path", func(t *testing.T) {
		s := StepNames
		var visited []Step
		for s != StepDone {
			visited = append(visited, s)
			s = s.Next()
		}
		assert.Equal(t, []Step{StepNames, StepGoals, StepProfile, StepSport, StepActivity, StepCredentials}, visited)
	})

	t.Run("next saturates at done", func(t *testing.T) {
		assert.Equal(t, StepDone, StepDone.Next())
	})

	t.Run("prev saturates at names", func(t *testing.T) {
		assert.Equal(t, StepNames, StepNames.Prev())
	})

	t.Run("prev undoes next", func(t *testing.T) {
		for _, s := range []Step{StepNames, StepGoals, StepProfile, StepSport, StepActivity} {
			assert.Equal(t, s, s.Next().Prev())
		}
	})
}

func TestStepGuards(t *testing.T) {
	t.Run("complete draft passes every guard", func(t *testing.T) {
		d := completeDraft()
		for _, s := range []Step{StepNames, StepGoals, StepProfile, StepSport, StepActivity, StepCredentials} {
			require.NoError(t, s.Guard(d), "step %s", s)
		}
	})

	t.Run("each guard only checks its own fields", func(t *testing.T) {
		// Empty draft with only names filled: names passes, everything
		// later fails on its own fields.
		d := Draft{FirstName: "Ada", LastName: "Lovelace"}
		require.NoError(t, StepNames.Guard(d))
		require.Error(t, StepGoals.Guard(d))
		require.Error(t, StepProfile.Guard(d))
	})

	t.Run("names guard rejects short name", func(t *testing.T) {
		d := completeDraft()
		d.LastName = "L"
		err := StepNames.Guard(d)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("goals guard rejects empty selection", func(t *testing.T) {
		d := completeDraft()
		d.Goals = nil
		require.Error(t, StepGoals.Guard(d))
	})

	t.Run("goals guard rejects unknown goal", func(t *testing.T) {
		d := completeDraft()
		d.Goals = []id.Goal{"win_olympics"}
		require.Error(t, StepGoals.Guard(d))
	})

	t.Run("profile guard rejects unset gender", func(t *testing.T) {
		d := completeDraft()
		d.Gender = id.GenderUnset
		require.Error(t, StepProfile.Guard(d))
	})

	t.Run("profile guard rejects age out of range", func(t *testing.T) {
		d := completeDraft()
		d.Age = "9"
		require.Error(t, StepProfile.Guard(d))
	})

	t.Run("sport guard rejects unknown sport", func(t *testing.T) {
		d := completeDraft()
		d.FavoriteSport = "underwater-chess"
		require.Error(t, StepSport.Guard(d))
	})

	t.Run("activity guard rejects missing level", func(t *testing.T) {
		d := completeDraft()
		d.ActivityLevel = ""
		require.Error(t, StepActivity.Guard(d))
	})

	t.Run("credentials guard rejects mismatched passwords", func(t *testing.T) {
		d := completeDraft()
		d.ConfirmPassword = "other-pass"
		require.Error(t, StepCredentials.Guard(d))
	})

	t.Run("credentials guard rejects placeholder email", func(t *testing.T) {
		d := completeDraft()
		d.Email = "champion@example.com"
		require.Error(t, StepCredentials.Guard(d))
	})

	t.Run("done guard rejects further advancing", func(t *testing.T) {
		err := StepDone.Guard(completeDraft())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestWizardNavigation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	wizardID := id.NewWizardID()

	t.Run("new wizard starts empty at names", func(t *testing.T) {
		w := NewWizard(wizardID, now)
		assert.Equal(t, StepNames, w.Step)
		assert.Equal(t, Draft{}, w.Draft)
		assert.Equal(t, now, w.CreatedAt)
	})

	t.Run("advance requires the current guard", func(t *testing.T) {
		w := NewWizard(wizardID, now)
		require.Error(t, w.CanAdvance())

		w.Draft.Apply(Patch{FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")})
		require.NoError(t, w.CanAdvance())

		w.ApplyAdvance(now.Add(time.Minute))
		assert.Equal(t, StepGoals, w.Step)
		assert.Equal(t, now.Add(time.Minute), w.UpdatedAt)
	})

	t.Run("back is always allowed and keeps fields", func(t *testing.T) {
		w := NewWizard(wizardID, now)
		w.Draft.Apply(Patch{FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")})
		require.NoError(t, w.CanAdvance())
		w.ApplyAdvance(now)

		// Goals guard would fail, but going back needs no guard.
		w.ApplyBack(now.Add(time.Minute))
		assert.Equal(t, StepNames, w.Step)
		assert.Equal(t, "Ada", w.Draft.FirstName)
		assert.Equal(t, "Lovelace", w.Draft.LastName)
	})

	t.Run("advance refused once done", func(t *testing.T) {
		w := NewWizard(wizardID, now)
		w.Draft = completeDraft()
		for w.Step != StepDone {
			require.NoError(t, w.CanAdvance())
			w.ApplyAdvance(now)
		}
		require.Error(t, w.CanAdvance())
	})
}
