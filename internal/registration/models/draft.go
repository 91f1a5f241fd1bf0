package models

import (
	"regexp"
	"strconv"
	"strings"

	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// Draft is the in-progress registration record accumulated across wizard
// steps. The zero value is the initial empty draft: all strings "", no goals,
// gender unset.
//
// Invariants:
//   - mutated only through Apply (whole-field merge); fields absent from a
//     patch are never touched
//   - goals keep insertion order and contain no duplicates
//   - no per-field validation happens on merge; each step's guard validates
//     the fields it owns, and Submit re-validates everything
type Draft struct {
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Goals           []id.Goal        `json:"goals"`
	Gender          id.Gender        `json:"gender"`
	Age             string           `json:"age"`
	Height          string           `json:"height"`
	Weight          string           `json:"weight"`
	ActivityLevel   id.ActivityLevel `json:"activity_level"`
	FavoriteSport   string           `json:"favorite_sport"`
	Email           string           `json:"email"`
	Password        string           `json:"-"`
	ConfirmPassword string           `json:"-"`
}

// Patch is a partial draft update. Nil fields are left unchanged by Apply;
// non-nil fields replace the draft's value wholesale.
type Patch struct {
	FirstName       *string           `json:"first_name"`
	LastName        *string           `json:"last_name"`
	Goals           *[]id.Goal        `json:"goals"`
	Gender          *id.Gender        `json:"gender"`
	Age             *string           `json:"age"`
	Height          *string           `json:"height"`
	Weight          *string           `json:"weight"`
	ActivityLevel   *id.ActivityLevel `json:"activity_level"`
	FavoriteSport   *string           `json:"favorite_sport"`
	Email           *string           `json:"email"`
	Password        *string           `json:"password"`
	ConfirmPassword *string           `json:"confirm_password"`
}

// Apply shallow-merges the patch into the draft. Goal lists are deduplicated
// preserving first-seen order; everything else is a plain replace.
func (d *Draft) Apply(p Patch) {
	if p.FirstName != nil {
		d.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		d.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Goals != nil {
		d.Goals = dedupeGoals(*p.Goals)
	}
	if p.Gender != nil {
		d.Gender = *p.Gender
	}
	if p.Age != nil {
		d.Age = strings.TrimSpace(*p.Age)
	}
	if p.Height != nil {
		d.Height = strings.TrimSpace(*p.Height)
	}
	if p.Weight != nil {
		d.Weight = strings.TrimSpace(*p.Weight)
	}
	if p.ActivityLevel != nil {
		d.ActivityLevel = *p.ActivityLevel
	}
	if p.FavoriteSport != nil {
		d.FavoriteSport = strings.TrimSpace(*p.FavoriteSport)
	}
	if p.Email != nil {
		d.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Password != nil {
		d.Password = *p.Password
	}
	if p.ConfirmPassword != nil {
		d.ConfirmPassword = *p.ConfirmPassword
	}
}

// Reset returns the draft to the initial empty value.
func (d *Draft) Reset() {
	*d = Draft{}
}

func dedupeGoals(goals []id.Goal) []id.Goal {
	seen := make(map[id.Goal]bool, len(goals))
	out := make([]id.Goal, 0, len(goals))
	for _, g := range goals {
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// placeholderToken is the blacklisted placeholder the mobile client once
// shipped as a default value. Names or emails still carrying it indicate a
// corrupted or tampered draft.
const placeholderToken = "champion"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minNameLen = 2
const minPasswordLen = 6

// ValidateName checks one name field against the shared rules: non-empty,
// minimum length, free of the placeholder token.
func ValidateName(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	if len([]rune(value)) < minNameLen {
		return dErrors.New(dErrors.CodeValidation, field+" must be at least 2 characters")
	}
	if strings.Contains(strings.ToLower(value), placeholderToken) {
		return dErrors.New(dErrors.CodeValidation, field+" contains a forbidden placeholder")
	}
	return nil
}

// ValidateEmail checks format and the placeholder blacklist.
func ValidateEmail(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !emailPattern.MatchString(value) {
		return dErrors.New(dErrors.CodeValidation, "email format is invalid")
	}
	if strings.Contains(strings.ToLower(value), placeholderToken) {
		return dErrors.New(dErrors.CodeValidation, "email contains a forbidden placeholder")
	}
	return nil
}

// ValidatePasswords checks length and the confirmation match.
func ValidatePasswords(password, confirm string) error {
	if password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if len(password) < minPasswordLen {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if password != confirm {
		return dErrors.New(dErrors.CodeValidation, "password confirmation does not match")
	}
	return nil
}

// ValidateNumericRange parses numeric text collected by the profile step and
// checks bounds.
func ValidateNumericRange(field, value string, min, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, field+" must be a number")
	}
	if n < min || n > max {
		return dErrors.New(dErrors.CodeValidation, field+" is out of range")
	}
	return nil
}
