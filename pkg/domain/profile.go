package domain

import dErrors "peakform/pkg/domain-errors"

// Gender is the declared gender on a profile.
// Invariant: the value is one of the supported genders, or GenderUnset while
// a registration draft is still being filled in.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var validGenders = map[Gender]bool{
	GenderMale:   true,
	GenderFemale: true,
}

// ParseGender constructs a Gender from external input. The empty string is
// rejected here; drafts carry GenderUnset internally until the profile step
// supplies a value.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderUnset, dErrors.New(dErrors.CodeInvalidInput, "gender cannot be empty")
	}
	g := Gender(s)
	if !g.IsValid() {
		return GenderUnset, dErrors.New(dErrors.CodeInvalidInput, "invalid gender")
	}
	return g, nil
}

func (g Gender) IsValid() bool  { return validGenders[g] }
func (g Gender) IsUnset() bool  { return g == GenderUnset }
func (g Gender) String() string { return string(g) }

// ActivityLevel is the declared weekly activity level, used downstream for
// calorie targets. Five levels, sedentary through extremely active.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "lightly_active"
	ActivityModerate   ActivityLevel = "moderately_active"
	ActivityVery       ActivityLevel = "very_active"
	ActivityExtreme    ActivityLevel = "extremely_active"
	ActivityUnsetLevel ActivityLevel = ""
)

var validActivityLevels = map[ActivityLevel]bool{
	ActivitySedentary: true,
	ActivityLight:     true,
	ActivityModerate:  true,
	ActivityVery:      true,
	ActivityExtreme:   true,
}

// ParseActivityLevel constructs an ActivityLevel from external input.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	if s == "" {
		return ActivityUnsetLevel, dErrors.New(dErrors.CodeInvalidInput, "activity level cannot be empty")
	}
	a := ActivityLevel(s)
	if !a.IsValid() {
		return ActivityUnsetLevel, dErrors.New(dErrors.CodeInvalidInput, "invalid activity level")
	}
	return a, nil
}

func (a ActivityLevel) IsValid() bool  { return validActivityLevels[a] }
func (a ActivityLevel) String() string { return string(a) }

// Goal identifies a coaching goal selected during registration.
type Goal string

const (
	GoalLoseWeight     Goal = "lose_weight"
	GoalBuildMuscle    Goal = "build_muscle"
	GoalImproveCardio  Goal = "improve_cardio"
	GoalEatHealthier   Goal = "eat_healthier"
	GoalReduceStress   Goal = "reduce_stress"
	GoalSleepBetter    Goal = "sleep_better"
	GoalStayConsistent Goal = "stay_consistent"
)

var validGoals = map[Goal]bool{
	GoalLoseWeight:     true,
	GoalBuildMuscle:    true,
	GoalImproveCardio:  true,
	GoalEatHealthier:   true,
	GoalReduceStress:   true,
	GoalSleepBetter:    true,
	GoalStayConsistent: true,
}

// ParseGoal constructs a Goal from external input.
func ParseGoal(s string) (Goal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "goal cannot be empty")
	}
	g := Goal(s)
	if !g.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid goal")
	}
	return g, nil
}

func (g Goal) IsValid() bool  { return validGoals[g] }
func (g Goal) String() string { return string(g) }

// Role discriminates user records persisted by registration.
type Role string

const (
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
)

var validRoles = map[Role]bool{
	RoleClient: true,
	RoleCoach:  true,
}

func (r Role) IsValid() bool  { return validRoles[r] }
func (r Role) String() string { return string(r) }
