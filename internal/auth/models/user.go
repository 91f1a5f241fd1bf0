package models

import (
	"time"

	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// User is a registered account with its coaching profile. The profile fields
// mirror what the registration wizard collects.
type User struct {
	ID            id.UserID         `json:"id"`
	Email         string            `json:"email"`
	PasswordHash  string            `json:"-"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Role          id.Role           `json:"role"`
	Goals         []id.Goal         `json:"goals"`
	Gender        id.Gender         `json:"gender"`
	Age           int               `json:"age"`
	HeightCm      int               `json:"height_cm"`
	WeightKg      int               `json:"weight_kg"`
	ActivityLevel id.ActivityLevel  `json:"activity_level"`
	FavoriteSport string            `json:"favorite_sport"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewUser constructs a user, checking structural invariants. Field-level
// validation happened upstream; this guards against programming errors.
func NewUser(userID id.UserID, email, passwordHash string, role id.Role, now time.Time) (*User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id cannot be nil")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DisplayName is the name shown in the app header.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
