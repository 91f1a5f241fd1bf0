package handler

import (
	"strings"
	"time"

	"peakform/internal/auth/models"
	regservice "peakform/internal/registration/service"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/audit"
)

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes and validates the request.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// LoginResponse is the HTTP response for a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse is the API view of an account.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role"`
	Goals         []string  `json:"goals"`
	Gender        string    `json:"gender,omitempty"`
	Age           int       `json:"age,omitempty"`
	HeightCm      int       `json:"height_cm,omitempty"`
	WeightKg      int       `json:"weight_kg,omitempty"`
	ActivityLevel string    `json:"activity_level,omitempty"`
	FavoriteSport string    `json:"favorite_sport,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	goals := make([]string, 0, len(u.Goals))
	for _, g := range u.Goals {
		goals = append(goals, g.String())
	}
	return UserResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		DisplayName:   u.DisplayName(),
		Role:          u.Role.String(),
		Goals:         goals,
		Gender:        u.Gender.String(),
		Age:           u.Age,
		HeightCm:      u.HeightCm,
		WeightKg:      u.WeightKg,
		ActivityLevel: u.ActivityLevel.String(),
		FavoriteSport: u.FavoriteSport,
		CreatedAt:     u.CreatedAt,
	}
}

// SessionResponse is the API view of the current session.
type SessionResponse struct {
	User    UserResponse `json:"user"`
	Session SessionInfo  `json:"session"`
}

// SessionInfo describes the signed-in device.
type SessionInfo struct {
	ID                string    `json:"id"`
	DeviceDisplayName string    `json:"device_display_name"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func toSessionResponse(u *models.User, sess *models.Session) SessionResponse {
	return SessionResponse{
		User:    toUserResponse(u),
		Session: toSessionInfo(sess),
	}
}

func toSessionInfo(sess *models.Session) SessionInfo {
	return SessionInfo{
		ID:                sess.ID.String(),
		DeviceDisplayName: sess.DeviceDisplayName,
		CreatedAt:         sess.CreatedAt,
		ExpiresAt:         sess.ExpiresAt,
	}
}

// SessionListResponse is the HTTP response for GET /auth/sessions.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ActivityResponse is the HTTP response for GET /auth/activity.
type ActivityResponse struct {
	Events []ActivityEntry `json:"events"`
}

// ActivityEntry is one recorded account action.
type ActivityEntry struct {
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toActivityEntry(e audit.Event) ActivityEntry {
	return ActivityEntry{
		Action:    e.Action,
		Reason:    e.Reason,
		Timestamp: e.Timestamp,
	}
}

// LegacyCreateUserRequest is the request body the old mobile client sends to
// POST /api/users. It bypasses the wizard, so validation is self-contained.
type LegacyCreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate normalizes and validates the request.
func (r *LegacyCreateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Password) < 6 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	return nil
}

// ToRegistration maps the legacy payload onto the registrar's input.
func (r *LegacyCreateUserRequest) ToRegistration() regservice.NewRegistration {
	return regservice.NewRegistration{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Role:      id.RoleClient,
	}
}

// LegacyUserResponse mirrors the old backend's wire shape, camelCase keys
// included.
type LegacyUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func toLegacyUserResponse(u *models.User) LegacyUserResponse {
	return LegacyUserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
	}
}
