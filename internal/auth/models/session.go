package models

import (
	"time"

	id "peakform/pkg/domain"
)

// SessionStatus tracks the lifecycle of a session.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusRevoked SessionStatus = "revoked"
)

// Session is one signed-in device.
type Session struct {
	ID                id.SessionID  `json:"id"`
	UserID            id.UserID     `json:"user_id"`
	Status            SessionStatus `json:"status"`
	DeviceDisplayName string        `json:"device_display_name"`
	CreatedAt         time.Time     `json:"created_at"`
	ExpiresAt         time.Time     `json:"expires_at"`
	LastSeenAt        time.Time     `json:"last_seen_at"`
}

// NewSession constructs an active session.
func NewSession(sessionID id.SessionID, userID id.UserID, deviceName string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:                sessionID,
		UserID:            userID,
		Status:            SessionStatusActive,
		DeviceDisplayName: deviceName,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
		LastSeenAt:        now,
	}
}

// IsActive reports whether the session can still authenticate requests.
func (s *Session) IsActive(now time.Time) bool {
	return s.Status == SessionStatusActive && now.Before(s.ExpiresAt)
}

// Revoke marks the session unusable.
func (s *Session) Revoke() {
	s.Status = SessionStatusRevoked
}
