// Package domain holds shared domain primitives: typed identifiers and the
// enums the registration draft is built from. Construct values through the
// Parse* functions at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "peakform/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct Go types keep a WizardID from being passed
// where a UserID is expected; the compiler enforces the distinction.
type (
	UserID    uuid.UUID
	SessionID uuid.UUID
	WizardID  uuid.UUID
)

// NewUserID mints a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewSessionID mints a fresh random SessionID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewWizardID mints a fresh random WizardID.
func NewWizardID() WizardID { return WizardID(uuid.New()) }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseUserID validates external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseSessionID validates external input into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// ParseWizardID validates external input into a WizardID.
func ParseWizardID(s string) (WizardID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return WizardID{}, err
	}
	return WizardID(u), nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id WizardID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id WizardID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// MarshalText implementations keep the IDs JSON-friendly as their canonical
// string form rather than byte arrays.
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id WizardID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id *WizardID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = WizardID(u)
	return nil
}
