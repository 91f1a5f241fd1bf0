// Package audit captures security-relevant actions emitted from domain logic.
// Events stay transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"log/slog"
	"time"

	id "peakform/pkg/domain"
	"peakform/pkg/requestcontext"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	Reason    string
	Email     string
	RequestID string
}

type AuditEvent string

const (
	// Identity events
	EventUserCreated    AuditEvent = "user_created"
	EventSessionCreated AuditEvent = "session_created"
	EventSessionRevoked AuditEvent = "session_revoked"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventPasswordRehash AuditEvent = "password_rehashed"

	// Registration wizard events
	EventWizardStarted         AuditEvent = "wizard_started"
	EventWizardSubmitted       AuditEvent = "wizard_submitted"
	EventRegistrationRejected  AuditEvent = "registration_rejected"
	EventWizardValidationFault AuditEvent = "wizard_validation_failed"

	// Gate events
	EventRedirectIssued     AuditEvent = "redirect_issued"
	EventRedirectSuppressed AuditEvent = "redirect_suppressed"
)

// Publisher emits audit events for security-relevant operations.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// LogAudit is a shared helper for emitting audit events across services.
// It logs to both the structured logger and the audit publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, event string, attrs ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}

	args := append(attrs, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}
	e := Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    requestcontext.UserID(ctx),
		Action:    event,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
