// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
// Tests inject fixed values (notably time via WithTime) to keep service logic
// deterministic.
package requestcontext

import (
	"context"
	"time"

	id "peakform/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey      struct{}
	sessionIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	userAgentKey   struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserID      = userIDKey{}
	ContextKeySessionID   = sessionIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyUserAgent   = userAgentKey{}
)

// WithUserID stores the authenticated user ID.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserID returns the authenticated user ID, or the zero value when absent.
func UserID(ctx context.Context) id.UserID {
	v, _ := ctx.Value(ContextKeyUserID).(id.UserID)
	return v
}

// WithSessionID stores the session ID resolved from the access token.
func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// SessionID returns the session ID, or the zero value when absent.
func SessionID(ctx context.Context) id.SessionID {
	v, _ := ctx.Value(ContextKeySessionID).(id.SessionID)
	return v
}

// WithRequestID stores the correlation ID assigned by middleware.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestID returns the correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRequestID).(string)
	return v
}

// WithUserAgent stores the raw User-Agent header for device naming.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, ua)
}

// UserAgent returns the raw User-Agent header, or "" when absent.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserAgent).(string)
	return v
}

// WithTime pins the request time. Middleware sets this once per request so
// every service observes the same instant; tests set it to a fixed time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// Now returns the pinned request time, falling back to the wall clock when no
// middleware has run (CLIs, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}
