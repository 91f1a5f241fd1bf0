package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "peakform/pkg/domain"
	"peakform/pkg/requestcontext"
)

// TokenValidator resolves a bearer token into the IDs it carries.
type TokenValidator interface {
	ExtractUserID(tokenString string) (id.UserID, error)
	ExtractSessionID(tokenString string) (id.SessionID, error)
}

const bearerPrefix = "Bearer "

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user and session IDs in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(r, validator)
			if !ok {
				requestID := requestcontext.RequestID(r.Context())
				logger.WarnContext(r.Context(), "unauthorized access",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves a bearer token when present but lets unauthenticated
// requests through. The gate endpoint needs this: an absent or invalid token
// is a legitimate "no current user" input, not an error.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctx, ok := authenticate(r, validator); ok {
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, validator TokenValidator) (context.Context, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok || token == "" {
		return nil, false
	}

	userID, err := validator.ExtractUserID(token)
	if err != nil {
		return nil, false
	}
	sessionID, err := validator.ExtractSessionID(token)
	if err != nil {
		return nil, false
	}

	ctx := r.Context()
	ctx = requestcontext.WithUserID(ctx, userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return ctx, true
}
