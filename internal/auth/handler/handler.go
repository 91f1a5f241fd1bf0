// Package handler exposes identity endpoints: login, logout, current
// session, and the legacy bulk-user API the old mobile client still calls.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peakform/internal/auth/service"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/httputil"
	"peakform/pkg/requestcontext"
)

// Handler exposes identity endpoints.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// New constructs an auth handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public login endpoint. Mount under the unauthenticated
// group.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterProtected mounts endpoints that need a valid session. Mount under
// the RequireAuth group.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/session", h.HandleSession)
	r.Get("/auth/sessions", h.HandleListSessions)
	r.Get("/auth/activity", h.HandleActivity)
}

// RegisterLegacy mounts the old backend's bulk-user API at its original
// paths.
func (h *Handler) RegisterLegacy(r chi.Router) {
	r.Get("/api/users", h.HandleLegacyListUsers)
	r.Post("/api/users", h.HandleLegacyCreateUser)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if h.logger != nil && !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "login failed",
				"request_id", requestID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        toUserResponse(res.User),
	})
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	sessionID := requestcontext.SessionID(ctx)

	if err := h.svc.Logout(ctx, userID, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /auth/session.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, sess, err := h.svc.CurrentUser(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(u, sess))
}

// HandleListSessions handles GET /auth/sessions.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := h.svc.Sessions(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionInfo(sess))
	}
	httputil.WriteJSON(w, http.StatusOK, SessionListResponse{Sessions: out})
}

// HandleActivity handles GET /auth/activity.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.svc.Activity(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]ActivityEntry, 0, len(events))
	for _, e := range events {
		out = append(out, toActivityEntry(e))
	}
	httputil.WriteJSON(w, http.StatusOK, ActivityResponse{Events: out})
}

// HandleLegacyListUsers handles GET /api/users.
func (h *Handler) HandleLegacyListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]LegacyUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toLegacyUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleLegacyCreateUser handles POST /api/users.
func (h *Handler) HandleLegacyCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LegacyCreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.svc.Register(ctx, req.ToRegistration())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, _, err := h.svc.CurrentUser(ctx, res.UserID, res.SessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLegacyUserResponse(u))
}
