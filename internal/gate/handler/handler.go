package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peakform/internal/gate"
	gatemetrics "peakform/internal/gate/metrics"
	"peakform/pkg/platform/httputil"
	"peakform/pkg/requestcontext"
)

// Handler exposes the session gate to the mobile app shell. The shell calls
// the route endpoint on every navigation; the response is the navigation
// command (or lack of one) the shell should execute.
type Handler struct {
	registry *gate.Registry
	logger   *slog.Logger
	metrics  *gatemetrics.Metrics
}

// New constructs a gate handler with its dependencies.
func New(registry *gate.Registry, logger *slog.Logger, metrics *gatemetrics.Metrics) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts gate endpoints on the router. The route must be wrapped in
// OptionalAuth middleware: an invalid token is a "no current user" input
// here, never a 401.
func (h *Handler) Register(r chi.Router) {
	r.Post("/gate/route", h.HandleRoute)
}

// HandleRoute handles POST /gate/route requests.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RouteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID := requestcontext.UserID(ctx)
	sessionID := requestcontext.SessionID(ctx)

	key := req.InstallID
	if !sessionID.IsNil() {
		key = sessionID.String()
	}

	st := gate.AuthState{UserPresent: !userID.IsNil()}
	g := h.registry.Get(key)
	cmd := g.Report(ctx, st, req.Route)

	if h.metrics != nil {
		h.metrics.IncEvaluation()
	}

	resp := RouteResponse{
		Decision: string(gate.Decide(st, req.Route)),
		Blocking: g.Blocking(),
	}
	if cmd != nil {
		resp.Redirect = true
		resp.Target = cmd.Target
		h.logger.InfoContext(ctx, "redirect issued",
			"request_id", requestID,
			"route", req.Route,
			"target", cmd.Target,
			"user_present", st.UserPresent,
		)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
