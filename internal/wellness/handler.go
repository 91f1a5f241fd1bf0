package wellness

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/httputil"
	"peakform/pkg/requestcontext"
)

// Handler exposes the daily summary endpoint. Mount under RequireAuth.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler constructs a wellness handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts wellness endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/wellness/summary", h.HandleSummary)
}

// HandleSummary handles GET /wellness/summary?day=2026-03-01. The day
// defaults to today.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	day := requestcontext.Now(ctx)
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "day must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	summary, err := h.svc.DailySummary(ctx, userID, day)
	if err != nil {
		if h.logger != nil {
			h.logger.ErrorContext(ctx, "failed to aggregate wellness summary",
				"request_id", requestcontext.RequestID(ctx),
				"error", err)
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate summary"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
