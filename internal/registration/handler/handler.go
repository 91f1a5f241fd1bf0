// Package handler exposes the registration wizard over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peakform/internal/registration/service"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/httputil"
	"peakform/pkg/requestcontext"
)

// Handler exposes wizard endpoints. All of them are unauthenticated: the
// wizard exists precisely because there is no signed-in user yet. A wizard is
// addressed by its unguessable ID.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// New constructs a registration handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts wizard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/register", func(r chi.Router) {
		r.Post("/start", h.HandleStart)
		r.Route("/{wizardID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Patch("/", h.HandleUpdate)
			r.Post("/advance", h.HandleAdvance)
			r.Post("/back", h.HandleBack)
			r.Post("/reset", h.HandleReset)
			r.Post("/submit", h.HandleSubmit)
		})
	})
}

// HandleStart handles POST /register/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wizard, err := h.svc.Start(ctx)
	if err != nil {
		h.logError(r, "failed to start wizard", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toWizardResponse(wizard))
}

// HandleGet handles GET /register/{wizardID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	wizard, err := h.svc.Get(r.Context(), wizardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWizardResponse(wizard))
}

// HandleUpdate handles PATCH /register/{wizardID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	wizard, err := h.svc.Update(ctx, wizardID, req.ToPatch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWizardResponse(wizard))
}

// HandleAdvance handles POST /register/{wizardID}/advance.
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	wizard, err := h.svc.Advance(r.Context(), wizardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWizardResponse(wizard))
}

// HandleBack handles POST /register/{wizardID}/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	wizard, err := h.svc.Back(r.Context(), wizardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWizardResponse(wizard))
}

// HandleReset handles POST /register/{wizardID}/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	wizard, err := h.svc.Reset(r.Context(), wizardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWizardResponse(wizard))
}

// HandleSubmit handles POST /register/{wizardID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wizardID, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Submit(ctx, wizardID)
	if err != nil {
		h.logError(r, "wizard submission rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSubmitResponse(res))
}

func (h *Handler) wizardID(w http.ResponseWriter, r *http.Request) (id.WizardID, bool) {
	wizardID, err := id.ParseWizardID(chi.URLParam(r, "wizardID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.WizardID{}, false
	}
	return wizardID, true
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if h.logger == nil {
		return
	}
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
