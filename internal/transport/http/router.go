// Package http assembles the HTTP surface: middleware stack, versioned API
// groups, and operational endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "peakform/internal/auth/handler"
	gatehandler "peakform/internal/gate/handler"
	"peakform/internal/platform/middleware"
	reghandler "peakform/internal/registration/handler"
	"peakform/internal/wellness"
)

// Handlers collects the feature handlers the router mounts.
type Handlers struct {
	Auth     *authhandler.Handler
	Gate     *gatehandler.Handler
	Register *reghandler.Handler
	Wellness *wellness.Handler
	Sports   http.HandlerFunc
}

// Health reports dependency liveness for the health endpoint.
type Health func() error

// NewRouter wires the middleware stack and mounts all feature handlers.
func NewRouter(h Handlers, validator middleware.TokenValidator, logger *slog.Logger, health Health) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestMetadata)

	r.Route("/v1", func(r chi.Router) {
		// Public: login, the registration wizard, and the sport catalog.
		r.Group(func(r chi.Router) {
			h.Auth.Register(r)
			h.Register.Register(r)
			if h.Sports != nil {
				r.Get("/sports", h.Sports)
			}
		})

		// Gate: token optional; an invalid token means "signed out".
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(validator))
			h.Gate.Register(r)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, logger))
			h.Auth.RegisterProtected(r)
			h.Wellness.Register(r)
		})
	})

	// Legacy surface of the old companion server, original paths.
	h.Auth.RegisterLegacy(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unhealthy"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
