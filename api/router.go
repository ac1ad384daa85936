// Package api exposes the liquidity operations as a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler, allowedOrigins []string, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.With().Str("component", "api").Logger()))
	r.Use(middleware.Recoverer)
	r.Use(newCORS(allowedOrigins).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/system/health", h.Health)

		r.Get("/settle", h.Settle)
		r.Get("/latest-request", h.LatestRequest)
		r.Post("/match", h.Match)

		r.Post("/timeline", h.Timeline)
		r.Post("/advice", h.Advice)
		r.Post("/adherence", h.Adherence)
		r.Post("/plan", h.Plan)
		r.Post("/batch/plan", h.BatchPlan)
	})
	return r
}
