package router

import (
	"net/http"

	"compucar-promo/internal/handler"
	"compucar-promo/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	promoHandler *handler.PromoHandler,
	adminHandler *handler.AdminHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api/promotional-codes", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(apiKey, logger))

		// Validation runs on behalf of a shopper and needs their identity.
		r.With(middleware.RequireUser(logger)).Post("/validate", promoHandler.Validate)

		r.Post("/", adminHandler.Create)
		r.Get("/", adminHandler.List)
		r.Get("/{code}", adminHandler.Get)
		r.Post("/{code}/deactivate", adminHandler.Deactivate)
	})

	return r
}
