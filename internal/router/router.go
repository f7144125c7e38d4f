package router

import (
	"bizgifts-bot/internal/handler"
	"bizgifts-bot/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating the ops router.
type Config struct {
	Handler      *handler.Handler
	AdminHandler *handler.AdminHandler
	OpsKey       string
}

// New creates and configures the ops HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Ops-Key"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
	}

	// Operator routes behind the ops key
	if cfg.AdminHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OpsKey(cfg.OpsKey))
			r.Get("/api/v1/admin/stats", cfg.AdminHandler.GetStats)
		})
	}

	return r
}
