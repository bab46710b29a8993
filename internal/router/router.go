package router

import (
	"vendmatic-rest-api/internal/handler"
	"vendmatic-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	VendingHandler *handler.VendingHandler
	AdminHandler   *handler.AdminHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Unified status endpoint for monitoring
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Vending endpoints
		if cfg.VendingHandler != nil {
			r.Post("/purchase", cfg.VendingHandler.Purchase)

			r.Route("/slots", func(r chi.Router) {
				r.Post("/", cfg.VendingHandler.CreateSlot)
				r.Get("/", cfg.VendingHandler.ListSlots)

				r.Route("/{slot_id}", func(r chi.Router) {
					r.Get("/", cfg.VendingHandler.GetSlot)
					r.Delete("/", cfg.VendingHandler.DeleteSlot)
					r.Post("/stock", cfg.VendingHandler.StockSlot)
					r.Patch("/price", cfg.VendingHandler.SetPrice)
				})
			})
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Get("/purchases", cfg.AdminHandler.GetPurchases)
			})
		}
	})

	return r
}
