/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a frontend

AUTHENTICATION:
  None here. Session handling is an upstream collaborator; the resolved
  owner id arrives in the X-Owner-ID header and requests without one get
  400. See handlers.go.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Owner-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Submissions
		r.Route("/setup", func(r chi.Router) {
			r.Post("/account", h.SetupAccount)
			r.Post("/accounts", h.SetupAccountBatch)
			r.Post("/goal", h.SetupGoal)
			r.Post("/debt", h.SetupDebt)
		})
		r.Post("/entries", h.CreateEntry)

		// Reads
		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/{id}/entries", h.ListAccountEntries)
		r.Get("/debts", h.ListDebts)

		// Suggestions
		r.Route("/suggest", func(r chi.Router) {
			r.Get("/accounts", h.SuggestAccounts)
			r.Get("/entry-types", h.SuggestEntryTypes)
		})
	})

	return r
}
