/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accounts/*      Ledger accounts and balances
  /api/transactions/*  Transaction reconciliation and tagging
  /api/investments/*   Investment tracking
  /api/tags/*          Tag management
  /api/categories/*    Budget and life-area categories

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
// allowedOrigins feeds the CORS middleware; empty means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Account routes
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.OpenAccount)
			r.Get("/{id}", h.GetAccount)
			r.Get("/{id}/balance", h.GetAccountBalance)
			r.Get("/{id}/transfers", h.ListAccountTransfers)
		})

		// Transaction routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Get("/{id}", h.GetTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
			r.Get("/{id}/tags", h.ListTransactionTags)
			r.Post("/{id}/tags", h.AttachTransactionTags)
			r.Delete("/{id}/tags/{tagID}", h.DetachTransactionTag)
		})

		// Investment routes
		r.Route("/investments", func(r chi.Router) {
			r.Get("/", h.ListInvestments)
			r.Post("/", h.CreateInvestment)
			r.Get("/{id}", h.GetInvestment)
			r.Post("/{id}/value", h.UpdateInvestmentValue)
			r.Get("/{id}/history", h.ListInvestmentHistory)
			r.Get("/{id}/operations", h.ListInvestmentOperations)
		})

		// Tag routes
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.Post("/", h.CreateTag)
			r.Delete("/{id}", h.ArchiveTag)
		})

		// Category routes
		r.Route("/categories", func(r chi.Router) {
			r.Route("/budget", func(r chi.Router) {
				r.Get("/", h.ListBudgetCategories)
				r.Post("/", h.CreateBudgetCategory)
				r.Delete("/{id}", h.DeleteBudgetCategory)
			})
			r.Route("/life-areas", func(r chi.Router) {
				r.Get("/", h.ListLifeAreaCategories)
				r.Post("/", h.CreateLifeAreaCategory)
				r.Put("/{id}", h.UpdateLifeAreaCategory)
				r.Delete("/{id}", h.DeleteLifeAreaCategory)
			})
		})
	})

	return r
}
