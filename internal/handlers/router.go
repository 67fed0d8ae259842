package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires every route and the shared middleware stack.
func NewRouter(h *Handlers, corsOrigin string) http.Handler {
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/", h.Home)
	r.Get("/healthz", h.Health)

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Post("/transactions", h.AddTransaction)
	r.Get("/transactions/{user_id:[0-9]+}", h.ListTransactions)
	r.Get("/balance/{user_id:[0-9]+}", h.Balance)
	r.Get("/charts/expense_by_reason/{user_id:[0-9]+}", h.ExpenseByReason)

	return r
}
