package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"budget-server/src/config"
	"budget-server/src/handlers"
	"budget-server/src/middleware"
	"budget-server/src/store"
)

func NewRouter(st store.Store, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handlers.Register(st, cfg.AdminEmail))
		r.Post("/login", handlers.Login(st, cfg.AdminEmail))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(st, cfg.AdminEmail))
			r.Use(middleware.ReadOnlyMiddleware(cfg.ReadOnly))

			// User
			r.Get("/user/{user_id}", handlers.GetUser(st))
			r.Put("/user", handlers.UpdateUser(st))
			r.Post("/user/change-password", handlers.ChangePassword(st))

			// Transactions
			r.Get("/categories", handlers.ListCategories())
			r.Post("/transactions", handlers.CreateTransaction(st))
			r.Get("/transactions", handlers.ListTransactions(st, cfg.AdminEmail))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(st))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(st))

			// Summaries
			r.Get("/summary/totals", handlers.SummaryTotals(st, cfg.AdminEmail))
			r.Get("/summary/monthly", handlers.SummaryMonthly(st, cfg.AdminEmail))
			r.Get("/summary/categories", handlers.SummaryCategories(st, cfg.AdminEmail))

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminMiddleware)
				r.Get("/admin/users", handlers.ListUsers(st))
				r.Post("/admin/users/{user_id}/approve", handlers.ApproveUser(st))
				r.Delete("/admin/users/{user_id}/reject", handlers.RejectUser(st))
				r.Delete("/admin/users/{user_id}", handlers.RemoveUser(st))
			})
		})
	})

	return r
}
