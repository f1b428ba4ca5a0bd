package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/cache"
	"github.com/frahmantamala/leave-management/internal/conflict"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/toil"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Leave    *leave.Handler
	Balance  *balance.Handler
	Conflict *conflict.Handler
	Toil     *toil.Handler
	Cache    *cache.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
			})
		}

		if h.Auth == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.GetCurrentUser)

			if h.Leave != nil {
				pr.Route("/leave-requests", func(lr chi.Router) {
					lr.Post("/", h.Leave.SubmitLeaveRequest)
					lr.Get("/", h.Leave.ListMyLeaveRequests)
					lr.Get("/{id}", h.Leave.GetLeaveRequest)
					lr.Patch("/{id}/cancel", h.Leave.CancelLeaveRequest)

					// Approval decisions require the admin role
					lr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireAdmin)
						mr.Get("/pending", h.Leave.ListPendingLeaveRequests)
						mr.Patch("/{id}/approve", h.Leave.ApproveLeaveRequest)
						mr.Patch("/{id}/reject", h.Leave.RejectLeaveRequest)
						mr.Post("/bulk-approve", h.Leave.BulkApproveLeaveRequests)
						mr.Post("/bulk-reject", h.Leave.BulkRejectLeaveRequests)
					})
				})
			}

			if h.Balance != nil {
				pr.Route("/balances", func(br chi.Router) {
					br.Get("/me", h.Balance.GetMyBalance)
					br.Get("/{userID}", h.Balance.GetUserBalance)

					br.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireAdmin)
						mr.Get("/", h.Balance.GetBalances)
					})
				})
			}

			if h.Conflict != nil {
				pr.Post("/conflicts/check", h.Conflict.CheckConflict)
			}

			if h.Toil != nil {
				pr.Route("/toil-entries", func(tr chi.Router) {
					tr.Post("/", h.Toil.CreditToil)
					tr.Get("/", h.Toil.ListToilEntries)

					tr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireAdmin)
						mr.Patch("/{id}/approve", h.Toil.ApproveToil)
						mr.Patch("/{id}/reject", h.Toil.RejectToil)
					})
				})
			}

			// Admin surfaces
			pr.Group(func(mr chi.Router) {
				mr.Use(middleware.RequireAdmin)
				if h.User != nil {
					mr.Get("/users", h.User.ListUsers)
				}
				if h.Cache != nil {
					mr.Get("/admin/cache/stats", h.Cache.GetStats)
					mr.Delete("/admin/cache", h.Cache.Clear)
				}
			})
		})
	})
}
