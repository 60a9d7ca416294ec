package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/middleware"
)

// RouteOptions carries the cross-cutting pieces the route table needs.
// LoginLimit and Metrics may be nil.
type RouteOptions struct {
	Tokens     middleware.TokenParser
	LoginLimit func(http.Handler) http.Handler
	Metrics    http.Handler
}

// Register mounts every endpoint on r: operational endpoints at the root and
// the API under /api/v1.
func (s *Server) Register(r chi.Router, opts RouteOptions) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.LoginLimit != nil {
				r.Use(opts.LoginLimit)
			}
			r.Post("/auth/login", s.Login)
		})
		r.Post("/auth/forgot-password", s.ForgotPassword)
		r.Post("/auth/reset-password", s.ResetPassword)
		r.Get("/auth/validate-reset-token", s.ValidateResetToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Tokens))

			// Downloads are shared with owners.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleOwner))
				r.Get("/boat/documents/{filename}", s.DownloadDocument)
				r.Get("/payments/receipts/{filename}", s.DownloadReceipt)
				r.Get("/owner/dashboard/{userId}", s.GetOwnerDashboard)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				s.adminRoutes(r)
			})
		})
	})
}

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/auth", s.ListOwners)
	r.Post("/auth/create-owner", s.CreateOwner)
	r.Get("/auth/{id}", s.GetOwner)
	r.Put("/auth/{id}", s.UpdateOwner)
	r.Delete("/auth/{id}", s.DeleteOwner)
	r.Patch("/auth/{id}/password", s.ChangePassword)

	r.Get("/boat", s.ListBoats)
	r.Post("/boat", s.CreateBoat)
	r.Get("/boat/{boatId}", s.GetBoat)
	r.Put("/boat/{boatId}", s.UpdateBoat)
	r.Delete("/boat/{boatId}", s.DeleteBoat)
	r.Put("/boat/{boatId}/owner/{ownerId}", s.AssignOwner)
	r.Put("/boat/{boatId}/owner/{ownerId}/manual", s.AssignOwnerManual)
	r.Delete("/boat/{boatId}/owner", s.UnassignOwner)
	r.Get("/boat/{boatId}/documents", s.ListDocuments)
	r.Post("/boat/{boatId}/documents", s.UploadDocument)
	r.Put("/boat/{boatId}/documents/{documentId}", s.RenameDocument)
	r.Delete("/boat/{boatId}/documents/{documentId}", s.DeleteDocument)

	r.Get("/maintenances", s.ListMaintenances)
	r.Get("/maintenances/{id}", s.GetMaintenance)
	r.Put("/maintenances/{id}", s.UpdateMaintenance)
	r.Delete("/maintenances/{id}", s.DeleteMaintenance)
	r.Get("/maintenances/boat/{boatId}", s.ListBoatMaintenances)
	r.Post("/maintenances/boat/{boatId}", s.CreateMaintenance)

	r.Get("/payments", s.ListPayments)
	r.Get("/payments/export", s.ExportPayments)
	r.Get("/payments/owner/{ownerId}", s.ListOwnerPayments)
	r.Get("/payments/{id}", s.GetPayment)
	r.Put("/payments/{id}/receipt", s.AttachReceipt)
	r.Post("/payments/{boatId}/{ownerId}", s.CreateGenericPayment)

	r.Get("/admin/stats", s.GetAdminStats)
	r.Get("/admin/charts/boats-by-type", s.GetBoatsByType)
	r.Get("/admin/charts/maintenances-by-status", s.GetMaintenancesByStatus)
}
