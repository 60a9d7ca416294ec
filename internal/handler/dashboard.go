package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/middleware"
)

// GetOwnerDashboard handles GET /owner/dashboard/{userId}.
// Owners may only read their own dashboard; admins may read any.
func (s *Server) GetOwnerDashboard(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "userId")
	if !ok {
		return
	}
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	if claims.Role != domain.RoleAdmin {
		self, err := claims.UserID()
		if err != nil || self != ids[0] {
			writeError(w, r, http.StatusForbidden, "forbidden", "owners may only view their own dashboard")
			return
		}
	}

	d, err := s.dashboards.OwnerDashboard(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, d)
}

// GetAdminStats handles GET /admin/stats.
func (s *Server) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboards.AdminStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// GetBoatsByType handles GET /admin/charts/boats-by-type.
func (s *Server) GetBoatsByType(w http.ResponseWriter, r *http.Request) {
	points, err := s.dashboards.BoatsByType(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, points)
}

// GetMaintenancesByStatus handles GET /admin/charts/maintenances-by-status.
func (s *Server) GetMaintenancesByStatus(w http.ResponseWriter, r *http.Request) {
	points, err := s.dashboards.MaintenancesByStatus(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, points)
}
