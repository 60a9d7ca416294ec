package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// MaintenanceRequest is the body of create and update. Status and priority
// default to SCHEDULED and MEDIUM when omitted.
type MaintenanceRequest struct {
	Type          domain.MaintenanceType   `json:"type" validate:"required"`
	Status        domain.MaintenanceStatus `json:"status"`
	Priority      domain.Priority          `json:"priority"`
	Description   string                   `json:"description"`
	Cost          *decimal.Decimal         `json:"cost"`
	ScheduledDate *openapi_types.Date      `json:"scheduled_date" validate:"required"`
	PerformedDate *openapi_types.Date      `json:"performed_date"`
}

func (m MaintenanceRequest) toDomain() domain.Maintenance {
	out := domain.Maintenance{
		Type:        m.Type,
		Status:      m.Status,
		Priority:    m.Priority,
		Description: m.Description,
		Cost:        m.Cost,
	}
	if m.ScheduledDate != nil {
		out.ScheduledDate = m.ScheduledDate.Time
	}
	if m.PerformedDate != nil {
		t := m.PerformedDate.Time
		out.PerformedDate = &t
	}
	return out
}

func maintenanceFilter(w http.ResponseWriter, r *http.Request) (domain.MaintenanceFilter, bool) {
	var status, typ, priority *string
	if !queries(w, r, "status", &status, "type", &typ, "priority", &priority) {
		return domain.MaintenanceFilter{}, false
	}
	return domain.MaintenanceFilter{
		Status:   domain.MaintenanceStatus(deref(status)),
		Type:     domain.MaintenanceType(deref(typ)),
		Priority: domain.Priority(deref(priority)),
	}, true
}

// ListMaintenances handles GET /maintenances.
func (s *Server) ListMaintenances(w http.ResponseWriter, r *http.Request) {
	f, ok := maintenanceFilter(w, r)
	if !ok {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.maintenances.List(r.Context(), f, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// ListBoatMaintenances handles GET /maintenances/boat/{boatId}.
func (s *Server) ListBoatMaintenances(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	f, ok := maintenanceFilter(w, r)
	if !ok {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.maintenances.ListByBoat(r.Context(), ids[0], f, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// CreateMaintenance handles POST /maintenances/boat/{boatId}. The record is
// billed to the boat immediately.
func (s *Server) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	var req MaintenanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	m := req.toDomain()
	m.BoatID = ids[0]
	created, err := s.maintenances.Create(r.Context(), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// GetMaintenance handles GET /maintenances/{id}.
func (s *Server) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	m, err := s.maintenances.GetByID(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// UpdateMaintenance handles PUT /maintenances/{id}.
func (s *Server) UpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	var req MaintenanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	m := req.toDomain()
	m.ID = ids[0]
	updated, err := s.maintenances.Update(r.Context(), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, updated)
}

// DeleteMaintenance handles DELETE /maintenances/{id}.
func (s *Server) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	if err := s.maintenances.Delete(r.Context(), ids[0]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dateOnly converts an optional request date to a UTC midnight time.
func dateOnly(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
