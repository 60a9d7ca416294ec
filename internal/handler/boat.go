package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// BoatRequest is the body of POST /boat and PUT /boat/{boatId}.
// Ownership and balance are never client-settable.
type BoatRequest struct {
	Type     domain.BoatType  `json:"type" validate:"required"`
	Name     string           `json:"name" validate:"required"`
	Model    string           `json:"model"`
	Location string           `json:"location"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
}

func (b BoatRequest) toDomain() domain.Boat {
	return domain.Boat{
		Type:     b.Type,
		Name:     b.Name,
		Model:    b.Model,
		Location: b.Location,
		Price:    deref(b.Price),
	}
}

// ListBoats handles GET /boat with optional search, type and status filters.
func (s *Server) ListBoats(w http.ResponseWriter, r *http.Request) {
	var search, typ, status *string
	if !queries(w, r, "search", &search, "type", &typ, "status", &status) {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.boats.List(r.Context(), domain.BoatFilter{
		Search: deref(search),
		Type:   domain.BoatType(deref(typ)),
		Status: domain.BoatStatus(deref(status)),
	}, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// CreateBoat handles POST /boat.
func (s *Server) CreateBoat(w http.ResponseWriter, r *http.Request) {
	var req BoatRequest
	if !s.decode(w, r, &req) {
		return
	}
	boat, err := s.boats.Create(r.Context(), req.toDomain())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, boat)
}

// GetBoat handles GET /boat/{boatId}.
func (s *Server) GetBoat(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	boat, err := s.boats.GetByID(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, boat)
}

// UpdateBoat handles PUT /boat/{boatId}.
func (s *Server) UpdateBoat(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	var req BoatRequest
	if !s.decode(w, r, &req) {
		return
	}
	boat := req.toDomain()
	boat.ID = ids[0]
	updated, err := s.boats.Update(r.Context(), boat)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, updated)
}

// DeleteBoat handles DELETE /boat/{boatId}. Maintenances, payments and
// documents go with it.
func (s *Server) DeleteBoat(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	if err := s.boats.Delete(r.Context(), ids[0]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
