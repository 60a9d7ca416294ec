package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/plan"
)

// AssignOwner handles PUT /boat/{boatId}/owner/{ownerId}.
// The plan comes from the query string: ?numberOfInstallments=N, or
// ?installmentAmount=X&frequencyInMonths=M. Supplying both or neither is an
// invalid plan, which the plan generator reports.
func (s *Server) AssignOwner(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId", "ownerId")
	if !ok {
		return
	}
	var (
		count     *int
		amountRaw *string
		frequency *int
	)
	if !queries(w, r, "numberOfInstallments", &count, "installmentAmount", &amountRaw, "frequencyInMonths", &frequency) {
		return
	}

	req := plan.Request{Count: count, FrequencyMonths: deref(frequency)}
	if amountRaw != nil {
		amount, err := decimal.NewFromString(*amountRaw)
		if err != nil {
			badRequest(w, r, "invalid format for parameter installmentAmount")
			return
		}
		req.Amount = &amount
		if frequency == nil {
			req.FrequencyMonths = 1
		}
	}

	res, err := s.assignments.Assign(r.Context(), ids[0], ids[1], req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// AssignOwnerManual handles PUT /boat/{boatId}/owner/{ownerId}/manual.
func (s *Server) AssignOwnerManual(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId", "ownerId")
	if !ok {
		return
	}
	boat, err := s.assignments.AssignManual(r.Context(), ids[0], ids[1])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, boat)
}

// UnassignOwner handles DELETE /boat/{boatId}/owner.
func (s *Server) UnassignOwner(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId")
	if !ok {
		return
	}
	boat, err := s.assignments.Unassign(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, boat)
}
