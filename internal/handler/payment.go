package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// GenericPaymentRequest is the body of POST /payments/{boatId}/{ownerId}.
// Date defaults to today.
type GenericPaymentRequest struct {
	Amount *decimal.Decimal    `json:"amount" validate:"required"`
	Date   *openapi_types.Date `json:"date"`
}

// ListPayments handles GET /payments with search, owner, boat, reason,
// status and date range filters.
func (s *Server) ListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		search, reason, status *string
		ownerID, boatID        *uuid.UUID
		from, to               *openapi_types.Date
	)
	if !queries(w, r,
		"search", &search,
		"ownerId", &ownerID,
		"boatId", &boatID,
		"reason", &reason,
		"status", &status,
		"from", &from,
		"to", &to,
	) {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.payments.List(r.Context(), domain.PaymentFilter{
		Search:  deref(search),
		OwnerID: ownerID,
		BoatID:  boatID,
		Reason:  domain.PaymentReason(deref(reason)),
		Status:  domain.PaymentStatus(deref(status)),
		From:    dateOnly(from),
		To:      dateOnly(to),
	}, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// GetPayment handles GET /payments/{id}.
func (s *Server) GetPayment(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	p, err := s.payments.GetByID(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, p)
}

// ListOwnerPayments handles GET /payments/owner/{ownerId}.
func (s *Server) ListOwnerPayments(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "ownerId")
	if !ok {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.payments.ListByOwner(r.Context(), ids[0], p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// CreateGenericPayment handles POST /payments/{boatId}/{ownerId}.
func (s *Server) CreateGenericPayment(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "boatId", "ownerId")
	if !ok {
		return
	}
	var req GenericPaymentRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.payments.CreateGeneric(r.Context(), ids[0], ids[1], deref(req.Amount), dateOnly(req.Date))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

// AttachReceipt handles PUT /payments/{id}/receipt. The multipart field
// "receipt" carries the file; attaching it settles the payment.
func (s *Server) AttachReceipt(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	receipt := service.Receipt{}
	file, header, err := r.FormFile("receipt")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Leave Body nil; the service reports the missing receipt.
	case err != nil:
		badRequest(w, r, "receipt could not be read")
		return
	default:
		defer file.Close()
		receipt.FileName = header.Filename
		receipt.Body = file
	}

	p, err := s.payments.AttachReceipt(r.Context(), ids[0], receipt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, p)
}

// DownloadReceipt handles GET /payments/receipts/{filename}.
func (s *Server) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	rc, err := s.payments.OpenReceipt(r.Context(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, name, rc)
}
