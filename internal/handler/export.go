package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"payment_id", "boat_name", "boat_type", "owner_name", "owner_email",
	"reason", "status", "amount", "due_date", "paid_at", "invoice_url",
}

// ExportRow is the JSON shape of one exported payment.
// Owner fields are omitted for payments that were never assigned.
type ExportRow struct {
	PaymentID  string          `json:"payment_id"`
	BoatName   string          `json:"boat_name"`
	BoatType   domain.BoatType `json:"boat_type"`
	OwnerName  string          `json:"owner_name,omitempty"`
	OwnerEmail string          `json:"owner_email,omitempty"`
	Reason     string          `json:"reason"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    string          `json:"due_date"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	InvoiceURL string          `json:"invoice_url,omitempty"`
}

// ExportPayments implements GET /payments/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportPayments(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queries(w, r, "format", &format) {
		return
	}
	switch deref(format) {
	case "", "json", "csv":
	default:
		badRequest(w, r, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if deref(format) == "csv" {
		writeCSV(w, rows)
		return
	}
	render.JSON(w, r, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response shape.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow{
			PaymentID:  r.PaymentID,
			BoatName:   r.BoatName,
			BoatType:   r.BoatType,
			OwnerName:  r.OwnerName,
			OwnerEmail: r.OwnerEmail,
			Reason:     string(r.Reason),
			Status:     string(r.Status),
			Amount:     r.Amount,
			DueDate:    r.DueDate.Format(time.DateOnly),
			PaidAt:     r.PaidAt,
			InvoiceURL: r.InvoiceURL,
		})
	}
	return out
}

// writeCSV encodes domain rows as CSV with a header row.
// Amounts keep two decimal places so spreadsheets do not reformat them.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer.Write never returns an error.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A nil PaidAt is encoded as an empty string.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.PaymentID,
		r.BoatName,
		string(r.BoatType),
		r.OwnerName,
		r.OwnerEmail,
		string(r.Reason),
		string(r.Status),
		r.Amount.StringFixed(2),
		r.DueDate.Format(time.DateOnly),
		formatOptionalTime(r.PaidAt),
		r.InvoiceURL,
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
