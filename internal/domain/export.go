package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExportRow is a single row in the payment export.
// It is a flat, denormalized view: one row per payment, with boat and owner
// fields repeated. OwnerName is empty for payments with no owner.
type ExportRow struct {
	PaymentID  string
	BoatName   string
	BoatType   BoatType
	OwnerName  string
	OwnerEmail string
	Reason     PaymentReason
	Status     PaymentStatus
	Amount     decimal.Decimal
	DueDate    time.Time
	PaidAt     *time.Time
	InvoiceURL string
}
