package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentReason records why an obligation exists.
type PaymentReason string

const (
	ReasonInstallment    PaymentReason = "INSTALLMENT"
	ReasonMaintenance    PaymentReason = "MAINTENANCE"
	ReasonGenericPayment PaymentReason = "GENERIC_PAYMENT"
)

func (r PaymentReason) Valid() bool {
	switch r {
	case ReasonInstallment, ReasonMaintenance, ReasonGenericPayment:
		return true
	}
	return false
}

// PaymentStatus is TO_PAY until a receipt is attached, then PAID for good.
type PaymentStatus string

const (
	StatusToPay PaymentStatus = "TO_PAY"
	StatusPaid  PaymentStatus = "PAID"
)

func (s PaymentStatus) Valid() bool {
	return s == StatusToPay || s == StatusPaid
}

// Payment is a single obligation against a boat.
// Date is the due date; PaidAt is set when the payment is settled.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	BoatID        uuid.UUID       `json:"boat_id"`
	OwnerID       *uuid.UUID      `json:"owner_id,omitempty"`
	MaintenanceID *uuid.UUID      `json:"maintenance_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Reason        PaymentReason   `json:"reason"`
	Status        PaymentStatus   `json:"status"`
	InvoiceURL    string          `json:"invoice_url,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Settled reports whether the payment has reached its terminal state.
func (p Payment) Settled() bool {
	return p.Status == StatusPaid
}

// PaymentFilter narrows a payment listing. Zero values mean "no filter".
// From and To bound Date inclusively.
type PaymentFilter struct {
	Search  string
	OwnerID *uuid.UUID
	BoatID  *uuid.UUID
	Reason  PaymentReason
	Status  PaymentStatus
	From    *time.Time
	To      *time.Time
}
