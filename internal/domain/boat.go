// Package domain contains the core data types for the fleet ledger.
// It depends only on uuid and decimal and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BoatType classifies how a boat is operated.
type BoatType string

const (
	BoatTypeTourism         BoatType = "TOURISM"
	BoatTypeLodging         BoatType = "LODGING"
	BoatTypeBusinessEvents  BoatType = "BUSINESS_EVENTS"
	BoatTypeExclusiveDesign BoatType = "EXCLUSIVE_DESIGN"
)

// Valid reports whether t is one of the known boat types.
func (t BoatType) Valid() bool {
	switch t {
	case BoatTypeTourism, BoatTypeLodging, BoatTypeBusinessEvents, BoatTypeExclusiveDesign:
		return true
	}
	return false
}

// Boat is the top-level aggregate. Maintenances, documents and payments
// reference it by ID.
//
// Balance is the amount the owner currently owes the operator. It only
// changes through ApplyBalanceDelta (in memory) or an equivalent signed
// delta applied by the repo.
type Boat struct {
	ID        uuid.UUID       `json:"id"`
	Type      BoatType        `json:"type"`
	Name      string          `json:"name"`
	Model     string          `json:"model,omitempty"`
	Location  string          `json:"location,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Balance   decimal.Decimal `json:"balance"`
	OwnerID   *uuid.UUID      `json:"owner_id,omitempty"` // nil until assigned
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Assigned reports whether the boat has an owner.
func (b Boat) Assigned() bool {
	return b.OwnerID != nil
}

// BoatStatus filters boats by assignment state.
type BoatStatus string

const (
	BoatStatusAssigned   BoatStatus = "assigned"
	BoatStatusUnassigned BoatStatus = "unassigned"
)

// BoatFilter narrows a boat listing. Zero values mean "no filter".
type BoatFilter struct {
	Search string
	Type   BoatType
	Status BoatStatus
}
