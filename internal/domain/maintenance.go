package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaintenanceType distinguishes planned work from repairs.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "PREVENTIVE"
	MaintenanceCorrective MaintenanceType = "CORRECTIVE"
)

// MaintenanceStatus is the progress of a maintenance record.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "SCHEDULED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
)

// Priority ranks maintenance urgency.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (t MaintenanceType) Valid() bool {
	return t == MaintenancePreventive || t == MaintenanceCorrective
}

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Maintenance is a unit of work on a boat. Every record is billed through a
// linked MAINTENANCE payment; PaymentID is nil only after that payment has
// been detached.
type Maintenance struct {
	ID            uuid.UUID         `json:"id"`
	BoatID        uuid.UUID         `json:"boat_id"`
	Type          MaintenanceType   `json:"type"`
	Status        MaintenanceStatus `json:"status"`
	Priority      Priority          `json:"priority"`
	Description   string            `json:"description,omitempty"`
	Cost          *decimal.Decimal  `json:"cost,omitempty"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	PerformedDate *time.Time        `json:"performed_date,omitempty"`
	PaymentID     *uuid.UUID        `json:"payment_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// BilledAmount is the amount the linked payment carries: the cost, or zero
// when no cost was recorded.
func (m Maintenance) BilledAmount() decimal.Decimal {
	if m.Cost == nil {
		return decimal.Zero
	}
	return *m.Cost
}

// MaintenanceFilter narrows a maintenance listing. Zero values mean "no filter".
type MaintenanceFilter struct {
	BoatID   *uuid.UUID
	Status   MaintenanceStatus
	Type     MaintenanceType
	Priority Priority
}
