package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerMetrics are the headline counters on the owner dashboard.
type OwnerMetrics struct {
	TotalBoats            int64 `json:"total_boats"`
	TotalDocuments        int64 `json:"total_documents"`
	PendingMaintenances   int64 `json:"pending_maintenances"`
	CompletedMaintenances int64 `json:"completed_maintenances"`
}

// BoatDebt summarizes what is still owed on one boat.
// MaintenanceDebt and InstallmentDebt are sums of TO_PAY payments by reason.
type BoatDebt struct {
	BoatID          uuid.UUID       `json:"boat_id"`
	BoatName        string          `json:"boat_name"`
	BoatType        BoatType        `json:"boat_type"`
	Balance         decimal.Decimal `json:"balance"`
	MaintenanceDebt decimal.Decimal `json:"maintenance_debt"`
	InstallmentDebt decimal.Decimal `json:"boat_debt"`
}

// OwnerDashboard is the read model returned to a boat owner.
type OwnerDashboard struct {
	Owner                Owner         `json:"owner"`
	Metrics              OwnerMetrics  `json:"metrics"`
	Boats                []BoatDebt    `json:"boats"`
	UpcomingMaintenances []Maintenance `json:"upcoming_maintenances"`
	RecentMaintenances   []Maintenance `json:"recent_maintenances"`
}

// AdminStats are the headline counters on the operator dashboard.
// MonthlyPayments is the sum of payments settled in the current month.
type AdminStats struct {
	TotalBoats          int64           `json:"total_boats"`
	ActiveOwners        int64           `json:"active_owners"`
	PendingMaintenances int64           `json:"pending_maintenances"`
	MonthlyPayments     decimal.Decimal `json:"monthly_payments"`
}

// ChartPoint is one bar in a count-by-category chart.
type ChartPoint struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}
