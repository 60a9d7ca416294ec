package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

const (
	upcomingWindow = 30 * 24 * time.Hour
	dashboardLimit = 5
)

// DashboardService assembles the owner and operator read models.
type DashboardService struct {
	repo   repo.DashboardRepo
	owners repo.OwnerRepo
	clock  Clock
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(r repo.DashboardRepo, owners repo.OwnerRepo, clock Clock) *DashboardService {
	return &DashboardService{repo: r, owners: owners, clock: clock}
}

// OwnerDashboard returns the owner's metrics, per-boat debts, maintenance
// scheduled within the next 30 days, and its most recent maintenance.
func (s *DashboardService) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (domain.OwnerDashboard, error) {
	owner, err := s.owners.GetByID(ctx, ownerID)
	if err != nil {
		return domain.OwnerDashboard{}, fmt.Errorf("service.DashboardService.OwnerDashboard: %w", err)
	}

	metrics, err := s.repo.OwnerMetrics(ctx, ownerID)
	if err != nil {
		return domain.OwnerDashboard{}, fmt.Errorf("service.DashboardService.OwnerDashboard: %w", err)
	}
	debts, err := s.repo.BoatDebts(ctx, ownerID)
	if err != nil {
		return domain.OwnerDashboard{}, fmt.Errorf("service.DashboardService.OwnerDashboard: %w", err)
	}

	from := today(s.clock.now())
	upcoming, err := s.repo.UpcomingMaintenances(ctx, ownerID, from, from.Add(upcomingWindow), dashboardLimit)
	if err != nil {
		return domain.OwnerDashboard{}, fmt.Errorf("service.DashboardService.OwnerDashboard: %w", err)
	}
	recent, err := s.repo.RecentMaintenances(ctx, ownerID, dashboardLimit)
	if err != nil {
		return domain.OwnerDashboard{}, fmt.Errorf("service.DashboardService.OwnerDashboard: %w", err)
	}

	return domain.OwnerDashboard{
		Owner:                owner,
		Metrics:              metrics,
		Boats:                nonNil(debts),
		UpcomingMaintenances: nonNil(upcoming),
		RecentMaintenances:   nonNil(recent),
	}, nil
}

// AdminStats returns fleet-wide counters. MonthlyPayments covers the current
// calendar month in UTC.
func (s *DashboardService) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	now := s.clock.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats, err := s.repo.AdminStats(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("service.DashboardService.AdminStats: %w", err)
	}
	return stats, nil
}

// BoatsByType counts boats per type.
func (s *DashboardService) BoatsByType(ctx context.Context) ([]domain.ChartPoint, error) {
	pts, err := s.repo.BoatsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DashboardService.BoatsByType: %w", err)
	}
	return nonNil(pts), nil
}

// MaintenancesByStatus counts maintenance records per status.
func (s *DashboardService) MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error) {
	pts, err := s.repo.MaintenancesByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DashboardService.MaintenancesByStatus: %w", err)
	}
	return nonNil(pts), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
