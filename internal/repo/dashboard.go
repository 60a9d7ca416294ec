package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// DashboardRepo serves the read-only aggregate queries behind the dashboards.
type DashboardRepo interface {
	OwnerMetrics(ctx context.Context, ownerID uuid.UUID) (domain.OwnerMetrics, error)

	// BoatDebts returns one row per boat owned by ownerID, ordered by boat name.
	BoatDebts(ctx context.Context, ownerID uuid.UUID) ([]domain.BoatDebt, error)

	// UpcomingMaintenances returns SCHEDULED records on the owner's boats with a
	// scheduled date in [from, to], soonest first.
	UpcomingMaintenances(ctx context.Context, ownerID uuid.UUID, from, to time.Time, limit int) ([]domain.Maintenance, error)

	// RecentMaintenances returns records on the owner's boats, latest first.
	RecentMaintenances(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Maintenance, error)

	// AdminStats computes the operator counters; monthly payments are those
	// settled in [monthStart, monthEnd).
	AdminStats(ctx context.Context, monthStart, monthEnd time.Time) (domain.AdminStats, error)

	BoatsByType(ctx context.Context) ([]domain.ChartPoint, error)
	MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error)
}

type pgDashboardRepo struct {
	db db
}

// NewDashboardRepo constructs a DashboardRepo backed by the provided db connection.
func NewDashboardRepo(db db) DashboardRepo {
	return &pgDashboardRepo{db: db}
}

func (r *pgDashboardRepo) OwnerMetrics(ctx context.Context, ownerID uuid.UUID) (domain.OwnerMetrics, error) {
	const q = `
		SELECT
			(SELECT count(*) FROM boats WHERE owner_id = @owner_id),
			(SELECT count(*) FROM documents d JOIN boats b ON b.id = d.boat_id WHERE b.owner_id = @owner_id),
			(SELECT count(*) FROM maintenances m JOIN boats b ON b.id = m.boat_id
			  WHERE b.owner_id = @owner_id AND m.status <> 'COMPLETED'),
			(SELECT count(*) FROM maintenances m JOIN boats b ON b.id = m.boat_id
			  WHERE b.owner_id = @owner_id AND m.status = 'COMPLETED')`

	var m domain.OwnerMetrics
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID}).
		Scan(&m.TotalBoats, &m.TotalDocuments, &m.PendingMaintenances, &m.CompletedMaintenances)
	if err != nil {
		return domain.OwnerMetrics{}, fmt.Errorf("repo.DashboardRepo.OwnerMetrics: %w", err)
	}
	return m, nil
}

func (r *pgDashboardRepo) BoatDebts(ctx context.Context, ownerID uuid.UUID) ([]domain.BoatDebt, error) {
	const q = `
		SELECT b.id, b.name, b.type, b.balance,
		       COALESCE(SUM(p.amount) FILTER (WHERE p.reason = 'MAINTENANCE'), 0),
		       COALESCE(SUM(p.amount) FILTER (WHERE p.reason = 'INSTALLMENT'), 0)
		FROM boats b
		LEFT JOIN payments p ON p.boat_id = b.id AND p.status = 'TO_PAY'
		WHERE b.owner_id = @owner_id
		GROUP BY b.id
		ORDER BY b.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.BoatDebts: %w", err)
	}
	out, err := collect(rows, func(s scanner) (domain.BoatDebt, error) {
		var (
			d  domain.BoatDebt
			id pgtype.UUID
		)
		err := s.Scan(&id, &d.BoatName, &d.BoatType, &d.Balance, &d.MaintenanceDebt, &d.InstallmentDebt)
		d.BoatID = uuid.UUID(id.Bytes)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.BoatDebts: %w", err)
	}
	return out, nil
}

func (r *pgDashboardRepo) UpcomingMaintenances(ctx context.Context, ownerID uuid.UUID, from, to time.Time, limit int) ([]domain.Maintenance, error) {
	const q = maintenanceSelect + `
		FROM maintenances m
		JOIN boats b ON b.id = m.boat_id
		LEFT JOIN payments p ON p.maintenance_id = m.id
		WHERE b.owner_id = @owner_id
		  AND m.status = 'SCHEDULED'
		  AND m.scheduled_date BETWEEN @from::date AND @to::date
		ORDER BY m.scheduled_date, m.id
		LIMIT @limit`

	args := pgx.NamedArgs{"owner_id": ownerID, "from": from, "to": to, "limit": limit}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.UpcomingMaintenances: %w", err)
	}
	out, err := collect(rows, scanMaintenance)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.UpcomingMaintenances: %w", err)
	}
	return out, nil
}

func (r *pgDashboardRepo) RecentMaintenances(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Maintenance, error) {
	const q = maintenanceSelect + `
		FROM maintenances m
		JOIN boats b ON b.id = m.boat_id
		LEFT JOIN payments p ON p.maintenance_id = m.id
		WHERE b.owner_id = @owner_id
		ORDER BY m.scheduled_date DESC, m.created_at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.RecentMaintenances: %w", err)
	}
	out, err := collect(rows, scanMaintenance)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.RecentMaintenances: %w", err)
	}
	return out, nil
}

func (r *pgDashboardRepo) AdminStats(ctx context.Context, monthStart, monthEnd time.Time) (domain.AdminStats, error) {
	const q = `
		SELECT
			(SELECT count(*) FROM boats),
			(SELECT count(*) FROM users WHERE role = 'OWNER' AND active),
			(SELECT count(*) FROM maintenances WHERE status <> 'COMPLETED'),
			(SELECT COALESCE(SUM(amount), 0) FROM payments
			  WHERE status = 'PAID' AND paid_at >= @start AND paid_at < @end)`

	var s domain.AdminStats
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"start": monthStart, "end": monthEnd}).
		Scan(&s.TotalBoats, &s.ActiveOwners, &s.PendingMaintenances, &s.MonthlyPayments)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("repo.DashboardRepo.AdminStats: %w", err)
	}
	return s, nil
}

func (r *pgDashboardRepo) BoatsByType(ctx context.Context) ([]domain.ChartPoint, error) {
	const q = `
		SELECT COALESCE(NULLIF(type, ''), 'UNKNOWN'), count(*)
		FROM boats GROUP BY 1 ORDER BY 1`
	return r.chart(ctx, "BoatsByType", q)
}

func (r *pgDashboardRepo) MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error) {
	const q = `
		SELECT COALESCE(NULLIF(status, ''), 'UNKNOWN'), count(*)
		FROM maintenances GROUP BY 1 ORDER BY 1`
	return r.chart(ctx, "MaintenancesByStatus", q)
}

func (r *pgDashboardRepo) chart(ctx context.Context, op, q string) ([]domain.ChartPoint, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.%s: %w", op, err)
	}
	out, err := collect(rows, func(s scanner) (domain.ChartPoint, error) {
		var c domain.ChartPoint
		err := s.Scan(&c.Label, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.%s: %w", op, err)
	}
	return out, nil
}
