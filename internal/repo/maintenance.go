package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// MaintenanceRepo defines the persistence operations for maintenance records.
// PaymentID on returned records is resolved from payments.maintenance_id.
type MaintenanceRepo interface {
	Create(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)

	// GetByID returns domain.ErrNotFound if no record with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Maintenance, error)

	// List returns one page of records matching f, latest scheduled date first.
	List(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) ([]domain.Maintenance, int64, error)

	// Update overwrites the mutable fields of a record.
	Update(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

type pgMaintenanceRepo struct {
	db db
}

// NewMaintenanceRepo constructs a MaintenanceRepo backed by the provided db connection.
func NewMaintenanceRepo(db db) MaintenanceRepo {
	return &pgMaintenanceRepo{db: db}
}

// maintenanceSelect expects the maintenance row aliased as m.
const maintenanceSelect = `
		SELECT m.id, m.boat_id, m.type, m.status, m.priority, m.description, m.cost,
		       m.scheduled_date, m.performed_date, p.id, m.created_at, m.updated_at`

func maintenanceArgs(m domain.Maintenance) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":             m.ID,
		"boat_id":        m.BoatID,
		"type":           m.Type,
		"status":         m.Status,
		"priority":       m.Priority,
		"description":    m.Description,
		"cost":           m.Cost, // nil becomes NULL
		"scheduled_date": pgtype.Date{Time: m.ScheduledDate, Valid: true},
		"performed_date": nullDate(m.PerformedDate),
	}
}

func (r *pgMaintenanceRepo) Create(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	const q = `
		WITH m AS (
			INSERT INTO maintenances (boat_id, type, status, priority, description, cost, scheduled_date, performed_date)
			VALUES (@boat_id, @type, @status, @priority, @description, @cost, @scheduled_date, @performed_date)
			RETURNING *
		)` + maintenanceSelect + `
		FROM m LEFT JOIN payments p ON p.maintenance_id = m.id`

	result, err := scanMaintenance(r.db.QueryRow(ctx, q, maintenanceArgs(m)))
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("repo.MaintenanceRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMaintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Maintenance, error) {
	const q = maintenanceSelect + `
		FROM maintenances m LEFT JOIN payments p ON p.maintenance_id = m.id
		WHERE m.id = @id`

	result, err := scanMaintenance(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("repo.MaintenanceRepo.GetByID: %w", err)
	}
	return result, nil
}

const maintenanceFilterWhere = `
		FROM maintenances m LEFT JOIN payments p ON p.maintenance_id = m.id
		WHERE (@boat_id::uuid IS NULL OR m.boat_id = @boat_id)
		  AND (@status::text = '' OR m.status = @status)
		  AND (@type::text = '' OR m.type = @type)
		  AND (@priority::text = '' OR m.priority = @priority)`

func (r *pgMaintenanceRepo) List(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) ([]domain.Maintenance, int64, error) {
	const q = maintenanceSelect + maintenanceFilterWhere + `
		ORDER BY m.scheduled_date DESC, m.id
		LIMIT @limit OFFSET @offset`
	const countQ = `SELECT count(*)` + maintenanceFilterWhere

	args := pgx.NamedArgs{
		"boat_id":  f.BoatID,
		"status":   string(f.Status),
		"type":     string(f.Type),
		"priority": string(f.Priority),
		"limit":    p.Limit,
		"offset":   p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MaintenanceRepo.List: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MaintenanceRepo.List: %w", err)
	}
	out, err := collect(rows, scanMaintenance)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MaintenanceRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *pgMaintenanceRepo) Update(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	const q = `
		WITH m AS (
			UPDATE maintenances
			SET type           = @type,
			    status         = @status,
			    priority       = @priority,
			    description    = @description,
			    cost           = @cost,
			    scheduled_date = @scheduled_date,
			    performed_date = @performed_date,
			    updated_at     = now()
			WHERE id = @id
			RETURNING *
		)` + maintenanceSelect + `
		FROM m LEFT JOIN payments p ON p.maintenance_id = m.id`

	result, err := scanMaintenance(r.db.QueryRow(ctx, q, maintenanceArgs(m)))
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("repo.MaintenanceRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgMaintenanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM maintenances WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.MaintenanceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MaintenanceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanMaintenance maps a single row produced by maintenanceSelect.
func scanMaintenance(s scanner) (domain.Maintenance, error) {
	var (
		m         domain.Maintenance
		id        pgtype.UUID
		boatID    pgtype.UUID
		paymentID pgtype.UUID
		cost      decimal.NullDecimal
		scheduled pgtype.Date
		performed pgtype.Date
	)

	err := s.Scan(&id, &boatID, &m.Type, &m.Status, &m.Priority, &m.Description, &cost,
		&scheduled, &performed, &paymentID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Maintenance{}, mapErr(err)
	}

	m.ID = uuid.UUID(id.Bytes)
	m.BoatID = uuid.UUID(boatID.Bytes)
	m.PaymentID = uuidPtr(paymentID)
	m.ScheduledDate = scheduled.Time
	if cost.Valid {
		c := cost.Decimal
		m.Cost = &c
	}
	if performed.Valid {
		pd := performed.Time
		m.PerformedDate = &pd
	}
	return m, nil
}
