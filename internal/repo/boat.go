package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// BoatRepo defines the persistence operations for Boats.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type BoatRepo interface {
	// Create inserts a new boat and returns the persisted record. Balance and
	// owner are ignored; a new boat always starts unassigned with zero balance.
	Create(ctx context.Context, boat domain.Boat) (domain.Boat, error)

	// GetByID returns domain.ErrNotFound if no boat with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error)

	// List returns one page of boats matching f, newest first, and the total count.
	List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) ([]domain.Boat, int64, error)

	// GetForUpdate reads a boat and holds its row lock until the surrounding
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Boat, error)

	// ListByOwner returns every boat owned by ownerID, ordered by name.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Boat, error)

	// Update overwrites type, name, model, location and price.
	Update(ctx context.Context, boat domain.Boat) (domain.Boat, error)

	// Delete removes a boat and, by cascade, its maintenances, payments and documents.
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignOwner sets the owner only if the boat is currently unassigned, and
	// adds seed to the balance in the same statement.
	// Returns domain.ErrAlreadyAssigned if another owner is set, or
	// domain.ErrNotFound if the boat does not exist.
	AssignOwner(ctx context.Context, id, ownerID uuid.UUID, seed decimal.Decimal) (domain.Boat, error)

	// Unassign clears the owner. Returns domain.ErrNotFound if the boat does not exist.
	Unassign(ctx context.Context, id uuid.UUID) (domain.Boat, error)

	// AdjustBalance adds delta (which may be negative) to the boat's balance.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (domain.Boat, error)
}

type pgBoatRepo struct {
	db db
}

// NewBoatRepo constructs a BoatRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBoatRepo(db db) BoatRepo {
	return &pgBoatRepo{db: db}
}

const boatColumns = `id, type, name, model, location, price, balance, owner_id, created_at, updated_at`

func (r *pgBoatRepo) Create(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	const q = `
		INSERT INTO boats (type, name, model, location, price)
		VALUES (@type, @name, @model, @location, @price)
		RETURNING ` + boatColumns

	args := pgx.NamedArgs{
		"type":     boat.Type,
		"name":     boat.Name,
		"model":    boat.Model,
		"location": boat.Location,
		"price":    boat.Price,
	}

	result, err := scanBoat(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBoatRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	const q = `SELECT ` + boatColumns + ` FROM boats WHERE id = @id`

	result, err := scanBoat(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBoatRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	const q = `SELECT ` + boatColumns + ` FROM boats WHERE id = @id FOR UPDATE`

	result, err := scanBoat(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// boatFilterWhere is shared by the page query and its count query.
// Empty filter values disable the corresponding predicate.
const boatFilterWhere = `
		WHERE (@search::text = '' OR name ILIKE '%' || @search || '%'
		                          OR model ILIKE '%' || @search || '%'
		                          OR location ILIKE '%' || @search || '%')
		  AND (@type::text = '' OR type = @type)
		  AND (@status::text = ''
		       OR (@status = 'assigned' AND owner_id IS NOT NULL)
		       OR (@status = 'unassigned' AND owner_id IS NULL))`

func (r *pgBoatRepo) List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) ([]domain.Boat, int64, error) {
	const q = `SELECT ` + boatColumns + ` FROM boats` + boatFilterWhere + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`
	const countQ = `SELECT count(*) FROM boats` + boatFilterWhere

	args := pgx.NamedArgs{
		"search": f.Search,
		"type":   string(f.Type),
		"status": string(f.Status),
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BoatRepo.List: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BoatRepo.List: %w", err)
	}
	boats, err := collect(rows, scanBoat)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BoatRepo.List: %w", err)
	}
	return boats, total, nil
}

func (r *pgBoatRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Boat, error) {
	const q = `SELECT ` + boatColumns + ` FROM boats WHERE owner_id = @owner_id ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.BoatRepo.ListByOwner: %w", err)
	}
	boats, err := collect(rows, scanBoat)
	if err != nil {
		return nil, fmt.Errorf("repo.BoatRepo.ListByOwner: %w", err)
	}
	return boats, nil
}

func (r *pgBoatRepo) Update(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	const q = `
		UPDATE boats
		SET type       = @type,
		    name       = @name,
		    model      = @model,
		    location   = @location,
		    price      = @price,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + boatColumns

	args := pgx.NamedArgs{
		"id":       boat.ID,
		"type":     boat.Type,
		"name":     boat.Name,
		"model":    boat.Model,
		"location": boat.Location,
		"price":    boat.Price,
	}

	result, err := scanBoat(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgBoatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM boats WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BoatRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BoatRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AssignOwner is a compare-and-set on owner_id: the WHERE clause only matches
// an unassigned boat, so of several concurrent callers exactly one updates a row.
func (r *pgBoatRepo) AssignOwner(ctx context.Context, id, ownerID uuid.UUID, seed decimal.Decimal) (domain.Boat, error) {
	const q = `
		UPDATE boats
		SET owner_id   = @owner_id,
		    balance    = balance + @seed,
		    updated_at = now()
		WHERE id = @id AND owner_id IS NULL
		RETURNING ` + boatColumns

	args := pgx.NamedArgs{"id": id, "owner_id": ownerID, "seed": seed}

	result, err := scanBoat(r.db.QueryRow(ctx, q, args))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.AssignOwner: %w", err)
	}

	// No row matched: either the boat is missing or it already has an owner.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.AssignOwner: %w", getErr)
	}
	return domain.Boat{}, fmt.Errorf("repo.BoatRepo.AssignOwner: %w", domain.ErrAlreadyAssigned)
}

func (r *pgBoatRepo) Unassign(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	const q = `
		UPDATE boats
		SET owner_id = NULL, updated_at = now()
		WHERE id = @id
		RETURNING ` + boatColumns

	result, err := scanBoat(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.Unassign: %w", err)
	}
	return result, nil
}

func (r *pgBoatRepo) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (domain.Boat, error) {
	const q = `
		UPDATE boats
		SET balance = balance + @delta, updated_at = now()
		WHERE id = @id
		RETURNING ` + boatColumns

	result, err := scanBoat(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "delta": delta}))
	if err != nil {
		return domain.Boat{}, fmt.Errorf("repo.BoatRepo.AdjustBalance: %w", err)
	}
	return result, nil
}

// scanBoat maps a single database row into a domain.Boat.
func scanBoat(s scanner) (domain.Boat, error) {
	var (
		b       domain.Boat
		id      pgtype.UUID
		ownerID pgtype.UUID
	)

	err := s.Scan(&id, &b.Type, &b.Name, &b.Model, &b.Location, &b.Price, &b.Balance,
		&ownerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Boat{}, mapErr(err)
	}

	b.ID = uuid.UUID(id.Bytes)
	b.OwnerID = uuidPtr(ownerID)
	return b, nil
}
