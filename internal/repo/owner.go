package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// OwnerRepo defines the persistence operations for user accounts.
// Unique violations on email or username surface as domain.ErrConflict.
type OwnerRepo interface {
	Create(ctx context.Context, o domain.Owner) (domain.Owner, error)

	// GetByID returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Owner, error)

	// GetByEmail matches the lower-cased email.
	GetByEmail(ctx context.Context, email string) (domain.Owner, error)

	// GetByLogin matches either the email or the username.
	GetByLogin(ctx context.Context, identifier string) (domain.Owner, error)

	// List returns one page of users with the given role, ordered by name.
	// search matches full name, email or username.
	List(ctx context.Context, role domain.Role, search string, p domain.PaginationParams) ([]domain.Owner, int64, error)

	// Update overwrites the profile fields and the active flag.
	Update(ctx context.Context, o domain.Owner) (domain.Owner, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error

	Delete(ctx context.Context, id uuid.UUID) error
}

type pgOwnerRepo struct {
	db db
}

// NewOwnerRepo constructs an OwnerRepo backed by the provided db connection.
func NewOwnerRepo(db db) OwnerRepo {
	return &pgOwnerRepo{db: db}
}

const ownerColumns = `id, full_name, email, username, phone, role, active, password_hash, created_at, updated_at`

func (r *pgOwnerRepo) Create(ctx context.Context, o domain.Owner) (domain.Owner, error) {
	const q = `
		INSERT INTO users (full_name, email, username, phone, role, active, password_hash)
		VALUES (@full_name, @email, @username, @phone, @role, @active, @password_hash)
		RETURNING ` + ownerColumns

	args := pgx.NamedArgs{
		"full_name":     o.FullName,
		"email":         o.Email,
		"username":      o.Username,
		"phone":         o.Phone,
		"role":          o.Role,
		"active":        o.Active,
		"password_hash": o.PasswordHash,
	}

	result, err := scanOwner(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Owner{}, fmt.Errorf("repo.OwnerRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgOwnerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Owner, error) {
	const q = `SELECT ` + ownerColumns + ` FROM users WHERE id = @id`

	result, err := scanOwner(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Owner{}, fmt.Errorf("repo.OwnerRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgOwnerRepo) GetByEmail(ctx context.Context, email string) (domain.Owner, error) {
	const q = `SELECT ` + ownerColumns + ` FROM users WHERE email = lower(@email)`

	result, err := scanOwner(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.Owner{}, fmt.Errorf("repo.OwnerRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgOwnerRepo) GetByLogin(ctx context.Context, identifier string) (domain.Owner, error) {
	const q = `SELECT ` + ownerColumns + ` FROM users WHERE email = lower(@login) OR username = @login`

	result, err := scanOwner(r.db.QueryRow(ctx, q, pgx.NamedArgs{"login": identifier}))
	if err != nil {
		return domain.Owner{}, fmt.Errorf("repo.OwnerRepo.GetByLogin: %w", err)
	}
	return result, nil
}

const ownerFilterWhere = `
		FROM users
		WHERE role = @role
		  AND (@search::text = '' OR full_name ILIKE '%' || @search || '%'
		                          OR email ILIKE '%' || @search || '%'
		                          OR username ILIKE '%' || @search || '%')`

func (r *pgOwnerRepo) List(ctx context.Context, role domain.Role, search string, p domain.PaginationParams) ([]domain.Owner, int64, error) {
	const q = `SELECT ` + ownerColumns + ownerFilterWhere + `
		ORDER BY full_name, id
		LIMIT @limit OFFSET @offset`
	const countQ = `SELECT count(*)` + ownerFilterWhere

	args := pgx.NamedArgs{
		"role":   string(role),
		"search": search,
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.OwnerRepo.List: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.OwnerRepo.List: %w", err)
	}
	out, err := collect(rows, scanOwner)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.OwnerRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *pgOwnerRepo) Update(ctx context.Context, o domain.Owner) (domain.Owner, error) {
	const q = `
		UPDATE users
		SET full_name  = @full_name,
		    email      = @email,
		    username   = @username,
		    phone      = @phone,
		    active     = @active,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + ownerColumns

	args := pgx.NamedArgs{
		"id":        o.ID,
		"full_name": o.FullName,
		"email":     o.Email,
		"username":  o.Username,
		"phone":     o.Phone,
		"active":    o.Active,
	}

	result, err := scanOwner(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Owner{}, fmt.Errorf("repo.OwnerRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgOwnerRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const q = `UPDATE users SET password_hash = @hash, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "hash": hash})
	if err != nil {
		return fmt.Errorf("repo.OwnerRepo.UpdatePassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.OwnerRepo.UpdatePassword: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgOwnerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.OwnerRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.OwnerRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanOwner(s scanner) (domain.Owner, error) {
	var (
		o  domain.Owner
		id pgtype.UUID
	)

	err := s.Scan(&id, &o.FullName, &o.Email, &o.Username, &o.Phone, &o.Role, &o.Active,
		&o.PasswordHash, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Owner{}, mapErr(err)
	}

	o.ID = uuid.UUID(id.Bytes)
	return o, nil
}
