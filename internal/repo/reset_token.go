package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// ResetTokenRepo stores password recovery tokens.
type ResetTokenRepo interface {
	Create(ctx context.Context, t domain.ResetToken) error

	// Get returns domain.ErrNotFound for unknown tokens. Used and expired
	// tokens are returned as-is; callers check ResetToken.Usable.
	Get(ctx context.Context, token string) (domain.ResetToken, error)

	// Consume marks an unused token as used. Returns domain.ErrNotFound if the
	// token does not exist or was already consumed.
	Consume(ctx context.Context, token string) error
}

type pgResetTokenRepo struct {
	db db
}

// NewResetTokenRepo constructs a ResetTokenRepo backed by the provided db connection.
func NewResetTokenRepo(db db) ResetTokenRepo {
	return &pgResetTokenRepo{db: db}
}

func (r *pgResetTokenRepo) Create(ctx context.Context, t domain.ResetToken) error {
	const q = `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES (@token, @user_id, @expires_at)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"token": t.Token, "user_id": t.OwnerID, "expires_at": t.ExpiresAt})
	if err != nil {
		return fmt.Errorf("repo.ResetTokenRepo.Create: %w", mapErr(err))
	}
	return nil
}

func (r *pgResetTokenRepo) Get(ctx context.Context, token string) (domain.ResetToken, error) {
	const q = `SELECT token, user_id, expires_at, used_at FROM password_reset_tokens WHERE token = @token`

	var (
		t      domain.ResetToken
		userID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}).Scan(&t.Token, &userID, &t.ExpiresAt, &t.UsedAt)
	if err != nil {
		return domain.ResetToken{}, fmt.Errorf("repo.ResetTokenRepo.Get: %w", mapErr(err))
	}
	t.OwnerID = uuid.UUID(userID.Bytes)
	return t, nil
}

func (r *pgResetTokenRepo) Consume(ctx context.Context, token string) error {
	const q = `UPDATE password_reset_tokens SET used_at = now() WHERE token = @token AND used_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"token": token})
	if err != nil {
		return fmt.Errorf("repo.ResetTokenRepo.Consume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ResetTokenRepo.Consume: %w", domain.ErrNotFound)
	}
	return nil
}
