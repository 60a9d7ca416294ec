package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// PaymentRepo defines the persistence operations for Payments.
type PaymentRepo interface {
	// Create inserts one payment and returns the persisted record.
	Create(ctx context.Context, p domain.Payment) (domain.Payment, error)

	// CreateBatch inserts all payments in one round trip, preserving order.
	CreateBatch(ctx context.Context, ps []domain.Payment) ([]domain.Payment, error)

	// GetByID returns domain.ErrNotFound if no payment with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)

	// GetByMaintenance returns the payment billed for a maintenance record.
	GetByMaintenance(ctx context.Context, maintenanceID uuid.UUID) (domain.Payment, error)

	// List returns one page of payments matching f, earliest due date first,
	// and the total count.
	List(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) ([]domain.Payment, int64, error)

	// MarkPaid moves a TO_PAY payment to PAID with the given receipt reference.
	// Returns domain.ErrAlreadySettled if the payment is already PAID, or
	// domain.ErrNotFound if it does not exist.
	MarkPaid(ctx context.Context, id uuid.UUID, invoiceURL string) (domain.Payment, error)

	// UpdateAmount changes the amount of a TO_PAY payment.
	// Returns domain.ErrAlreadySettled if the payment is already PAID.
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (domain.Payment, error)

	// Delete removes a payment by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountOutstanding returns how many TO_PAY payments exist for a boat.
	CountOutstanding(ctx context.Context, boatID uuid.UUID) (int64, error)

	// CountOverdue returns how many TO_PAY payments are due before t.
	CountOverdue(ctx context.Context, t time.Time) (int64, error)

	// Export returns every payment joined with its boat and owner names.
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

type pgPaymentRepo struct {
	db db
}

// NewPaymentRepo constructs a PaymentRepo backed by the provided db connection.
func NewPaymentRepo(db db) PaymentRepo {
	return &pgPaymentRepo{db: db}
}

const paymentColumns = `id, boat_id, owner_id, maintenance_id, amount, date, reason, status, invoice_url, paid_at, created_at`

const insertPayment = `
		INSERT INTO payments (boat_id, owner_id, maintenance_id, amount, date, reason, status)
		VALUES (@boat_id, @owner_id, @maintenance_id, @amount, @date, @reason, @status)
		RETURNING ` + paymentColumns

func paymentArgs(p domain.Payment) pgx.NamedArgs {
	return pgx.NamedArgs{
		"boat_id":        p.BoatID,
		"owner_id":       p.OwnerID,
		"maintenance_id": p.MaintenanceID,
		"amount":         p.Amount,
		"date":           p.Date,
		"reason":         p.Reason,
		"status":         p.Status,
	}
}

func (r *pgPaymentRepo) Create(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	result, err := scanPayment(r.db.QueryRow(ctx, insertPayment, paymentArgs(p)))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepo) CreateBatch(ctx context.Context, ps []domain.Payment) ([]domain.Payment, error) {
	if len(ps) == 0 {
		return []domain.Payment{}, nil
	}

	batch := &pgx.Batch{}
	for _, p := range ps {
		batch.Queue(insertPayment, paymentArgs(p))
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	out := make([]domain.Payment, 0, len(ps))
	for i := range ps {
		p, err := scanPayment(br.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("repo.PaymentRepo.CreateBatch: row %d: %w", i, err)
		}
		out = append(out, p)
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.CreateBatch: close: %w", err)
	}
	return out, nil
}

func (r *pgPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = @id`

	result, err := scanPayment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepo) GetByMaintenance(ctx context.Context, maintenanceID uuid.UUID) (domain.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE maintenance_id = @maintenance_id`

	result, err := scanPayment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"maintenance_id": maintenanceID}))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.GetByMaintenance: %w", err)
	}
	return result, nil
}

// paymentFilterWhere matches against boat name and owner full name for search.
const paymentFilterWhere = `
		FROM payments p
		JOIN boats b ON b.id = p.boat_id
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE (@search::text = '' OR b.name ILIKE '%' || @search || '%'
		                          OR u.full_name ILIKE '%' || @search || '%')
		  AND (@owner_id::uuid IS NULL OR p.owner_id = @owner_id)
		  AND (@boat_id::uuid IS NULL OR p.boat_id = @boat_id)
		  AND (@reason::text = '' OR p.reason = @reason)
		  AND (@status::text = '' OR p.status = @status)
		  AND (@from::timestamptz IS NULL OR p.date >= @from)
		  AND (@to::timestamptz IS NULL OR p.date <= @to)`

func (r *pgPaymentRepo) List(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) ([]domain.Payment, int64, error) {
	const q = `
		SELECT p.id, p.boat_id, p.owner_id, p.maintenance_id, p.amount, p.date, p.reason,
		       p.status, p.invoice_url, p.paid_at, p.created_at` + paymentFilterWhere + `
		ORDER BY p.date, p.id
		LIMIT @limit OFFSET @offset`
	const countQ = `SELECT count(*)` + paymentFilterWhere

	args := pgx.NamedArgs{
		"search":   f.Search,
		"owner_id": f.OwnerID,
		"boat_id":  f.BoatID,
		"reason":   string(f.Reason),
		"status":   string(f.Status),
		"from":     f.From,
		"to":       f.To,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PaymentRepo.List: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PaymentRepo.List: %w", err)
	}
	payments, err := collect(rows, scanPayment)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PaymentRepo.List: %w", err)
	}
	return payments, total, nil
}

// MarkPaid is a compare-and-set on status: only a TO_PAY row matches, so
// concurrent settlements of the same payment cannot both succeed.
func (r *pgPaymentRepo) MarkPaid(ctx context.Context, id uuid.UUID, invoiceURL string) (domain.Payment, error) {
	const q = `
		UPDATE payments
		SET status = 'PAID', invoice_url = @invoice_url, paid_at = now()
		WHERE id = @id AND status = 'TO_PAY'
		RETURNING ` + paymentColumns

	result, err := scanPayment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "invoice_url": invoiceURL}))
	if err == nil {
		return result, nil
	}
	return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.MarkPaid: %w", r.settledOrMissing(ctx, id, err))
}

func (r *pgPaymentRepo) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (domain.Payment, error) {
	const q = `
		UPDATE payments
		SET amount = @amount
		WHERE id = @id AND status = 'TO_PAY'
		RETURNING ` + paymentColumns

	result, err := scanPayment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "amount": amount}))
	if err == nil {
		return result, nil
	}
	return domain.Payment{}, fmt.Errorf("repo.PaymentRepo.UpdateAmount: %w", r.settledOrMissing(ctx, id, err))
}

// settledOrMissing resolves a zero-row conditional update into
// ErrAlreadySettled or ErrNotFound.
func (r *pgPaymentRepo) settledOrMissing(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return domain.ErrAlreadySettled
}

func (r *pgPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM payments WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PaymentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PaymentRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPaymentRepo) CountOutstanding(ctx context.Context, boatID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM payments WHERE boat_id = @boat_id AND status = 'TO_PAY'`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"boat_id": boatID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PaymentRepo.CountOutstanding: %w", err)
	}
	return n, nil
}

func (r *pgPaymentRepo) CountOverdue(ctx context.Context, t time.Time) (int64, error) {
	const q = `SELECT count(*) FROM payments WHERE status = 'TO_PAY' AND date < @t`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"t": t}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PaymentRepo.CountOverdue: %w", err)
	}
	return n, nil
}

func (r *pgPaymentRepo) Export(ctx context.Context) ([]domain.ExportRow, error) {
	const q = `
		SELECT p.id, b.name, b.type, COALESCE(u.full_name, ''), COALESCE(u.email, ''),
		       p.reason, p.status, p.amount, p.date, p.paid_at, p.invoice_url
		FROM payments p
		JOIN boats b ON b.id = p.boat_id
		LEFT JOIN users u ON u.id = p.owner_id
		ORDER BY b.name, p.date, p.id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.Export: %w", err)
	}
	out, err := collect(rows, func(s scanner) (domain.ExportRow, error) {
		var (
			row domain.ExportRow
			id  pgtype.UUID
		)
		err := s.Scan(&id, &row.BoatName, &row.BoatType, &row.OwnerName, &row.OwnerEmail,
			&row.Reason, &row.Status, &row.Amount, &row.DueDate, &row.PaidAt, &row.InvoiceURL)
		row.PaymentID = uuid.UUID(id.Bytes).String()
		return row, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PaymentRepo.Export: %w", err)
	}
	return out, nil
}

// scanPayment maps a single database row into a domain.Payment.
func scanPayment(s scanner) (domain.Payment, error) {
	var (
		p             domain.Payment
		id            pgtype.UUID
		boatID        pgtype.UUID
		ownerID       pgtype.UUID
		maintenanceID pgtype.UUID
	)

	err := s.Scan(&id, &boatID, &ownerID, &maintenanceID, &p.Amount, &p.Date, &p.Reason,
		&p.Status, &p.InvoiceURL, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return domain.Payment{}, mapErr(err)
	}

	p.ID = uuid.UUID(id.Bytes)
	p.BoatID = uuid.UUID(boatID.Bytes)
	p.OwnerID = uuidPtr(ownerID)
	p.MaintenanceID = uuidPtr(maintenanceID)
	return p, nil
}
