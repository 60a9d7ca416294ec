package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/storage"
)

// ReceiptURLPrefix is where settled receipts are served from.
const ReceiptURLPrefix = "/api/v1/payments/receipts/"

// Receipt is an uploaded proof of payment.
type Receipt struct {
	FileName string
	Body     io.Reader
}

// PaymentService creates obligations and settles them.
type PaymentService struct {
	payments repo.PaymentRepo
	tx       repo.Transactor
	store    storage.Store
	clock    Clock
	log      *slog.Logger
}

// NewPaymentService constructs a PaymentService. Receipts are written to store.
func NewPaymentService(payments repo.PaymentRepo, tx repo.Transactor, store storage.Store, clock Clock, log *slog.Logger) *PaymentService {
	return &PaymentService{payments: payments, tx: tx, store: store, clock: clock, log: log}
}

// CreateGeneric records an ad-hoc GENERIC_PAYMENT obligation on a boat and
// accrues it. ownerID must be the boat's current owner. A nil date means today.
func (s *PaymentService) CreateGeneric(ctx context.Context, boatID, ownerID uuid.UUID, amount decimal.Decimal, date *time.Time) (domain.Payment, error) {
	if !amount.IsPositive() {
		return domain.Payment{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if !domain.IsCurrencyAmount(amount) {
		return domain.Payment{}, fmt.Errorf("%w: amount must have at most %d decimal places", domain.ErrValidation, domain.CurrencyPlaces)
	}
	due := today(s.clock.now())
	if date != nil {
		due = today(*date)
	}

	var out domain.Payment
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		// The row lock orders this against a concurrent Unassign.
		boat, err := r.Boats.GetForUpdate(ctx, boatID)
		if err != nil {
			return err
		}
		if boat.OwnerID == nil || *boat.OwnerID != ownerID {
			return fmt.Errorf("%w: owner does not own this boat", domain.ErrValidation)
		}

		p, err := r.Payments.Create(ctx, domain.Payment{
			BoatID:  boatID,
			OwnerID: &ownerID,
			Amount:  amount,
			Date:    due,
			Reason:  domain.ReasonGenericPayment,
			Status:  domain.StatusToPay,
		})
		if err != nil {
			return err
		}
		if _, err := r.Boats.AdjustBalance(ctx, boatID, domain.BalanceDelta(amount, domain.Accrue)); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.CreateGeneric: %w", err)
	}
	s.log.InfoContext(ctx, "generic payment created", "payment_id", out.ID, "boat_id", boatID, "amount", amount.StringFixed(2))
	return out, nil
}

// AttachReceipt settles a TO_PAY payment: the receipt is stored, the payment
// moves to PAID and the boat's balance is reduced by the payment amount.
// A payment settles at most once, including under concurrent calls.
func (s *PaymentService) AttachReceipt(ctx context.Context, id uuid.UUID, receipt Receipt) (domain.Payment, error) {
	if receipt.Body == nil {
		return domain.Payment{}, domain.ErrMissingReceipt
	}

	current, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.AttachReceipt: %w", err)
	}
	// Cheap early exit; the conditional update below is what actually guards.
	if current.Settled() {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.AttachReceipt: %w", domain.ErrAlreadySettled)
	}

	obj, err := s.store.Save(ctx, storage.FolderReceipts, filepath.Ext(receipt.FileName), receipt.Body)
	if errors.Is(err, storage.ErrEmpty) {
		return domain.Payment{}, domain.ErrMissingReceipt
	}
	if errors.Is(err, storage.ErrInvalidName) {
		return domain.Payment{}, fmt.Errorf("%w: unsupported receipt file name", domain.ErrValidation)
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.AttachReceipt: %w", err)
	}

	var out domain.Payment
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		paid, err := r.Payments.MarkPaid(ctx, id, ReceiptURLPrefix+obj.Name)
		if err != nil {
			return err
		}
		if _, err := r.Boats.AdjustBalance(ctx, paid.BoatID, domain.BalanceDelta(paid.Amount, domain.Settle)); err != nil {
			return err
		}
		out = paid
		return nil
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Folder, obj.Name); delErr != nil {
			s.log.WarnContext(ctx, "orphan receipt not removed", "file", obj.Name, "error", delErr)
		}
		return domain.Payment{}, fmt.Errorf("service.PaymentService.AttachReceipt: %w", err)
	}

	s.log.InfoContext(ctx, "payment settled",
		"payment_id", out.ID, "boat_id", out.BoatID, "reason", out.Reason, "amount", out.Amount.StringFixed(2))
	return out, nil
}

// GetByID returns a single payment.
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of payments matching f.
func (s *PaymentService) List(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) (domain.Page[domain.Payment], error) {
	if f.Reason != "" && !f.Reason.Valid() {
		return domain.Page[domain.Payment]{}, fmt.Errorf("%w: unknown reason %q", domain.ErrValidation, f.Reason)
	}
	if f.Status != "" && !f.Status.Valid() {
		return domain.Page[domain.Payment]{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return domain.Page[domain.Payment]{}, fmt.Errorf("%w: to must not be before from", domain.ErrValidation)
	}

	items, total, err := s.payments.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Payment]{}, fmt.Errorf("service.PaymentService.List: %w", err)
	}
	return page(items, total, p), nil
}

// ListByOwner returns one page of an owner's payments.
func (s *PaymentService) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Payment], error) {
	return s.List(ctx, domain.PaymentFilter{OwnerID: &ownerID}, p)
}

// OpenReceipt streams a stored receipt. The caller must close the reader.
func (s *PaymentService) OpenReceipt(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, storage.FolderReceipts, name)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		return nil, fmt.Errorf("%w: receipt %q", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.OpenReceipt: %w", err)
	}
	return rc, nil
}
