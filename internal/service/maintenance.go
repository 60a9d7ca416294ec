package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// MaintenanceService manages maintenance records and the MAINTENANCE payment
// that bills each one.
type MaintenanceService struct {
	repo  repo.MaintenanceRepo
	tx    repo.Transactor
	clock Clock
	log   *slog.Logger
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(r repo.MaintenanceRepo, tx repo.Transactor, clock Clock, log *slog.Logger) *MaintenanceService {
	return &MaintenanceService{repo: r, tx: tx, clock: clock, log: log}
}

// Create records maintenance on a boat. In the same transaction it creates a
// TO_PAY MAINTENANCE payment for the cost (zero when absent), linked to the
// boat's current owner, and accrues the cost on the boat's balance.
func (s *MaintenanceService) Create(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	if m.Status == "" {
		m.Status = domain.MaintenanceScheduled
	}
	if m.Priority == "" {
		m.Priority = domain.PriorityMedium
	}
	m, err := s.validate(m)
	if err != nil {
		return domain.Maintenance{}, err
	}

	var out domain.Maintenance
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		boat, err := r.Boats.GetByID(ctx, m.BoatID)
		if err != nil {
			return err
		}
		created, err := r.Maintenances.Create(ctx, m)
		if err != nil {
			return err
		}

		amount := created.BilledAmount()
		p, err := r.Payments.Create(ctx, domain.Payment{
			BoatID:        boat.ID,
			OwnerID:       boat.OwnerID,
			MaintenanceID: &created.ID,
			Amount:        amount,
			Date:          created.ScheduledDate,
			Reason:        domain.ReasonMaintenance,
			Status:        domain.StatusToPay,
		})
		if err != nil {
			return err
		}
		if _, err := r.Boats.AdjustBalance(ctx, boat.ID, domain.BalanceDelta(amount, domain.Accrue)); err != nil {
			return err
		}

		created.PaymentID = &p.ID
		out = created
		return nil
	})
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("service.MaintenanceService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "maintenance created",
		"maintenance_id", out.ID, "boat_id", out.BoatID, "billed", out.BilledAmount().StringFixed(2))
	return out, nil
}

// GetByID returns a single maintenance record.
func (s *MaintenanceService) GetByID(ctx context.Context, id uuid.UUID) (domain.Maintenance, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("service.MaintenanceService.GetByID: %w", err)
	}
	return m, nil
}

// List returns one page of records matching f.
func (s *MaintenanceService) List(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error) {
	if f.Status != "" && !f.Status.Valid() {
		return domain.Page[domain.Maintenance]{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	if f.Type != "" && !f.Type.Valid() {
		return domain.Page[domain.Maintenance]{}, fmt.Errorf("%w: unknown type %q", domain.ErrValidation, f.Type)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return domain.Page[domain.Maintenance]{}, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, f.Priority)
	}

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Maintenance]{}, fmt.Errorf("service.MaintenanceService.List: %w", err)
	}
	return page(items, total, p), nil
}

// ListByBoat is List scoped to one boat.
func (s *MaintenanceService) ListByBoat(ctx context.Context, boatID uuid.UUID, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error) {
	f.BoatID = &boatID
	return s.List(ctx, f, p)
}

// Update overwrites a record. A changed cost re-bills the linked payment
// while it is TO_PAY and moves the balance by the difference; once the
// payment is PAID the cost is locked.
func (s *MaintenanceService) Update(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	var out domain.Maintenance
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		existing, err := r.Maintenances.GetByID(ctx, m.ID)
		if err != nil {
			return err
		}
		m.BoatID = existing.BoatID
		if m.Status == "" {
			m.Status = existing.Status
		}
		if m.Priority == "" {
			m.Priority = existing.Priority
		}
		if m, err = s.validate(m); err != nil {
			return err
		}

		oldAmount, newAmount := existing.BilledAmount(), m.BilledAmount()
		if !oldAmount.Equal(newAmount) && existing.PaymentID != nil {
			p, err := r.Payments.UpdateAmount(ctx, *existing.PaymentID, newAmount)
			if err != nil {
				// ErrAlreadySettled: the cost of a paid maintenance is locked.
				return err
			}
			diff := newAmount.Sub(oldAmount)
			if _, err := r.Boats.AdjustBalance(ctx, p.BoatID, domain.BalanceDelta(diff, domain.Accrue)); err != nil {
				return err
			}
		}

		updated, err := r.Maintenances.Update(ctx, m)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Maintenance{}, fmt.Errorf("service.MaintenanceService.Update: %w", err)
	}
	return out, nil
}

// Delete removes a record. An unpaid linked payment is removed with it and
// its amount settled off the balance; a paid one is kept, unlinked.
func (s *MaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		existing, err := r.Maintenances.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.PaymentID != nil {
			p, err := r.Payments.GetByID(ctx, *existing.PaymentID)
			if err != nil {
				return err
			}
			if !p.Settled() {
				if err := r.Payments.Delete(ctx, p.ID); err != nil {
					return err
				}
				if _, err := r.Boats.AdjustBalance(ctx, p.BoatID, domain.BalanceDelta(p.Amount, domain.Settle)); err != nil {
					return err
				}
			}
		}
		return r.Maintenances.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.MaintenanceService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "maintenance deleted", "maintenance_id", id)
	return nil
}

func (s *MaintenanceService) validate(m domain.Maintenance) (domain.Maintenance, error) {
	if m.BoatID == uuid.Nil {
		return m, fmt.Errorf("%w: boat_id is required", domain.ErrValidation)
	}
	if !m.Type.Valid() {
		return m, fmt.Errorf("%w: unknown maintenance type %q", domain.ErrValidation, m.Type)
	}
	if !m.Status.Valid() {
		return m, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, m.Status)
	}
	if !m.Priority.Valid() {
		return m, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, m.Priority)
	}
	if m.ScheduledDate.IsZero() {
		return m, fmt.Errorf("%w: scheduled_date is required", domain.ErrValidation)
	}
	if m.Cost != nil && m.Cost.IsNegative() {
		return m, fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	if m.Cost != nil && !domain.IsCurrencyAmount(*m.Cost) {
		return m, fmt.Errorf("%w: cost must have at most %d decimal places", domain.ErrValidation, domain.CurrencyPlaces)
	}

	m.Description = strings.TrimSpace(m.Description)
	m.ScheduledDate = today(m.ScheduledDate)
	if m.Status == domain.MaintenanceCompleted && m.PerformedDate == nil {
		d := today(s.clock.now())
		m.PerformedDate = &d
	}
	return m, nil
}
