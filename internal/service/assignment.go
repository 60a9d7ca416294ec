package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/plan"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// Assignment is the result of handing a boat to an owner.
type Assignment struct {
	Boat     domain.Boat      `json:"boat"`
	Payments []domain.Payment `json:"payments"`
}

// AssignmentService binds boats to owners and generates their installment plans.
type AssignmentService struct {
	boats  repo.BoatRepo
	owners repo.OwnerRepo
	tx     repo.Transactor
	clock  Clock
	log    *slog.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(boats repo.BoatRepo, owners repo.OwnerRepo, tx repo.Transactor, clock Clock, log *slog.Logger) *AssignmentService {
	return &AssignmentService{boats: boats, owners: owners, tx: tx, clock: clock, log: log}
}

// Assign sets the owner of an unowned boat and persists one INSTALLMENT
// payment per generated installment. The boat's balance accrues the plan
// total. The plan is computed before any write, so a rejected plan leaves
// nothing behind.
func (s *AssignmentService) Assign(ctx context.Context, boatID, ownerID uuid.UUID, req plan.Request) (Assignment, error) {
	boat, owner, err := s.load(ctx, boatID, ownerID)
	if err != nil {
		return Assignment{}, fmt.Errorf("service.AssignmentService.Assign: %w", err)
	}

	installments, err := plan.Generate(boat.Price, req, s.clock.now())
	if err != nil {
		return Assignment{}, fmt.Errorf("service.AssignmentService.Assign: %w", err)
	}

	pending := make([]domain.Payment, len(installments))
	for i, inst := range installments {
		pending[i] = domain.Payment{
			BoatID:  boat.ID,
			OwnerID: &owner.ID,
			Amount:  inst.Amount,
			Date:    inst.DueDate,
			Reason:  domain.ReasonInstallment,
			Status:  domain.StatusToPay,
		}
	}
	total := plan.Total(installments)

	var out Assignment
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		// AssignOwner is conditional on owner_id IS NULL; a concurrent
		// assignment that got there first surfaces as ErrAlreadyAssigned.
		b, err := r.Boats.AssignOwner(ctx, boat.ID, owner.ID, domain.BalanceDelta(total, domain.Accrue))
		if err != nil {
			return err
		}
		created, err := r.Payments.CreateBatch(ctx, pending)
		if err != nil {
			return err
		}
		out = Assignment{Boat: b, Payments: created}
		return nil
	})
	if err != nil {
		return Assignment{}, fmt.Errorf("service.AssignmentService.Assign: %w", err)
	}

	s.log.InfoContext(ctx, "boat assigned",
		"boat_id", boat.ID, "owner_id", owner.ID,
		"installments", len(out.Payments), "total", total.StringFixed(2))
	return out, nil
}

// AssignManual sets the owner without generating a plan or touching the balance.
func (s *AssignmentService) AssignManual(ctx context.Context, boatID, ownerID uuid.UUID) (domain.Boat, error) {
	boat, owner, err := s.load(ctx, boatID, ownerID)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.AssignmentService.AssignManual: %w", err)
	}

	b, err := s.boats.AssignOwner(ctx, boat.ID, owner.ID, decimal.Zero)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.AssignmentService.AssignManual: %w", err)
	}
	s.log.InfoContext(ctx, "boat assigned manually", "boat_id", boat.ID, "owner_id", owner.ID)
	return b, nil
}

// Unassign clears the owner of a boat. It is refused while the boat still
// has TO_PAY payments. The boat row stays locked from the count to the
// update, so a CreateGeneric cannot slip a payment in between.
func (s *AssignmentService) Unassign(ctx context.Context, boatID uuid.UUID) (domain.Boat, error) {
	var b domain.Boat
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Boats.GetForUpdate(ctx, boatID); err != nil {
			return err
		}
		n, err := r.Payments.CountOutstanding(ctx, boatID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: boat has %d outstanding payments", domain.ErrValidation, n)
		}
		b, err = r.Boats.Unassign(ctx, boatID)
		return err
	})
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.AssignmentService.Unassign: %w", err)
	}
	s.log.InfoContext(ctx, "boat unassigned", "boat_id", boatID)
	return b, nil
}

// load fetches both sides of an assignment and checks the preconditions that
// can be checked without a write.
func (s *AssignmentService) load(ctx context.Context, boatID, ownerID uuid.UUID) (domain.Boat, domain.Owner, error) {
	boat, err := s.boats.GetByID(ctx, boatID)
	if err != nil {
		return domain.Boat{}, domain.Owner{}, err
	}
	owner, err := s.owners.GetByID(ctx, ownerID)
	if err != nil {
		return domain.Boat{}, domain.Owner{}, err
	}
	if owner.Role != domain.RoleOwner || !owner.Active {
		return domain.Boat{}, domain.Owner{}, fmt.Errorf("%w: user is not an active owner", domain.ErrValidation)
	}
	if boat.Assigned() {
		return domain.Boat{}, domain.Owner{}, domain.ErrAlreadyAssigned
	}
	return boat, owner, nil
}
