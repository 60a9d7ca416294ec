package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// BoatService implements business logic for the boat catalogue.
// Ownership and balance changes live in AssignmentService and PaymentService.
type BoatService struct {
	repo repo.BoatRepo
	log  *slog.Logger
}

// NewBoatService constructs a BoatService backed by the provided BoatRepo.
func NewBoatService(r repo.BoatRepo, log *slog.Logger) *BoatService {
	return &BoatService{repo: r, log: log}
}

// Create validates and persists a new, unassigned boat with a zero balance.
func (s *BoatService) Create(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	boat, err := validateBoat(boat)
	if err != nil {
		return domain.Boat{}, err
	}
	boat.OwnerID = nil
	boat.Balance = decimal.Zero

	created, err := s.repo.Create(ctx, boat)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.BoatService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "boat created", "boat_id", created.ID, "type", created.Type)
	return created, nil
}

// GetByID returns a single boat by ID.
func (s *BoatService) GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.BoatService.GetByID: %w", err)
	}
	return b, nil
}

// List returns one page of boats matching f.
func (s *BoatService) List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) (domain.Page[domain.Boat], error) {
	if f.Type != "" && !f.Type.Valid() {
		return domain.Page[domain.Boat]{}, fmt.Errorf("%w: unknown boat type %q", domain.ErrValidation, f.Type)
	}
	if f.Status != "" && f.Status != domain.BoatStatusAssigned && f.Status != domain.BoatStatusUnassigned {
		return domain.Page[domain.Boat]{}, fmt.Errorf("%w: status must be assigned or unassigned", domain.ErrValidation)
	}
	f.Search = strings.TrimSpace(f.Search)

	boats, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Boat]{}, fmt.Errorf("service.BoatService.List: %w", err)
	}
	return page(boats, total, p), nil
}

// Update overwrites the descriptive fields of a boat.
// The price of an assigned boat is frozen: its installments were computed from it.
func (s *BoatService) Update(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	boat, err := validateBoat(boat)
	if err != nil {
		return domain.Boat{}, err
	}

	existing, err := s.repo.GetByID(ctx, boat.ID)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.BoatService.Update: %w", err)
	}
	if existing.Assigned() && !existing.Price.Equal(boat.Price) {
		return domain.Boat{}, fmt.Errorf("%w: price cannot change while the boat has an owner", domain.ErrValidation)
	}

	updated, err := s.repo.Update(ctx, boat)
	if err != nil {
		return domain.Boat{}, fmt.Errorf("service.BoatService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a boat and, through the schema, its documents, maintenances
// and payments.
func (s *BoatService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.BoatService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "boat deleted", "boat_id", id)
	return nil
}

func validateBoat(b domain.Boat) (domain.Boat, error) {
	name, err := required("name", b.Name)
	if err != nil {
		return domain.Boat{}, err
	}
	b.Name = name
	b.Model = strings.TrimSpace(b.Model)
	b.Location = strings.TrimSpace(b.Location)

	if !b.Type.Valid() {
		return domain.Boat{}, fmt.Errorf("%w: unknown boat type %q", domain.ErrValidation, b.Type)
	}
	if b.Price.IsNegative() {
		return domain.Boat{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if !domain.IsCurrencyAmount(b.Price) {
		return domain.Boat{}, fmt.Errorf("%w: price must have at most %d decimal places", domain.ErrValidation, domain.CurrencyPlaces)
	}
	return b, nil
}
