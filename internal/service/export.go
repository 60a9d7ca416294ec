package service

import (
	"context"
	"fmt"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// ExportService assembles a flat export of every payment in the ledger.
type ExportService struct {
	payments repo.PaymentRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(payments repo.PaymentRepo) *ExportService {
	return &ExportService{payments: payments}
}

// Export returns one ExportRow per payment, grouped by boat and ordered by due date.
// Payments without an owner carry empty owner fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows, err := s.payments.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return nonNil(rows), nil
}
