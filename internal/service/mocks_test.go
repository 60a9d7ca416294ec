package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mockBoatRepo is a hand-written test double for repo.BoatRepo.
// Each method is a function field; set only the ones a test needs.
type mockBoatRepo struct {
	create        func(ctx context.Context, b domain.Boat) (domain.Boat, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Boat, error)
	getForUpdate  func(ctx context.Context, id uuid.UUID) (domain.Boat, error)
	list          func(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) ([]domain.Boat, int64, error)
	listByOwner   func(ctx context.Context, ownerID uuid.UUID) ([]domain.Boat, error)
	update        func(ctx context.Context, b domain.Boat) (domain.Boat, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	assignOwner   func(ctx context.Context, id, ownerID uuid.UUID, seed decimal.Decimal) (domain.Boat, error)
	unassign      func(ctx context.Context, id uuid.UUID) (domain.Boat, error)
	adjustBalance func(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (domain.Boat, error)
}

func (m *mockBoatRepo) Create(ctx context.Context, b domain.Boat) (domain.Boat, error) {
	return m.create(ctx, b)
}
func (m *mockBoatRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	return m.getByID(ctx, id)
}
func (m *mockBoatRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	return m.getForUpdate(ctx, id)
}
func (m *mockBoatRepo) List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) ([]domain.Boat, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockBoatRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Boat, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockBoatRepo) Update(ctx context.Context, b domain.Boat) (domain.Boat, error) {
	return m.update(ctx, b)
}
func (m *mockBoatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockBoatRepo) AssignOwner(ctx context.Context, id, ownerID uuid.UUID, seed decimal.Decimal) (domain.Boat, error) {
	return m.assignOwner(ctx, id, ownerID, seed)
}
func (m *mockBoatRepo) Unassign(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	return m.unassign(ctx, id)
}
func (m *mockBoatRepo) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (domain.Boat, error) {
	return m.adjustBalance(ctx, id, delta)
}

// compile-time check: mockBoatRepo must satisfy repo.BoatRepo.
var _ repo.BoatRepo = (*mockBoatRepo)(nil)

type mockDocumentRepo struct {
	create     func(ctx context.Context, d domain.Document) (domain.Document, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Document, error)
	listByBoat func(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error)
	rename     func(ctx context.Context, id uuid.UUID, name string) (domain.Document, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	return m.create(ctx, d)
}
func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return m.getByID(ctx, id)
}
func (m *mockDocumentRepo) ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error) {
	return m.listByBoat(ctx, boatID)
}
func (m *mockDocumentRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Document, error) {
	return m.rename(ctx, id, name)
}
func (m *mockDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.DocumentRepo = (*mockDocumentRepo)(nil)

type mockResetTokenRepo struct {
	create  func(ctx context.Context, t domain.ResetToken) error
	get     func(ctx context.Context, token string) (domain.ResetToken, error)
	consume func(ctx context.Context, token string) error
}

func (m *mockResetTokenRepo) Create(ctx context.Context, t domain.ResetToken) error {
	return m.create(ctx, t)
}
func (m *mockResetTokenRepo) Get(ctx context.Context, token string) (domain.ResetToken, error) {
	return m.get(ctx, token)
}
func (m *mockResetTokenRepo) Consume(ctx context.Context, token string) error {
	return m.consume(ctx, token)
}

var _ repo.ResetTokenRepo = (*mockResetTokenRepo)(nil)

type mockDashboardRepo struct {
	ownerMetrics         func(ctx context.Context, ownerID uuid.UUID) (domain.OwnerMetrics, error)
	boatDebts            func(ctx context.Context, ownerID uuid.UUID) ([]domain.BoatDebt, error)
	upcomingMaintenances func(ctx context.Context, ownerID uuid.UUID, from, to time.Time, limit int) ([]domain.Maintenance, error)
	recentMaintenances   func(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Maintenance, error)
	adminStats           func(ctx context.Context, monthStart, monthEnd time.Time) (domain.AdminStats, error)
	boatsByType          func(ctx context.Context) ([]domain.ChartPoint, error)
	maintenancesByStatus func(ctx context.Context) ([]domain.ChartPoint, error)
}

func (m *mockDashboardRepo) OwnerMetrics(ctx context.Context, ownerID uuid.UUID) (domain.OwnerMetrics, error) {
	return m.ownerMetrics(ctx, ownerID)
}
func (m *mockDashboardRepo) BoatDebts(ctx context.Context, ownerID uuid.UUID) ([]domain.BoatDebt, error) {
	return m.boatDebts(ctx, ownerID)
}
func (m *mockDashboardRepo) UpcomingMaintenances(ctx context.Context, ownerID uuid.UUID, from, to time.Time, limit int) ([]domain.Maintenance, error) {
	return m.upcomingMaintenances(ctx, ownerID, from, to, limit)
}
func (m *mockDashboardRepo) RecentMaintenances(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Maintenance, error) {
	return m.recentMaintenances(ctx, ownerID, limit)
}
func (m *mockDashboardRepo) AdminStats(ctx context.Context, monthStart, monthEnd time.Time) (domain.AdminStats, error) {
	return m.adminStats(ctx, monthStart, monthEnd)
}
func (m *mockDashboardRepo) BoatsByType(ctx context.Context) ([]domain.ChartPoint, error) {
	return m.boatsByType(ctx)
}
func (m *mockDashboardRepo) MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error) {
	return m.maintenancesByStatus(ctx)
}

var _ repo.DashboardRepo = (*mockDashboardRepo)(nil)

// passthroughTx runs fn against fixed repos without any rollback.
type passthroughTx struct {
	repos repo.Repos
}

func (t passthroughTx) InTx(ctx context.Context, fn func(r repo.Repos) error) error {
	return fn(t.repos)
}

// mockStore is a testify mock for storage.Store, used where a test needs to
// assert which files were written or removed.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, folder, ext string, r io.Reader) (storage.Object, error) {
	args := m.Called(ctx, folder, ext, r)
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *mockStore) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, folder, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, folder, name string) error {
	return m.Called(ctx, folder, name).Error(0)
}

var _ storage.Store = (*mockStore)(nil)
