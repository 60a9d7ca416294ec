// Package handler implements the HTTP handlers for the fleet ledger API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (boat.go, payment.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/plan"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// BoatServicer defines the boat operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type BoatServicer interface {
	Create(ctx context.Context, boat domain.Boat) (domain.Boat, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error)
	List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) (domain.Page[domain.Boat], error)
	Update(ctx context.Context, boat domain.Boat) (domain.Boat, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OwnerServicer manages user accounts.
type OwnerServicer interface {
	CreateOwner(ctx context.Context, in service.NewOwner) (domain.Owner, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Owner, error)
	List(ctx context.Context, search string, p domain.PaginationParams) (domain.Page[domain.Owner], error)
	Update(ctx context.Context, id uuid.UUID, patch domain.OwnerPatch) (domain.Owner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, password string) error
}

// AuthServicer covers login and password recovery.
type AuthServicer interface {
	Login(ctx context.Context, identifier, password string) (service.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
	ResetPassword(ctx context.Context, token, password string) error
}

type AssignmentServicer interface {
	Assign(ctx context.Context, boatID, ownerID uuid.UUID, req plan.Request) (service.Assignment, error)
	AssignManual(ctx context.Context, boatID, ownerID uuid.UUID) (domain.Boat, error)
	Unassign(ctx context.Context, boatID uuid.UUID) (domain.Boat, error)
}

type MaintenanceServicer interface {
	Create(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Maintenance, error)
	List(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error)
	ListByBoat(ctx context.Context, boatID uuid.UUID, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error)
	Update(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PaymentServicer interface {
	CreateGeneric(ctx context.Context, boatID, ownerID uuid.UUID, amount decimal.Decimal, date *time.Time) (domain.Payment, error)
	AttachReceipt(ctx context.Context, id uuid.UUID, receipt service.Receipt) (domain.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	List(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) (domain.Page[domain.Payment], error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Payment], error)
	OpenReceipt(ctx context.Context, name string) (io.ReadCloser, error)
}

type DocumentServicer interface {
	Upload(ctx context.Context, boatID uuid.UUID, up service.Upload) (domain.Document, error)
	ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error)
	Rename(ctx context.Context, boatID, docID uuid.UUID, name string) (domain.Document, error)
	Delete(ctx context.Context, boatID, docID uuid.UUID) error
	Open(ctx context.Context, fileName string) (io.ReadCloser, error)
}

type DashboardServicer interface {
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (domain.OwnerDashboard, error)
	AdminStats(ctx context.Context) (domain.AdminStats, error)
	BoatsByType(ctx context.Context) ([]domain.ChartPoint, error)
	MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error)
}

// ExportServicer defines the operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Deps bundles the services a Server dispatches to. A nil field is allowed
// in tests that only exercise other endpoints.
type Deps struct {
	Boats        BoatServicer
	Owners       OwnerServicer
	Auth         AuthServicer
	Assignments  AssignmentServicer
	Maintenances MaintenanceServicer
	Payments     PaymentServicer
	Documents    DocumentServicer
	Dashboards   DashboardServicer
	Export       ExportServicer
	Logger       *slog.Logger
}

// Server holds every endpoint's dependencies.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	boats        BoatServicer
	owners       OwnerServicer
	auth         AuthServicer
	assignments  AssignmentServicer
	maintenances MaintenanceServicer
	payments     PaymentServicer
	documents    DocumentServicer
	dashboards   DashboardServicer
	export       ExportServicer
	log          *slog.Logger
	validate     *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		boats:        d.Boats,
		owners:       d.Owners,
		auth:         d.Auth,
		assignments:  d.Assignments,
		maintenances: d.Maintenances,
		payments:     d.Payments,
		documents:    d.Documents,
		dashboards:   d.Dashboards,
		export:       d.Export,
		log:          log,
		validate:     newValidator(),
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
