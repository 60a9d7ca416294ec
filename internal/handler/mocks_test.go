package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/auth"
	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/handler"
	"github.com/pkordes/fleet-ledger/internal/plan"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// ---- token parser ----------------------------------------------------------

// Tokens are "admin" or "owner:<uuid>"; anything else is rejected.
type fakeTokens struct{}

func (fakeTokens) Parse(token string) (*auth.Claims, error) {
	if token == "admin" {
		return &auth.Claims{Username: "admin", Role: domain.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}}, nil
	}
	if id, ok := strings.CutPrefix(token, "owner:"); ok {
		return &auth.Claims{Username: "owner", Role: domain.RoleOwner,
			RegisteredClaims: jwt.RegisteredClaims{Subject: id}}, nil
	}
	return nil, errors.New("bad token")
}

// ---- helpers ---------------------------------------------------------------

func newRouter(d handler.Deps) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(d).Register(r, handler.RouteOptions{Tokens: fakeTokens{}})
	return r
}

// do sends req through h with the given bearer token ("" for none).
func do(h http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func notFound(what string) error {
	return fmt.Errorf("repo.%s.GetByID: %w", what, domain.ErrNotFound)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

// ---- mock BoatServicer -----------------------------------------------------

type mockBoatServicer struct {
	create  func(ctx context.Context, boat domain.Boat) (domain.Boat, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Boat, error)
	list    func(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) (domain.Page[domain.Boat], error)
	update  func(ctx context.Context, boat domain.Boat) (domain.Boat, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBoatServicer) Create(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	return m.create(ctx, boat)
}

func (m *mockBoatServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	return m.getByID(ctx, id)
}

func (m *mockBoatServicer) List(ctx context.Context, f domain.BoatFilter, p domain.PaginationParams) (domain.Page[domain.Boat], error) {
	return m.list(ctx, f, p)
}

func (m *mockBoatServicer) Update(ctx context.Context, boat domain.Boat) (domain.Boat, error) {
	return m.update(ctx, boat)
}

func (m *mockBoatServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.BoatServicer = (*mockBoatServicer)(nil)

// ---- mock OwnerServicer ----------------------------------------------------

type mockOwnerServicer struct {
	createOwner    func(ctx context.Context, in service.NewOwner) (domain.Owner, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Owner, error)
	list           func(ctx context.Context, search string, p domain.PaginationParams) (domain.Page[domain.Owner], error)
	update         func(ctx context.Context, id uuid.UUID, patch domain.OwnerPatch) (domain.Owner, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	changePassword func(ctx context.Context, id uuid.UUID, password string) error
}

func (m *mockOwnerServicer) CreateOwner(ctx context.Context, in service.NewOwner) (domain.Owner, error) {
	return m.createOwner(ctx, in)
}

func (m *mockOwnerServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Owner, error) {
	return m.getByID(ctx, id)
}

func (m *mockOwnerServicer) List(ctx context.Context, search string, p domain.PaginationParams) (domain.Page[domain.Owner], error) {
	return m.list(ctx, search, p)
}

func (m *mockOwnerServicer) Update(ctx context.Context, id uuid.UUID, patch domain.OwnerPatch) (domain.Owner, error) {
	return m.update(ctx, id, patch)
}

func (m *mockOwnerServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

func (m *mockOwnerServicer) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	return m.changePassword(ctx, id, password)
}

var _ handler.OwnerServicer = (*mockOwnerServicer)(nil)

// ---- mock AuthServicer -----------------------------------------------------

type mockAuthServicer struct {
	login         func(ctx context.Context, identifier, password string) (service.LoginResult, error)
	forgot        func(ctx context.Context, email string) error
	validateToken func(ctx context.Context, token string) (bool, error)
	reset         func(ctx context.Context, token, password string) error
}

func (m *mockAuthServicer) Login(ctx context.Context, identifier, password string) (service.LoginResult, error) {
	return m.login(ctx, identifier, password)
}

func (m *mockAuthServicer) ForgotPassword(ctx context.Context, email string) error {
	return m.forgot(ctx, email)
}

func (m *mockAuthServicer) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	return m.validateToken(ctx, token)
}

func (m *mockAuthServicer) ResetPassword(ctx context.Context, token, password string) error {
	return m.reset(ctx, token, password)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// ---- mock AssignmentServicer -----------------------------------------------

type mockAssignmentServicer struct {
	assign       func(ctx context.Context, boatID, ownerID uuid.UUID, req plan.Request) (service.Assignment, error)
	assignManual func(ctx context.Context, boatID, ownerID uuid.UUID) (domain.Boat, error)
	unassign     func(ctx context.Context, boatID uuid.UUID) (domain.Boat, error)
}

func (m *mockAssignmentServicer) Assign(ctx context.Context, boatID, ownerID uuid.UUID, req plan.Request) (service.Assignment, error) {
	return m.assign(ctx, boatID, ownerID, req)
}

func (m *mockAssignmentServicer) AssignManual(ctx context.Context, boatID, ownerID uuid.UUID) (domain.Boat, error) {
	return m.assignManual(ctx, boatID, ownerID)
}

func (m *mockAssignmentServicer) Unassign(ctx context.Context, boatID uuid.UUID) (domain.Boat, error) {
	return m.unassign(ctx, boatID)
}

var _ handler.AssignmentServicer = (*mockAssignmentServicer)(nil)

// ---- mock MaintenanceServicer ----------------------------------------------

type mockMaintenanceServicer struct {
	create     func(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Maintenance, error)
	list       func(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error)
	listByBoat func(ctx context.Context, boatID uuid.UUID, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error)
	update     func(ctx context.Context, m domain.Maintenance) (domain.Maintenance, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMaintenanceServicer) Create(ctx context.Context, in domain.Maintenance) (domain.Maintenance, error) {
	return m.create(ctx, in)
}

func (m *mockMaintenanceServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Maintenance, error) {
	return m.getByID(ctx, id)
}

func (m *mockMaintenanceServicer) List(ctx context.Context, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error) {
	return m.list(ctx, f, p)
}

func (m *mockMaintenanceServicer) ListByBoat(ctx context.Context, boatID uuid.UUID, f domain.MaintenanceFilter, p domain.PaginationParams) (domain.Page[domain.Maintenance], error) {
	return m.listByBoat(ctx, boatID, f, p)
}

func (m *mockMaintenanceServicer) Update(ctx context.Context, in domain.Maintenance) (domain.Maintenance, error) {
	return m.update(ctx, in)
}

func (m *mockMaintenanceServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.MaintenanceServicer = (*mockMaintenanceServicer)(nil)

// ---- mock PaymentServicer --------------------------------------------------

type mockPaymentServicer struct {
	createGeneric func(ctx context.Context, boatID, ownerID uuid.UUID, amount decimal.Decimal, date *time.Time) (domain.Payment, error)
	attachReceipt func(ctx context.Context, id uuid.UUID, receipt service.Receipt) (domain.Payment, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	list          func(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) (domain.Page[domain.Payment], error)
	listByOwner   func(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Payment], error)
	openReceipt   func(ctx context.Context, name string) (io.ReadCloser, error)
}

func (m *mockPaymentServicer) CreateGeneric(ctx context.Context, boatID, ownerID uuid.UUID, amount decimal.Decimal, date *time.Time) (domain.Payment, error) {
	return m.createGeneric(ctx, boatID, ownerID, amount, date)
}

func (m *mockPaymentServicer) AttachReceipt(ctx context.Context, id uuid.UUID, receipt service.Receipt) (domain.Payment, error) {
	return m.attachReceipt(ctx, id, receipt)
}

func (m *mockPaymentServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	return m.getByID(ctx, id)
}

func (m *mockPaymentServicer) List(ctx context.Context, f domain.PaymentFilter, p domain.PaginationParams) (domain.Page[domain.Payment], error) {
	return m.list(ctx, f, p)
}

func (m *mockPaymentServicer) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Payment], error) {
	return m.listByOwner(ctx, ownerID, p)
}

func (m *mockPaymentServicer) OpenReceipt(ctx context.Context, name string) (io.ReadCloser, error) {
	return m.openReceipt(ctx, name)
}

var _ handler.PaymentServicer = (*mockPaymentServicer)(nil)

// ---- mock DocumentServicer -------------------------------------------------

type mockDocumentServicer struct {
	upload     func(ctx context.Context, boatID uuid.UUID, up service.Upload) (domain.Document, error)
	listByBoat func(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error)
	rename     func(ctx context.Context, boatID, docID uuid.UUID, name string) (domain.Document, error)
	delete     func(ctx context.Context, boatID, docID uuid.UUID) error
	open       func(ctx context.Context, fileName string) (io.ReadCloser, error)
}

func (m *mockDocumentServicer) Upload(ctx context.Context, boatID uuid.UUID, up service.Upload) (domain.Document, error) {
	return m.upload(ctx, boatID, up)
}

func (m *mockDocumentServicer) ListByBoat(ctx context.Context, boatID uuid.UUID) ([]domain.Document, error) {
	return m.listByBoat(ctx, boatID)
}

func (m *mockDocumentServicer) Rename(ctx context.Context, boatID, docID uuid.UUID, name string) (domain.Document, error) {
	return m.rename(ctx, boatID, docID, name)
}

func (m *mockDocumentServicer) Delete(ctx context.Context, boatID, docID uuid.UUID) error {
	return m.delete(ctx, boatID, docID)
}

func (m *mockDocumentServicer) Open(ctx context.Context, fileName string) (io.ReadCloser, error) {
	return m.open(ctx, fileName)
}

var _ handler.DocumentServicer = (*mockDocumentServicer)(nil)

// ---- mock DashboardServicer ------------------------------------------------

type mockDashboardServicer struct {
	ownerDashboard       func(ctx context.Context, ownerID uuid.UUID) (domain.OwnerDashboard, error)
	adminStats           func(ctx context.Context) (domain.AdminStats, error)
	boatsByType          func(ctx context.Context) ([]domain.ChartPoint, error)
	maintenancesByStatus func(ctx context.Context) ([]domain.ChartPoint, error)
}

func (m *mockDashboardServicer) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (domain.OwnerDashboard, error) {
	return m.ownerDashboard(ctx, ownerID)
}

func (m *mockDashboardServicer) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	return m.adminStats(ctx)
}

func (m *mockDashboardServicer) BoatsByType(ctx context.Context) ([]domain.ChartPoint, error) {
	return m.boatsByType(ctx)
}

func (m *mockDashboardServicer) MaintenancesByStatus(ctx context.Context) ([]domain.ChartPoint, error) {
	return m.maintenancesByStatus(ctx)
}

var _ handler.DashboardServicer = (*mockDashboardServicer)(nil)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)
