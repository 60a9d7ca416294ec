package service_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// ledger is an in-memory stand-in for the Postgres repos used by the
// transactional services. It honours the same conditional-update contracts
// (AssignOwner only on an unowned boat, MarkPaid only on a TO_PAY payment)
// and InTx rolls every map back when fn fails.
type ledger struct {
	mu       sync.Mutex
	boats    map[uuid.UUID]domain.Boat
	owners   map[uuid.UUID]domain.Owner
	payments map[uuid.UUID]domain.Payment
	maints   map[uuid.UUID]domain.Maintenance
	order    map[uuid.UUID]int
	seq      int

	// fail makes the named operation return the error, e.g. "Payments.CreateBatch".
	fail map[string]error
}

func newLedger() *ledger {
	return &ledger{
		boats:    map[uuid.UUID]domain.Boat{},
		owners:   map[uuid.UUID]domain.Owner{},
		payments: map[uuid.UUID]domain.Payment{},
		maints:   map[uuid.UUID]domain.Maintenance{},
		order:    map[uuid.UUID]int{},
		fail:     map[string]error{},
	}
}

var _ repo.Transactor = (*ledger)(nil)

func (l *ledger) InTx(ctx context.Context, fn func(r repo.Repos) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	boats, owners := maps.Clone(l.boats), maps.Clone(l.owners)
	payments, maints, order, seq := maps.Clone(l.payments), maps.Clone(l.maints), maps.Clone(l.order), l.seq

	if err := fn(l.repos(true)); err != nil {
		l.boats, l.owners, l.payments, l.maints, l.order, l.seq = boats, owners, payments, maints, order, seq
		return err
	}
	return nil
}

func (l *ledger) repos(inTx bool) repo.Repos {
	v := view{l: l, inTx: inTx}
	return repo.Repos{
		Boats:        memBoats(v),
		Owners:       memOwners(v),
		Payments:     memPayments(v),
		Maintenances: memMaints(v),
	}
}

// Accessors return repos as seen outside a transaction.
func (l *ledger) Boats() repo.BoatRepo { return l.repos(false).Boats }
func (l *ledger) Owners() repo.OwnerRepo { return l.repos(false).Owners }
func (l *ledger) Payments() repo.PaymentRepo { return l.repos(false).Payments }
func (l *ledger) Maintenances() repo.MaintenanceRepo { return l.repos(false).Maintenances }

// addBoat and addOwner seed fixtures directly.
func (l *ledger) addBoat(price string) domain.Boat {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := domain.Boat{
		ID:    uuid.New(),
		Type:  domain.BoatTypeTourism,
		Name:  "Cat " + price,
		Price: decimal.RequireFromString(price),
	}
	l.boats[b.ID] = b
	return b
}

func (l *ledger) addOwner(role domain.Role, active bool) domain.Owner {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	o := domain.Owner{ID: id, FullName: "Owner", Email: id.String() + "@example.com", Username: id.String()[:8], Role: role, Active: active}
	l.owners[o.ID] = o
	return o
}

func (l *ledger) boat(id uuid.UUID) domain.Boat {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.boats[id]
}

func (l *ledger) paymentsOf(boatID uuid.UUID) []domain.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Payment
	for _, p := range l.payments {
		if p.BoatID == boatID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Payment) int { return l.order[a.ID] - l.order[b.ID] })
	return out
}

// outstanding sums the boat's TO_PAY amounts; it must always equal its balance.
func (l *ledger) outstanding(boatID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.paymentsOf(boatID) {
		if p.Status == domain.StatusToPay {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

type view struct {
	l    *ledger
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.l.mu.Lock()
	return v.l.mu.Unlock
}

func (v view) injected(op string) error {
	return v.l.fail[op]
}

// ---- boats -----------------------------------------------------------------

type memBoats view

var _ repo.BoatRepo = memBoats{}

func (r memBoats) Create(_ context.Context, b domain.Boat) (domain.Boat, error) {
	defer view(r).lock()()
	b.ID = uuid.New()
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	r.l.boats[b.ID] = b
	return b, nil
}

func (r memBoats) GetByID(_ context.Context, id uuid.UUID) (domain.Boat, error) {
	defer view(r).lock()()
	b, ok := r.l.boats[id]
	if !ok {
		return domain.Boat{}, domain.ErrNotFound
	}
	return b, nil
}

// GetForUpdate needs no extra locking: InTx already holds the ledger mutex.
func (r memBoats) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Boat, error) {
	return r.GetByID(ctx, id)
}

func (r memBoats) List(_ context.Context, f domain.BoatFilter, p domain.PaginationParams) ([]domain.Boat, int64, error) {
	defer view(r).lock()()
	out := []domain.Boat{}
	for _, b := range r.l.boats {
		if f.Type != "" && b.Type != f.Type {
			continue
		}
		if f.Status == domain.BoatStatusAssigned && !b.Assigned() || f.Status == domain.BoatStatusUnassigned && b.Assigned() {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r memBoats) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Boat, error) {
	defer view(r).lock()()
	out := []domain.Boat{}
	for _, b := range r.l.boats {
		if b.OwnerID != nil && *b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBoats) Update(_ context.Context, b domain.Boat) (domain.Boat, error) {
	defer view(r).lock()()
	cur, ok := r.l.boats[b.ID]
	if !ok {
		return domain.Boat{}, domain.ErrNotFound
	}
	cur.Type, cur.Name, cur.Model, cur.Location, cur.Price = b.Type, b.Name, b.Model, b.Location, b.Price
	r.l.boats[b.ID] = cur
	return cur, nil
}

func (r memBoats) Delete(_ context.Context, id uuid.UUID) error {
	defer view(r).lock()()
	if _, ok := r.l.boats[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.l.boats, id)
	return nil
}

func (r memBoats) AssignOwner(_ context.Context, id, ownerID uuid.UUID, seed decimal.Decimal) (domain.Boat, error) {
	defer view(r).lock()()
	if err := view(r).injected("Boats.AssignOwner"); err != nil {
		return domain.Boat{}, err
	}
	b, ok := r.l.boats[id]
	if !ok {
		return domain.Boat{}, domain.ErrNotFound
	}
	if b.OwnerID != nil {
		return domain.Boat{}, domain.ErrAlreadyAssigned
	}
	b.OwnerID = &ownerID
	b.Balance = b.Balance.Add(seed)
	r.l.boats[id] = b
	return b, nil
}

func (r memBoats) Unassign(_ context.Context, id uuid.UUID) (domain.Boat, error) {
	defer view(r).lock()()
	b, ok := r.l.boats[id]
	if !ok {
		return domain.Boat{}, domain.ErrNotFound
	}
	b.OwnerID = nil
	r.l.boats[id] = b
	return b, nil
}

func (r memBoats) AdjustBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) (domain.Boat, error) {
	defer view(r).lock()()
	if err := view(r).injected("Boats.AdjustBalance"); err != nil {
		return domain.Boat{}, err
	}
	b, ok := r.l.boats[id]
	if !ok {
		return domain.Boat{}, domain.ErrNotFound
	}
	b.Balance = b.Balance.Add(delta)
	r.l.boats[id] = b
	return b, nil
}

// ---- owners ----------------------------------------------------------------

type memOwners view

var _ repo.OwnerRepo = memOwners{}

func (r memOwners) Create(_ context.Context, o domain.Owner) (domain.Owner, error) {
	defer view(r).lock()()
	for _, cur := range r.l.owners {
		if cur.Email == o.Email || cur.Username == o.Username {
			return domain.Owner{}, domain.ErrConflict
		}
	}
	o.ID = uuid.New()
	r.l.owners[o.ID] = o
	return o, nil
}

func (r memOwners) GetByID(_ context.Context, id uuid.UUID) (domain.Owner, error) {
	defer view(r).lock()()
	o, ok := r.l.owners[id]
	if !ok {
		return domain.Owner{}, domain.ErrNotFound
	}
	return o, nil
}

func (r memOwners) GetByEmail(_ context.Context, email string) (domain.Owner, error) {
	return r.find(func(o domain.Owner) bool { return strings.EqualFold(o.Email, email) })
}

func (r memOwners) GetByLogin(_ context.Context, identifier string) (domain.Owner, error) {
	return r.find(func(o domain.Owner) bool {
		return strings.EqualFold(o.Email, identifier) || o.Username == identifier
	})
}

func (r memOwners) find(match func(domain.Owner) bool) (domain.Owner, error) {
	defer view(r).lock()()
	for _, o := range r.l.owners {
		if match(o) {
			return o, nil
		}
	}
	return domain.Owner{}, domain.ErrNotFound
}

func (r memOwners) List(_ context.Context, role domain.Role, _ string, _ domain.PaginationParams) ([]domain.Owner, int64, error) {
	defer view(r).lock()()
	out := []domain.Owner{}
	for _, o := range r.l.owners {
		if o.Role == role {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r memOwners) Update(_ context.Context, o domain.Owner) (domain.Owner, error) {
	defer view(r).lock()()
	if _, ok := r.l.owners[o.ID]; !ok {
		return domain.Owner{}, domain.ErrNotFound
	}
	r.l.owners[o.ID] = o
	return o, nil
}

func (r memOwners) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	defer view(r).lock()()
	o, ok := r.l.owners[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.PasswordHash = hash
	r.l.owners[id] = o
	return nil
}

func (r memOwners) Delete(_ context.Context, id uuid.UUID) error {
	defer view(r).lock()()
	if _, ok := r.l.owners[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.l.owners, id)
	return nil
}

// ---- payments --------------------------------------------------------------

type memPayments view

var _ repo.PaymentRepo = memPayments{}

func (r memPayments) insert(p domain.Payment) domain.Payment {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	r.l.seq++
	r.l.order[p.ID] = r.l.seq
	r.l.payments[p.ID] = p
	return p
}

func (r memPayments) Create(_ context.Context, p domain.Payment) (domain.Payment, error) {
	defer view(r).lock()()
	if err := view(r).injected("Payments.Create"); err != nil {
		return domain.Payment{}, err
	}
	return r.insert(p), nil
}

func (r memPayments) CreateBatch(_ context.Context, ps []domain.Payment) ([]domain.Payment, error) {
	defer view(r).lock()()
	out := make([]domain.Payment, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.insert(p))
	}
	// Fail after the inserts so rollback is what removes them.
	if err := view(r).injected("Payments.CreateBatch"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r memPayments) GetByID(_ context.Context, id uuid.UUID) (domain.Payment, error) {
	defer view(r).lock()()
	p, ok := r.l.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (r memPayments) GetByMaintenance(_ context.Context, maintenanceID uuid.UUID) (domain.Payment, error) {
	defer view(r).lock()()
	for _, p := range r.l.payments {
		if p.MaintenanceID != nil && *p.MaintenanceID == maintenanceID {
			return p, nil
		}
	}
	return domain.Payment{}, domain.ErrNotFound
}

func (r memPayments) List(_ context.Context, f domain.PaymentFilter, _ domain.PaginationParams) ([]domain.Payment, int64, error) {
	defer view(r).lock()()
	out := []domain.Payment{}
	for _, p := range r.l.payments {
		switch {
		case f.OwnerID != nil && (p.OwnerID == nil || *p.OwnerID != *f.OwnerID),
			f.BoatID != nil && p.BoatID != *f.BoatID,
			f.Reason != "" && p.Reason != f.Reason,
			f.Status != "" && p.Status != f.Status:
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Payment) int { return r.l.order[a.ID] - r.l.order[b.ID] })
	return out, int64(len(out)), nil
}

func (r memPayments) MarkPaid(_ context.Context, id uuid.UUID, invoiceURL string) (domain.Payment, error) {
	defer view(r).lock()()
	p, ok := r.l.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	if p.Status == domain.StatusPaid {
		return domain.Payment{}, domain.ErrAlreadySettled
	}
	now := time.Now()
	p.Status, p.InvoiceURL, p.PaidAt = domain.StatusPaid, invoiceURL, &now
	r.l.payments[id] = p
	return p, nil
}

func (r memPayments) UpdateAmount(_ context.Context, id uuid.UUID, amount decimal.Decimal) (domain.Payment, error) {
	defer view(r).lock()()
	p, ok := r.l.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	if p.Status == domain.StatusPaid {
		return domain.Payment{}, domain.ErrAlreadySettled
	}
	p.Amount = amount
	r.l.payments[id] = p
	return p, nil
}

func (r memPayments) Delete(_ context.Context, id uuid.UUID) error {
	defer view(r).lock()()
	if _, ok := r.l.payments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.l.payments, id)
	return nil
}

func (r memPayments) CountOutstanding(_ context.Context, boatID uuid.UUID) (int64, error) {
	defer view(r).lock()()
	var n int64
	for _, p := range r.l.payments {
		if p.BoatID == boatID && p.Status == domain.StatusToPay {
			n++
		}
	}
	return n, nil
}

func (r memPayments) CountOverdue(_ context.Context, t time.Time) (int64, error) {
	defer view(r).lock()()
	var n int64
	for _, p := range r.l.payments {
		if p.Status == domain.StatusToPay && p.Date.Before(t) {
			n++
		}
	}
	return n, nil
}

func (r memPayments) Export(_ context.Context) ([]domain.ExportRow, error) {
	defer view(r).lock()()
	if err := view(r).injected("Payments.Export"); err != nil {
		return nil, err
	}
	var rows []domain.ExportRow
	for _, p := range r.l.payments {
		row := domain.ExportRow{
			PaymentID: p.ID.String(),
			BoatName:  r.l.boats[p.BoatID].Name,
			BoatType:  r.l.boats[p.BoatID].Type,
			Reason:    p.Reason,
			Status:    p.Status,
			Amount:    p.Amount,
			DueDate:   p.Date,
			PaidAt:    p.PaidAt,
		}
		if p.OwnerID != nil {
			row.OwnerName = r.l.owners[*p.OwnerID].FullName
			row.OwnerEmail = r.l.owners[*p.OwnerID].Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ---- maintenances ----------------------------------------------------------

type memMaints view

var _ repo.MaintenanceRepo = memMaints{}

// link resolves PaymentID the way the SQL join does.
func (r memMaints) link(m domain.Maintenance) domain.Maintenance {
	m.PaymentID = nil
	for _, p := range r.l.payments {
		if p.MaintenanceID != nil && *p.MaintenanceID == m.ID {
			id := p.ID
			m.PaymentID = &id
		}
	}
	return m
}

func (r memMaints) Create(_ context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	defer view(r).lock()()
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = time.Now(), time.Now()
	r.l.maints[m.ID] = m
	return r.link(m), nil
}

func (r memMaints) GetByID(_ context.Context, id uuid.UUID) (domain.Maintenance, error) {
	defer view(r).lock()()
	m, ok := r.l.maints[id]
	if !ok {
		return domain.Maintenance{}, domain.ErrNotFound
	}
	return r.link(m), nil
}

func (r memMaints) List(_ context.Context, f domain.MaintenanceFilter, _ domain.PaginationParams) ([]domain.Maintenance, int64, error) {
	defer view(r).lock()()
	out := []domain.Maintenance{}
	for _, m := range r.l.maints {
		if f.BoatID != nil && m.BoatID != *f.BoatID || f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, r.link(m))
	}
	return out, int64(len(out)), nil
}

func (r memMaints) Update(_ context.Context, m domain.Maintenance) (domain.Maintenance, error) {
	defer view(r).lock()()
	cur, ok := r.l.maints[m.ID]
	if !ok {
		return domain.Maintenance{}, domain.ErrNotFound
	}
	m.BoatID, m.CreatedAt, m.UpdatedAt = cur.BoatID, cur.CreatedAt, time.Now()
	r.l.maints[m.ID] = m
	return r.link(m), nil
}

// Delete mirrors ON DELETE SET NULL on payments.maintenance_id.
func (r memMaints) Delete(_ context.Context, id uuid.UUID) error {
	defer view(r).lock()()
	if _, ok := r.l.maints[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.l.maints, id)
	for pid, p := range r.l.payments {
		if p.MaintenanceID != nil && *p.MaintenanceID == id {
			p.MaintenanceID = nil
			r.l.payments[pid] = p
		}
	}
	return nil
}

var errInjected = errors.New("injected failure")
