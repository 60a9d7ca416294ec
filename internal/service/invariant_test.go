package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// After every ledger operation a boat's balance equals the sum of its
// TO_PAY payment amounts.
func TestLedger_BalanceEqualsOutstanding(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	boat := l.addBoat("100000")
	owner := l.addOwner(domain.RoleOwner, true)

	assignments := newAssignmentService(l)
	payments := newPaymentService(t, l)
	maintenances := newMaintenanceService(l)

	check := func(step string) {
		t.Helper()
		b := l.boat(boat.ID)
		assert.True(t, b.Balance.Equal(l.outstanding(boat.ID)), "%s: balance %s, outstanding %s", step, b.Balance, l.outstanding(boat.ID))
	}

	check("new boat")

	_, err := assignments.Assign(ctx, boat.ID, owner.ID, byAmount("0.333", 1))
	require.ErrorIs(t, err, domain.ErrInvalidPlan)
	check("rejected sub-cent plan")

	a, err := assignments.Assign(ctx, boat.ID, owner.ID, byAmount("30000", 3))
	require.NoError(t, err)
	check("assign")

	m1, err := maintenances.Create(ctx, maintenanceFor(boat.ID, cost("1200.40")))
	require.NoError(t, err)
	check("maintenance with cost")

	_, err = maintenances.Create(ctx, maintenanceFor(boat.ID, nil))
	require.NoError(t, err)
	check("maintenance without cost")

	g, err := payments.CreateGeneric(ctx, boat.ID, owner.ID, decimal.RequireFromString("75.25"), nil)
	require.NoError(t, err)
	check("generic payment")

	_, err = payments.CreateGeneric(ctx, boat.ID, owner.ID, decimal.RequireFromString("10.005"), nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = maintenances.Create(ctx, maintenanceFor(boat.ID, cost("0.333")))
	require.ErrorIs(t, err, domain.ErrValidation)
	check("rejected sub-cent amounts")

	_, err = payments.AttachReceipt(ctx, a.Payments[0].ID, receipt("i1"))
	require.NoError(t, err)
	check("settle installment")

	_, err = payments.AttachReceipt(ctx, g.ID, receipt("g"))
	require.NoError(t, err)
	check("settle generic")

	m1.Cost = cost("900")
	_, err = maintenances.Update(ctx, m1)
	require.NoError(t, err)
	check("rebill maintenance")

	_, err = payments.AttachReceipt(ctx, *m1.PaymentID, receipt("m"))
	require.NoError(t, err)
	check("settle maintenance")

	_, err = payments.AttachReceipt(ctx, a.Payments[0].ID, receipt("again"))
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
	check("rejected double settle")

	require.NoError(t, maintenances.Delete(ctx, m1.ID))
	check("delete paid maintenance")

	for _, p := range a.Payments[1:] {
		_, err = payments.AttachReceipt(ctx, p.ID, receipt("rest"))
		require.NoError(t, err)
	}
	check("settle all")
	assert.True(t, l.boat(boat.ID).Balance.IsZero())
}
