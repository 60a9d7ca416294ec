package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/testutil"
)

// newTestTx is a rolled-back transaction on the migrated test database.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(newTestTx(t))
}

func boatFixture() domain.Boat {
	return domain.Boat{
		Type:     domain.BoatTypeTourism,
		Name:     "Sea Breeze",
		Model:    "Lagoon 42",
		Location: "Cartagena",
		Price:    decimal.NewFromInt(300000),
	}
}

func mustCreateBoat(t *testing.T, r repo.Repos) domain.Boat {
	t.Helper()
	b, err := r.Boats.Create(context.Background(), boatFixture())
	require.NoError(t, err)
	return b
}

func mustCreateOwner(t *testing.T, r repo.Repos) domain.Owner {
	t.Helper()
	suffix := uuid.NewString()[:8]
	o, err := r.Owners.Create(context.Background(), domain.Owner{
		FullName:     "Ana Owner",
		Email:        "ana." + suffix + "@example.com",
		Username:     "ana_" + suffix,
		Role:         domain.RoleOwner,
		Active:       true,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return o
}
