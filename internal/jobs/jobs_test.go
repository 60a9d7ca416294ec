package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCounter struct {
	countOverdue func(ctx context.Context, t time.Time) (int64, error)
}

func (m *mockCounter) CountOverdue(ctx context.Context, t time.Time) (int64, error) {
	return m.countOverdue(ctx, t)
}

var _ OverdueCounter = (*mockCounter)(nil)

var discard = slog.New(slog.DiscardHandler)

// gaugeValue reads fleet_overdue_payments from reg.
func gaugeValue(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "fleet_overdue_payments" {
			require.Len(t, f.GetMetric(), 1)
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("fleet_overdue_payments not registered")
	return 0
}

func TestOverdueSweep_PublishesCount(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	reg := prometheus.NewRegistry()
	r := NewRunner(&mockCounter{
		countOverdue: func(_ context.Context, got time.Time) (int64, error) {
			assert.Equal(t, now, got)
			return 4, nil
		},
	}, reg, discard)
	r.now = func() time.Time { return now }

	r.OverdueSweep()

	assert.Equal(t, float64(4), gaugeValue(t, reg))
}

func TestOverdueSweep_ErrorKeepsPreviousValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	calls := 0
	r := NewRunner(&mockCounter{
		countOverdue: func(context.Context, time.Time) (int64, error) {
			calls++
			if calls == 1 {
				return 2, nil
			}
			return 0, errors.New("db down")
		},
	}, reg, discard)

	r.OverdueSweep()
	r.OverdueSweep()

	assert.Equal(t, 2, calls)
	assert.Equal(t, float64(2), gaugeValue(t, reg))
}

func TestOverdueSweep_RecoversFromPanic(t *testing.T) {
	r := NewRunner(&mockCounter{
		countOverdue: func(context.Context, time.Time) (int64, error) {
			panic("boom")
		},
	}, prometheus.NewRegistry(), discard)

	assert.NotPanics(t, r.OverdueSweep)
}

func TestNewScheduler(t *testing.T) {
	r := NewRunner(&mockCounter{}, prometheus.NewRegistry(), discard)

	s, err := NewScheduler(r, "0 0 * * * *", discard)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	r := NewRunner(&mockCounter{}, prometheus.NewRegistry(), discard)

	_, err := NewScheduler(r, "every hour", discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OverdueSweep")
}
