// Package jobs holds the periodic background work of the fleet ledger and the
// cron scheduler that drives it.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OverdueCounter counts unpaid obligations due before a point in time.
// repo.PaymentRepo satisfies it.
type OverdueCounter interface {
	CountOverdue(ctx context.Context, t time.Time) (int64, error)
}

// Runner executes jobs with panic recovery, a per-run timeout and logging.
type Runner struct {
	payments OverdueCounter
	overdue  prometheus.Gauge
	log      *slog.Logger
	now      func() time.Time
	timeout  time.Duration
}

// NewRunner registers the job gauges on reg.
func NewRunner(payments OverdueCounter, reg prometheus.Registerer, log *slog.Logger) *Runner {
	overdue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_overdue_payments",
		Help: "Number of TO_PAY payments whose due date has passed.",
	})
	reg.MustRegister(overdue)
	return &Runner{
		payments: payments,
		overdue:  overdue,
		log:      log,
		now:      time.Now,
		timeout:  time.Minute,
	}
}

// OverdueSweep counts overdue payments and publishes the count.
// Errors are logged; the gauge keeps its previous value.
func (r *Runner) OverdueSweep() {
	r.runWithRecovery("OverdueSweep", func(ctx context.Context) {
		n, err := r.payments.CountOverdue(ctx, r.now().UTC())
		if err != nil {
			r.log.ErrorContext(ctx, "failed to count overdue payments", "error", err)
			return
		}
		r.overdue.Set(float64(n))
		r.log.InfoContext(ctx, "overdue payments counted", "count", n)
	})
}

func (r *Runner) runWithRecovery(name string, job func(ctx context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("job panicked", "job", name, "panic", p)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := r.now()
	r.log.DebugContext(ctx, "starting job", "job", name)
	job(ctx)
	r.log.DebugContext(ctx, "job completed", "job", name, "duration", time.Since(start))
}
