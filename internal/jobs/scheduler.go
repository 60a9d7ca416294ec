package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the Runner's jobs on cron expressions with seconds
// precision, evaluated in UTC.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewScheduler registers every job. It fails on an unparsable expression
// rather than starting with a job silently missing.
func NewScheduler(r *Runner, overdueSpec string, log *slog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	if _, err := c.AddFunc(overdueSpec, r.OverdueSweep); err != nil {
		return nil, fmt.Errorf("jobs.NewScheduler: OverdueSweep %q: %w", overdueSpec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron scheduler stopped")
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
