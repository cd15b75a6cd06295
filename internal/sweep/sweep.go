// Package sweep runs the periodic approval-expiry sweep. Lazy expiry keeps
// the queue's observable contract on its own; the sweep only persists what
// lazy reads already treat as expired, so the tables stay tidy.
package sweep

import (
	"context"
	"fmt"
	"io"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/carscout/internal/approval"
	"gorm.io/gorm"
)

// Opts holds configuration for the sweeper.
type Opts struct {
	DB       *gorm.DB
	CronExpr string // 5-field cron expression
	Out      io.Writer
}

// Sweeper schedules ExpireOverdue on a cron expression.
type Sweeper struct {
	db   *gorm.DB
	out  io.Writer
	cron *cron.Cron
}

// New validates the cron expression and builds a Sweeper.
func New(opts Opts) (*Sweeper, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("sweep: db is required")
	}
	if opts.CronExpr == "" {
		return nil, fmt.Errorf("sweep: cron expression is required")
	}

	s := &Sweeper{db: opts.DB, out: opts.Out, cron: cron.New()}
	if _, err := s.cron.AddFunc(opts.CronExpr, s.runOnce); err != nil {
		return nil, fmt.Errorf("sweep: parse cron %q: %w", opts.CronExpr, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// RunOnce performs a single sweep immediately, outside the schedule.
func (s *Sweeper) RunOnce() (int64, error) {
	return approval.ExpireOverdue(s.db)
}

func (s *Sweeper) runOnce() {
	n, err := s.RunOnce()
	if s.out == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(s.out, "sweep: %v\n", err)
		return
	}
	if n > 0 {
		fmt.Fprintf(s.out, "sweep: expired %d approval request(s)\n", n)
	}
}
