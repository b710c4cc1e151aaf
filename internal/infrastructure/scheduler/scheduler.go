// Package scheduler runs the payment-deadline sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"registrar-workflow/internal/infrastructure/observability"

	"github.com/robfig/cron/v3"
)

// Expirer is satisfied by the request usecase.
type Expirer interface {
	ExpireOverdue(ctx context.Context, limit int) (int, error)
}

type ExpirySweeper struct {
	expirer Expirer
	batch   int
	timeout time.Duration
	log     *observability.Logger
}

func NewExpirySweeper(expirer Expirer, batch int, timeout time.Duration, log *observability.Logger) *ExpirySweeper {
	if log == nil {
		log = observability.GlobalLogger
	}
	return &ExpirySweeper{expirer: expirer, batch: batch, timeout: timeout, log: log}
}

// RunOnce performs one bounded sweep.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	n, err := s.expirer.ExpireOverdue(ctx, s.batch)
	if err != nil {
		s.log.ErrorContext(ctx, "expiry sweep failed", "expired", n, "error", err.Error())
		return n, err
	}
	if n > 0 {
		s.log.InfoContext(ctx, "expiry sweep finished", "expired", n)
	}
	return n, nil
}

type Scheduler struct {
	cron *cron.Cron
}

// New registers the sweeper under spec ("@every 5m", "*/5 * * * *", ...).
// Overlapping runs are skipped.
func New(spec string, sweeper *ExpirySweeper) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { _, _ = sweeper.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for a running sweep until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
