/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"time"

	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/service"
)

// Scheduler runs the refill task of TokenBucket.
// Run must call tick every period until ctx is done and then return nil.
// Any other return (or a panic) puts the bucket into the failed state.
type Scheduler interface {
	Run(ctx context.Context, period time.Duration, tick func()) error
}

// SchedulerFunc is an adapter to allow the use of ordinary functions as Scheduler.
type SchedulerFunc func(ctx context.Context, period time.Duration, tick func()) error

// Run calls f(ctx, period, tick).
func (f SchedulerFunc) Run(ctx context.Context, period time.Duration, tick func()) error {
	return f(ctx, period, tick)
}

// PeriodicScheduler ticks at a fixed rate: the N-th tick happens at start + N*period
// regardless of how long the previous ticks took.
type PeriodicScheduler struct {
	Logger log.FieldLogger
}

// Run implements Scheduler on top of service.PeriodicWorker.
func (s PeriodicScheduler) Run(ctx context.Context, period time.Duration, tick func()) error {
	logger := s.Logger
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	worker := service.WorkerFunc(func(context.Context) error {
		tick()
		return nil
	})
	return service.NewPeriodicWorkerWithOpts(worker, period, logger, service.PeriodicWorkerOpts{
		InitialDelay: period,
		FixedRate:    true,
	}).Run(ctx)
}
