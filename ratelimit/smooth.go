/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// SmoothLimiterOpts represents options for SmoothLimiter.
type SmoothLimiterOpts struct {
	MetricsCollector MetricsCollector
}

// SmoothLimiter is a Limiter that spreads limit admissions evenly over period
// (one token every period/limit) with a burst of limit.
type SmoothLimiter struct {
	limiter *rate.Limiter
	metrics MetricsCollector
	stopCtx context.Context
	stop    context.CancelFunc
}

// NewSmoothLimiter creates a new SmoothLimiter that admits limit callers per period on average.
func NewSmoothLimiter(period time.Duration, limit int) (*SmoothLimiter, error) {
	return NewSmoothLimiterWithOpts(period, limit, SmoothLimiterOpts{})
}

// NewSmoothLimiterWithOpts is a more configurable version of NewSmoothLimiter.
func NewSmoothLimiterWithOpts(period time.Duration, limit int, opts SmoothLimiterOpts) (*SmoothLimiter, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period should be positive, got %s", period)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit should be positive, got %d", limit)
	}
	metrics := opts.MetricsCollector
	if metrics == nil {
		metrics = disabledMetrics{}
	}
	stopCtx, stop := context.WithCancel(context.Background())
	return &SmoothLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(limit)/period.Seconds()), limit),
		metrics: metrics,
		stopCtx: stopCtx,
		stop:    stop,
	}, nil
}

// Acquire blocks until the caller is admitted.
// It returns *CancellationError if ctx is done (or its deadline is too close to be met) or the limiter is stopped.
func (sl *SmoothLimiter) Acquire(ctx context.Context) error {
	startTime := time.Now()
	err := sl.wait(ctx)
	if err != nil {
		sl.metrics.AcquireDuration(acquireResultFromError(err), startTime)
		return err
	}
	sl.metrics.AcquireDuration(AcquireResultWaited, startTime)
	return nil
}

func (sl *SmoothLimiter) wait(ctx context.Context) error {
	if sl.stopCtx.Err() != nil {
		return &CancellationError{Inner: ErrStopped}
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	unregister := context.AfterFunc(sl.stopCtx, cancel)
	defer unregister()

	if err := sl.limiter.Wait(waitCtx); err != nil {
		if sl.stopCtx.Err() != nil {
			return &CancellationError{Inner: ErrStopped}
		}
		if ctx.Err() != nil {
			return &CancellationError{Inner: ctx.Err()}
		}
		return &CancellationError{Inner: err}
	}
	return nil
}

// Stop releases all blocked callers. Stop is idempotent.
func (sl *SmoothLimiter) Stop() {
	sl.stop()
}
