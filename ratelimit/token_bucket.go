/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acronis/go-crptapi/log"
)

// TokenBucketOpts represents options for TokenBucket.
type TokenBucketOpts struct {
	// RefillAmount is the number of tokens added on every tick (the bucket never exceeds its capacity).
	// Zero means capacity, i.e. the bucket becomes full on every tick.
	RefillAmount int

	// Scheduler runs the refill task. PeriodicScheduler is used by default.
	Scheduler Scheduler

	Logger           log.FieldLogger
	MetricsCollector MetricsCollector
}

// TokenBucket is a Limiter that admits at most capacity callers per period.
//
// The bucket starts full. Every period it is topped up by refillAmount tokens
// (capped by capacity). Each Acquire takes one token. Callers that find the bucket empty
// (or find somebody already waiting) are queued, and tokens produced by a refill
// are handed to them in arrival order.
type TokenBucket struct {
	capacity     int
	refillAmount int
	period       time.Duration
	logger       log.FieldLogger
	metrics      MetricsCollector

	mu        sync.Mutex
	available int
	waiters   *list.List // of *waiter
	stopped   bool
	fatalErr  *FatalError

	stopOnce   sync.Once
	stopRefill context.CancelFunc
	refillDone chan struct{}
}

type waiter struct {
	ready chan struct{} // closed when a token is reserved or err is set
	err   error
}

// NewTokenBucket creates a new TokenBucket that admits limit callers per period and starts its refill task.
func NewTokenBucket(period time.Duration, limit int) (*TokenBucket, error) {
	return NewTokenBucketWithOpts(period, limit, TokenBucketOpts{})
}

// NewTokenBucketWithOpts is a more configurable version of NewTokenBucket.
func NewTokenBucketWithOpts(period time.Duration, limit int, opts TokenBucketOpts) (*TokenBucket, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period should be positive, got %s", period)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit should be positive, got %d", limit)
	}
	if opts.RefillAmount < 0 || opts.RefillAmount > limit {
		return nil, fmt.Errorf("refill amount should be in range [0, %d] (0 means the whole limit), got %d", limit, opts.RefillAmount)
	}

	tb := &TokenBucket{
		capacity:     limit,
		refillAmount: opts.RefillAmount,
		period:       period,
		logger:       opts.Logger,
		metrics:      opts.MetricsCollector,
		available:    limit,
		waiters:      list.New(),
		refillDone:   make(chan struct{}),
	}
	if tb.refillAmount == 0 {
		tb.refillAmount = limit
	}
	if tb.logger == nil {
		tb.logger = log.NewDisabledLogger()
	}
	if tb.metrics == nil {
		tb.metrics = disabledMetrics{}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = PeriodicScheduler{Logger: tb.logger}
	}

	tb.metrics.AvailableTokens(tb.available)

	var ctx context.Context
	ctx, tb.stopRefill = context.WithCancel(context.Background())
	go tb.runRefill(ctx, scheduler)

	return tb, nil
}

// Capacity returns the maximum number of tokens in the bucket.
func (tb *TokenBucket) Capacity() int {
	return tb.capacity
}

// Available returns the current number of tokens in the bucket.
func (tb *TokenBucket) Available() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.available
}

// Waiting returns the number of callers blocked in Acquire.
func (tb *TokenBucket) Waiting() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.waiters.Len()
}

// Acquire takes one token from the bucket, blocking until it is available.
// It returns *CancellationError if ctx is done first or the bucket is stopped,
// and *FatalError if the refill task has failed. In both cases no token is consumed.
func (tb *TokenBucket) Acquire(ctx context.Context) error {
	startTime := time.Now()

	tb.mu.Lock()
	if err := tb.unavailableErrLocked(); err != nil {
		tb.mu.Unlock()
		tb.metrics.AcquireDuration(acquireResultFromError(err), startTime)
		return err
	}
	if ctx.Err() != nil {
		tb.mu.Unlock()
		tb.metrics.AcquireDuration(AcquireResultCanceled, startTime)
		return &CancellationError{Inner: ctx.Err()}
	}
	if tb.available > 0 && tb.waiters.Len() == 0 {
		tb.available--
		tb.checkInvariantLocked()
		tb.metrics.AvailableTokens(tb.available)
		tb.mu.Unlock()
		tb.metrics.AcquireDuration(AcquireResultImmediate, startTime)
		return nil
	}
	w := &waiter{ready: make(chan struct{})}
	elem := tb.waiters.PushBack(w)
	tb.mu.Unlock()

	select {
	case <-w.ready:
		tb.metrics.AcquireDuration(acquireResultFromError(w.err), startTime)
		return w.err

	case <-ctx.Done():
		tb.mu.Lock()
		select {
		case <-w.ready:
			if w.err != nil {
				tb.mu.Unlock()
				tb.metrics.AcquireDuration(acquireResultFromError(w.err), startTime)
				return w.err
			}
			// The token has been reserved concurrently with the cancellation, give it back.
			tb.available = min(tb.capacity, tb.available+1)
			tb.dispatchLocked()
			tb.checkInvariantLocked()
			tb.metrics.AvailableTokens(tb.available)
		default:
			tb.waiters.Remove(elem)
		}
		tb.mu.Unlock()
		tb.metrics.AcquireDuration(AcquireResultCanceled, startTime)
		return &CancellationError{Inner: ctx.Err()}
	}
}

// Stop stops the refill task and waits for it to finish.
// All blocked callers receive *CancellationError wrapping ErrStopped, and so do further Acquire calls.
// Stop is idempotent.
func (tb *TokenBucket) Stop() {
	tb.stopOnce.Do(func() {
		tb.mu.Lock()
		tb.stopped = true
		tb.releaseWaitersLocked(&CancellationError{Inner: ErrStopped})
		tb.mu.Unlock()

		tb.stopRefill()
		<-tb.refillDone
	})
}

func (tb *TokenBucket) refill() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.stopped || tb.fatalErr != nil {
		return
	}
	tb.available = min(tb.capacity, tb.available+tb.refillAmount)
	tb.dispatchLocked()
	tb.checkInvariantLocked()
	tb.metrics.AvailableTokens(tb.available)
	tb.metrics.Refilled()
}

func (tb *TokenBucket) runRefill(ctx context.Context, scheduler Scheduler) {
	defer close(tb.refillDone)

	err := runScheduler(ctx, scheduler, tb.period, tb.refill)

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.stopped {
		return
	}
	if err == nil {
		err = ErrSchedulerExited
	}
	tb.fatalErr = &FatalError{Inner: err}
	tb.logger.Error("rate limiter refill task failed, all further acquires will fail", log.Error(err))
	tb.releaseWaitersLocked(tb.fatalErr)
}

func runScheduler(ctx context.Context, scheduler Scheduler, period time.Duration, tick func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("refill scheduler panic: %v", p)
		}
	}()
	return scheduler.Run(ctx, period, tick)
}

// dispatchLocked hands available tokens to the queued callers in arrival order.
func (tb *TokenBucket) dispatchLocked() {
	for tb.available > 0 && tb.waiters.Len() > 0 {
		w := tb.waiters.Remove(tb.waiters.Front()).(*waiter)
		tb.available--
		close(w.ready)
	}
}

func (tb *TokenBucket) releaseWaitersLocked(err error) {
	for e := tb.waiters.Front(); e != nil; e = e.Next() {
		w := e.Value.(*waiter)
		w.err = err
		close(w.ready)
	}
	tb.waiters.Init()
}

func (tb *TokenBucket) unavailableErrLocked() error {
	if tb.stopped {
		return &CancellationError{Inner: ErrStopped}
	}
	if tb.fatalErr != nil {
		return tb.fatalErr
	}
	return nil
}

func (tb *TokenBucket) checkInvariantLocked() {
	if tb.available < 0 || tb.available > tb.capacity {
		panic(fmt.Sprintf("ratelimit: available tokens %d out of range [0, %d]", tb.available, tb.capacity))
	}
}
