/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/acronis/go-crptapi/log"
)

// ErrPeriodicWorkerStop is an error that may be used for interrupting PeriodicWorker's loop.
var ErrPeriodicWorkerStop = errors.New("stop periodic worker error")

// Worker performs some (usually long-running) work.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc is an adapter to allow the use of ordinary functions as Worker.
type WorkerFunc func(ctx context.Context) error

// Run is a part of Worker interface.
func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// PeriodicWorker represents a worker that runs underlying worker periodically.
type PeriodicWorker struct {
	worker        Worker
	logger        log.FieldLogger
	initialDelay  time.Duration
	intervalDelay time.Duration
	fixedRate     bool
}

// PeriodicWorkerOpts contains optional parameters for constructing PeriodicWorker.
type PeriodicWorkerOpts struct {
	InitialDelay time.Duration

	// FixedRate makes runs start every intervalDelay (measured from the first run) instead of
	// waiting intervalDelay after the previous run has finished.
	// If a run takes longer than intervalDelay, missed runs are dropped, not queued.
	FixedRate bool
}

// NewPeriodicWorker creates a new instance of PeriodicWorker with constant delays.
func NewPeriodicWorker(worker Worker, intervalDelay time.Duration, logger log.FieldLogger) *PeriodicWorker {
	return NewPeriodicWorkerWithOpts(worker, intervalDelay, logger, PeriodicWorkerOpts{})
}

// NewPeriodicWorkerWithOpts creates a new instance of PeriodicWorker
// with an ability to specify different optional parameters.
func NewPeriodicWorkerWithOpts(
	worker Worker, intervalDelay time.Duration, logger log.FieldLogger, opts PeriodicWorkerOpts,
) *PeriodicWorker {
	return &PeriodicWorker{
		worker:        worker,
		logger:        logger,
		initialDelay:  opts.InitialDelay,
		intervalDelay: intervalDelay,
		fixedRate:     opts.FixedRate,
	}
}

// Run runs PeriodicWorker loop. It returns nil when ctx is done or the worker returns ErrPeriodicWorkerStop.
// A panic in the worker is logged with the stack trace and re-raised.
func (pw *PeriodicWorker) Run(ctx context.Context) (resErr error) {
	defer func() {
		if p := recover(); p != nil {
			const logStackSize = 8192
			stack := make([]byte, logStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			pw.logger.Error(fmt.Sprintf("panic: %+v", p), log.Bytes("stack", stack))
			panic(p)
		}
		if resErr != nil {
			pw.logger.Error("periodic worker stopped with error", log.Error(resErr))
			return
		}
		pw.logger.Info("periodic worker stopped successfully")
	}()

	pw.logger.Infof("running periodic worker (initialDelay=%s, intervalDelay=%s, fixedRate=%t)...",
		pw.initialDelay, pw.intervalDelay, pw.fixedRate)

	timer := time.NewTimer(pw.initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}

	if pw.fixedRate {
		return pw.runAtFixedRate(ctx)
	}

	for {
		if stop := pw.runOnce(ctx); stop {
			return nil
		}
		timer.Reset(pw.intervalDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (pw *PeriodicWorker) runAtFixedRate(ctx context.Context) error {
	ticker := time.NewTicker(pw.intervalDelay)
	defer ticker.Stop()
	for {
		if stop := pw.runOnce(ctx); stop {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (pw *PeriodicWorker) runOnce(ctx context.Context) (stop bool) {
	err := pw.worker.Run(ctx)
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPeriodicWorkerStop) {
		return true
	}
	pw.logger.Error("periodically running worker finished with error", log.Error(err))
	return false
}
