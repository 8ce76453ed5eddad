/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/acronis/go-crptapi/log/logtest"
)

func TestPeriodicWorker_Run(t *testing.T) {
	t.Run("stops when context is canceled", func(t *testing.T) {
		runs := atomic.NewInt32(0)
		ctx, cancel := context.WithCancel(context.Background())
		pw := NewPeriodicWorker(WorkerFunc(func(ctx context.Context) error {
			if runs.Inc() == 3 {
				cancel()
			}
			return nil
		}), time.Millisecond, logtest.NewLogger())

		require.NoError(t, pw.Run(ctx))
		require.Equal(t, int32(3), runs.Load())
	})

	t.Run("stops on ErrPeriodicWorkerStop", func(t *testing.T) {
		runs := atomic.NewInt32(0)
		pw := NewPeriodicWorkerWithOpts(WorkerFunc(func(ctx context.Context) error {
			if runs.Inc() == 2 {
				return ErrPeriodicWorkerStop
			}
			return nil
		}), time.Millisecond, logtest.NewLogger(), PeriodicWorkerOpts{FixedRate: true})

		require.NoError(t, pw.Run(context.Background()))
		require.Equal(t, int32(2), runs.Load())
	})

	t.Run("worker errors are logged and do not stop the loop", func(t *testing.T) {
		logRecorder := logtest.NewRecorder()
		runs := atomic.NewInt32(0)
		pw := NewPeriodicWorker(WorkerFunc(func(ctx context.Context) error {
			switch runs.Inc() {
			case 1:
				return errors.New("temporary failure")
			case 2:
				return ErrPeriodicWorkerStop
			}
			return nil
		}), time.Millisecond, logRecorder)

		require.NoError(t, pw.Run(context.Background()))
		entry, found := logRecorder.FindEntry("periodically running worker finished with error")
		require.True(t, found)
		errField, found := entry.FindField("error")
		require.True(t, found)
		require.EqualError(t, errField.Any.(error), "temporary failure")
	})

	t.Run("initial delay is respected", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		runs := atomic.NewInt32(0)
		pw := NewPeriodicWorkerWithOpts(WorkerFunc(func(ctx context.Context) error {
			runs.Inc()
			return nil
		}), time.Millisecond, logtest.NewLogger(), PeriodicWorkerOpts{InitialDelay: time.Hour})

		require.NoError(t, pw.Run(ctx))
		require.Zero(t, runs.Load())
	})

	t.Run("fixed rate does not accumulate run duration", func(t *testing.T) {
		const interval = 20 * time.Millisecond
		var starts []time.Time
		pw := NewPeriodicWorkerWithOpts(WorkerFunc(func(ctx context.Context) error {
			starts = append(starts, time.Now())
			time.Sleep(interval / 2)
			if len(starts) == 5 {
				return ErrPeriodicWorkerStop
			}
			return nil
		}), interval, logtest.NewLogger(), PeriodicWorkerOpts{FixedRate: true})

		require.NoError(t, pw.Run(context.Background()))
		require.Len(t, starts, 5)
		// With fixed delay the 4 gaps would take at least 4*1.5*interval.
		require.Less(t, starts[4].Sub(starts[0]), 4*interval+4*interval/2)
	})

	t.Run("panic is logged and re-raised", func(t *testing.T) {
		logRecorder := logtest.NewRecorder()
		pw := NewPeriodicWorker(WorkerFunc(func(ctx context.Context) error {
			panic("boom")
		}), time.Millisecond, logRecorder)

		require.PanicsWithValue(t, "boom", func() { _ = pw.Run(context.Background()) })
		_, found := logRecorder.FindEntry("panic: boom")
		require.True(t, found)
	})
}
