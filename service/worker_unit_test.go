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
)

type mockMetricsRegisterer struct {
	registered bool
}

func (m *mockMetricsRegisterer) MustRegisterMetrics() { m.registered = true }
func (m *mockMetricsRegisterer) UnregisterMetrics()   { m.registered = false }

func TestWorkerUnit(t *testing.T) {
	t.Run("graceful stop waits for worker", func(t *testing.T) {
		finished := make(chan struct{})
		u := NewWorkerUnit(WorkerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			close(finished)
			return nil
		}))
		fatalErr := make(chan error, 1)
		go u.Start(fatalErr)

		require.NoError(t, u.Stop(true))
		select {
		case <-finished:
		default:
			t.Fatal("worker is not finished after graceful stop")
		}
		require.Len(t, fatalErr, 0)
	})

	t.Run("worker error is fatal", func(t *testing.T) {
		workerErr := errors.New("worker failed")
		u := NewWorkerUnit(WorkerFunc(func(ctx context.Context) error {
			return workerErr
		}))
		fatalErr := make(chan error, 1)
		u.Start(fatalErr)
		require.ErrorIs(t, <-fatalErr, workerErr)
	})

	t.Run("graceful stop timeout", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		u := NewWorkerUnitWithOpts(WorkerFunc(func(ctx context.Context) error {
			<-release
			return nil
		}), WorkerUnitOpts{GracefulStopTimeout: 10 * time.Millisecond})
		go u.Start(make(chan error, 1))

		require.ErrorIs(t, u.Stop(true), ErrWorkerUnitStopTimeoutExceeded)
	})

	t.Run("metrics registerer", func(t *testing.T) {
		mr := &mockMetricsRegisterer{}
		u := NewWorkerUnitWithOpts(WorkerFunc(func(ctx context.Context) error { return nil }),
			WorkerUnitOpts{MetricsRegisterer: mr})
		u.MustRegisterMetrics()
		require.True(t, mr.registered)
		u.UnregisterMetrics()
		require.False(t, mr.registered)
	})
}
