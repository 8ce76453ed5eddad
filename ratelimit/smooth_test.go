/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSmoothLimiter(t *testing.T) {
	_, err := NewSmoothLimiter(0, 1)
	require.EqualError(t, err, "period should be positive, got 0s")
	_, err = NewSmoothLimiter(time.Second, 0)
	require.EqualError(t, err, "limit should be positive, got 0")
}

func TestSmoothLimiter_Acquire(t *testing.T) {
	t.Run("burst then even spacing", func(t *testing.T) {
		const period = 200 * time.Millisecond
		sl, err := NewSmoothLimiter(period, 4)
		require.NoError(t, err)
		defer sl.Stop()

		start := time.Now()
		for i := 0; i < 4; i++ {
			require.NoError(t, sl.Acquire(context.Background()))
		}
		require.Less(t, time.Since(start), period/4)

		require.NoError(t, sl.Acquire(context.Background()))
		require.GreaterOrEqual(t, time.Since(start), period/4*9/10)
	})

	t.Run("context is done", func(t *testing.T) {
		sl, err := NewSmoothLimiter(time.Hour, 1)
		require.NoError(t, err)
		defer sl.Stop()
		require.NoError(t, sl.Acquire(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- sl.Acquire(ctx) }()
		time.Sleep(10 * time.Millisecond)
		cancel()

		err = <-errCh
		var cancelErr *CancellationError
		require.ErrorAs(t, err, &cancelErr)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("stop releases waiters", func(t *testing.T) {
		sl, err := NewSmoothLimiter(time.Hour, 1)
		require.NoError(t, err)
		require.NoError(t, sl.Acquire(context.Background()))

		errCh := make(chan error, 1)
		go func() { errCh <- sl.Acquire(context.Background()) }()
		time.Sleep(10 * time.Millisecond)
		sl.Stop()

		require.ErrorIs(t, <-errCh, ErrStopped)
		require.ErrorIs(t, sl.Acquire(context.Background()), ErrStopped)
		sl.Stop()
	})
}
