/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/testutil"
)

func TestPrometheusMetricsCollector(t *testing.T) {
	collector := NewPrometheusMetricsCollector("crpt")
	tb, scheduler := newTestTokenBucket(t, 2, TokenBucketOpts{MetricsCollector: collector})

	require.NoError(t, tb.Acquire(context.Background()))
	require.NoError(t, tb.Acquire(context.Background()))
	testutil.RequireGaugeValue(t, collector.Available, 0)

	scheduler.Tick()
	testutil.RequireGaugeValue(t, collector.Available, 2)
	testutil.RequireSamplesCountInCounter(t, collector.Refills, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tb.Acquire(ctx))

	testutil.RequireSamplesCountInHistogram(t,
		collector.AcquireDurations.WithLabelValues(string(AcquireResultImmediate)).(prometheus.Histogram), 3)
}
