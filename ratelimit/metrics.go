/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/go-crptapi/internal/libinfo"
)

// AcquireResult describes how Acquire call has finished.
type AcquireResult string

// Acquire results.
const (
	AcquireResultImmediate AcquireResult = "immediate"
	AcquireResultWaited    AcquireResult = "waited"
	AcquireResultCanceled  AcquireResult = "canceled"
	AcquireResultStopped   AcquireResult = "stopped"
	AcquireResultFatal     AcquireResult = "fatal"
)

// MetricsCollector is an interface for collecting rate limiter metrics.
type MetricsCollector interface {
	// AcquireDuration observes how long the caller has spent in Acquire.
	AcquireDuration(result AcquireResult, startTime time.Time)
	// AvailableTokens reports the current number of tokens in the bucket.
	AvailableTokens(n int)
	// Refilled is called after every refill tick.
	Refilled()
}

type disabledMetrics struct{}

func (disabledMetrics) AcquireDuration(AcquireResult, time.Time) {}
func (disabledMetrics) AvailableTokens(int)                      {}
func (disabledMetrics) Refilled()                                {}

// PrometheusMetricsCollector is a Prometheus metrics collector.
type PrometheusMetricsCollector struct {
	// AcquireDurations is a histogram of the time spent in Acquire.
	AcquireDurations *prometheus.HistogramVec
	// Available is a gauge with the current number of tokens.
	Available prometheus.Gauge
	// Refills is a counter of refill ticks.
	Refills prometheus.Counter
}

// PrometheusMetricsOpts represents options for PrometheusMetricsCollector.
type PrometheusMetricsOpts struct {
	Namespace   string
	ConstLabels prometheus.Labels
}

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector.
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	return NewPrometheusMetricsCollectorWithOpts(PrometheusMetricsOpts{Namespace: namespace})
}

// NewPrometheusMetricsCollectorWithOpts creates a new Prometheus metrics collector with the provided options.
func NewPrometheusMetricsCollectorWithOpts(opts PrometheusMetricsOpts) *PrometheusMetricsCollector {
	constLabels := libinfo.AddPrometheusLibVersionLabel(opts.ConstLabels)
	return &PrometheusMetricsCollector{
		AcquireDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limiter_acquire_duration_seconds",
			Help:        "A histogram of the time spent waiting for the rate limiter.",
			Buckets:     []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300, 3600},
			ConstLabels: constLabels,
		}, []string{"result"}),
		Available: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limiter_available_tokens",
			Help:        "Current number of tokens available in the rate limiter.",
			ConstLabels: constLabels,
		}),
		Refills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limiter_refills_total",
			Help:        "Number of refill ticks of the rate limiter.",
			ConstLabels: constLabels,
		}),
	}
}

// MustRegister registers the Prometheus metrics.
func (p *PrometheusMetricsCollector) MustRegister() {
	prometheus.MustRegister(p.AcquireDurations, p.Available, p.Refills)
}

// Unregister the Prometheus metrics.
func (p *PrometheusMetricsCollector) Unregister() {
	prometheus.Unregister(p.AcquireDurations)
	prometheus.Unregister(p.Available)
	prometheus.Unregister(p.Refills)
}

// AcquireDuration observes the time spent in Acquire.
func (p *PrometheusMetricsCollector) AcquireDuration(result AcquireResult, startTime time.Time) {
	p.AcquireDurations.WithLabelValues(string(result)).Observe(time.Since(startTime).Seconds())
}

// AvailableTokens sets the available tokens gauge.
func (p *PrometheusMetricsCollector) AvailableTokens(n int) {
	p.Available.Set(float64(n))
}

// Refilled increments the refills counter.
func (p *PrometheusMetricsCollector) Refilled() {
	p.Refills.Inc()
}

func acquireResultFromError(err error) AcquireResult {
	var fatalErr *FatalError
	switch {
	case err == nil:
		return AcquireResultWaited
	case errors.As(err, &fatalErr):
		return AcquireResultFatal
	case errors.Is(err, ErrStopped):
		return AcquireResultStopped
	default:
		return AcquireResultCanceled
	}
}
