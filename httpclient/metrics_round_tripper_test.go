/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/testutil"
)

func TestMetricsRoundTripper_RoundTrip(t *testing.T) {
	server := newEchoServer()
	defer server.Close()
	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	collector := NewPrometheusMetricsCollector("test")
	rt := NewMetricsRoundTripperWithOpts(http.DefaultTransport, MetricsRoundTripperOpts{
		RequestType: "documents_create",
		Collector:   collector,
	})

	doRequest := func(ctx context.Context, path string) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path, nil)
		require.NoError(t, reqErr)
		resp, rtErr := rt.RoundTrip(req)
		require.NoError(t, rtErr)
		require.NoError(t, resp.Body.Close())
	}

	doRequest(context.Background(), "/")
	doRequest(context.Background(), "/")
	doRequest(context.Background(), "/fail")
	doRequest(NewContextWithRequestType(context.Background(), "ping"), "/")

	hist := func(reqType, status string) prometheus.Histogram {
		return collector.Durations.WithLabelValues(reqType, serverURL.Host, "GET "+reqType, status).(prometheus.Histogram)
	}
	testutil.RequireSamplesCountInHistogram(t, hist("documents_create", "204"), 2)
	testutil.RequireSamplesCountInHistogram(t, hist("documents_create", "503"), 1)
	testutil.RequireSamplesCountInHistogram(t, hist("ping", "204"), 1)
}

func TestNewMetricsRoundTripper_DefaultRequestType(t *testing.T) {
	rt := NewMetricsRoundTripper(http.DefaultTransport, NewPrometheusMetricsCollector(""))
	require.Equal(t, DefaultRequestType, rt.(*MetricsRoundTripper).RequestType)
}
