/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package httpclient builds *http.Client instances with a chain of round trippers
// for bearer authorization, request IDs, User-Agent, Prometheus metrics and logging.
package httpclient

import (
	"context"
	"net/http"

	"github.com/acronis/go-crptapi/log"
)

// DefaultRequestType is used in logs and metrics when no request type is specified.
const DefaultRequestType = "default"

// CloneHTTPRequest creates a shallow copy of the request along with a deep copy of the Headers.
func CloneHTTPRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r
}

// Opts provides options for NewWithOpts function.
type Opts struct {
	// UserAgent is a user agent string. The header is not touched if empty.
	UserAgent string

	// RequestType is a type of request used in logs and metrics (e.g. "documents_create").
	RequestType string

	// Delegate is the last RoundTripper in the chain. A clone of http.DefaultTransport is used by default.
	Delegate http.RoundTripper

	// LoggerProvider is a function that provides a context-specific logger.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// RequestIDProvider is a function that provides a request ID.
	RequestIDProvider func(ctx context.Context) string

	// AuthProvider provides bearer tokens for requests without a token in the context.
	// If nil and DisableAuth is false, requests without a token fail.
	AuthProvider AuthProvider

	// DisableAuth turns off the bearer authorization round tripper.
	DisableAuth bool

	// Collector is a metrics collector.
	Collector MetricsCollector
}

// New creates an HTTP client with the configured round trippers chain.
func New(cfg *Config) *http.Client {
	return NewWithOpts(cfg, Opts{})
}

// NewWithOpts creates an HTTP client with the following round trippers chain (from the outermost):
// bearer auth, request id, user agent, metrics, logging, delegate.
func NewWithOpts(cfg *Config, opts Opts) *http.Client {
	return &http.Client{Transport: NewTransport(cfg, opts), Timeout: cfg.Timeout}
}

// NewTransport returns the round trippers chain used by NewWithOpts.
func NewTransport(cfg *Config, opts Opts) http.RoundTripper {
	delegate := opts.Delegate
	if delegate == nil {
		delegate = http.DefaultTransport.(*http.Transport).Clone()
	}

	requestType := opts.RequestType
	if requestType == "" {
		requestType = DefaultRequestType
	}

	if cfg.Logger.Enabled {
		logOpts := cfg.Logger.TransportOpts()
		logOpts.LoggerProvider = opts.LoggerProvider
		delegate = NewLoggingRoundTripperWithOpts(delegate, requestType, logOpts)
	}

	if cfg.Metrics.Enabled && opts.Collector != nil {
		delegate = NewMetricsRoundTripperWithOpts(delegate, MetricsRoundTripperOpts{
			RequestType: requestType,
			Collector:   opts.Collector,
		})
	}

	if opts.UserAgent != "" {
		delegate = NewUserAgentRoundTripper(delegate, opts.UserAgent)
	}

	delegate = NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{
		RequestIDProvider: opts.RequestIDProvider,
	})

	if !opts.DisableAuth {
		delegate = NewAuthBearerRoundTripper(delegate, opts.AuthProvider)
	}

	return delegate
}
