/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crpt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/ratelimit"
)

// DocumentsCreatePath is the path of the document creation endpoint.
const DocumentsCreatePath = "/api/v3/lk/documents/create"

// RequestType is used as a request type in HTTP client logs and metrics.
const RequestType = "documents_create"

// Response is a raw result of the HTTP exchange. It is not interpreted by the client.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ClientOpts represents options for NewClient.
type ClientOpts struct {
	// Limiter replaces the limiter built from Config.RateLimit.
	// It may be shared between clients; Client.Close does not stop it.
	Limiter ratelimit.Limiter

	// Serializer is JSONSerializer by default.
	Serializer Serializer

	// Delegate is the last RoundTripper in the HTTP client chain.
	Delegate http.RoundTripper

	Logger    log.FieldLogger
	UserAgent string

	HTTPMetricsCollector    httpclient.MetricsCollector
	LimiterMetricsCollector ratelimit.MetricsCollector
}

// Client submits documents to the document creation endpoint without exceeding the configured rate.
// It is safe for concurrent use.
type Client struct {
	endpoint     string
	limiter      ratelimit.Limiter
	ownedLimiter bool
	serializer   Serializer
	httpClient   *http.Client
	logger       log.FieldLogger
}

// New creates a Client for the production API that sends at most limit requests per period.
func New(period time.Duration, limit int) (*Client, error) {
	cfg := NewDefaultConfig()
	cfg.RateLimit.Period = period
	cfg.RateLimit.Limit = limit
	return NewClient(cfg, ClientOpts{})
}

// NewClient creates a Client with the given configuration and options.
func NewClient(cfg *Config, opts ClientOpts) (*Client, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	endpoint, err := url.JoinPath(cfg.BaseURL, DocumentsCreatePath)
	if err != nil {
		return nil, fmt.Errorf("build endpoint URL: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	serializer := opts.Serializer
	if serializer == nil {
		serializer = JSONSerializer{}
	}

	limiter, ownedLimiter := opts.Limiter, false
	if limiter == nil {
		if limiter, err = ratelimit.New(&cfg.RateLimit, ratelimit.Opts{
			Logger:           logger,
			MetricsCollector: opts.LimiterMetricsCollector,
		}); err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		ownedLimiter = true
	}

	httpClient := httpclient.NewWithOpts(&cfg.HTTPClient, httpclient.Opts{
		UserAgent:   opts.UserAgent,
		RequestType: RequestType,
		Delegate:    opts.Delegate,
		LoggerProvider: func(ctx context.Context) log.FieldLogger {
			if l := httpclient.GetLoggerFromContext(ctx); l != nil {
				return l
			}
			return logger
		},
		Collector: opts.HTTPMetricsCollector,
	})
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		endpoint:     endpoint,
		limiter:      limiter,
		ownedLimiter: ownedLimiter,
		serializer:   serializer,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// CreateDocument serializes the document, waits for the rate limiter and sends exactly one
// POST request with the credential as a bearer token.
//
// Errors:
//   - ErrEmptyCredential if credential is empty;
//   - *SerializationError if the document is nil or cannot be serialized (no budget is spent);
//   - *CancellationError if ctx is done while waiting for the limiter or the client is closed;
//   - *LimiterFatalError if the limiter cannot admit requests anymore;
//   - *TransportError if the request cannot be sent or the response cannot be read.
//
// Any HTTP response (including 4xx and 5xx) is returned without an error.
func (c *Client) CreateDocument(ctx context.Context, doc *Document, credential string) (*Response, error) {
	if credential == "" {
		return nil, ErrEmptyCredential
	}
	if doc == nil {
		return nil, &SerializationError{Inner: ErrNilDocument}
	}
	body, err := c.serializer.Serialize(doc)
	if err != nil {
		return nil, &SerializationError{Inner: err}
	}

	if err = c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	reqCtx := httpclient.NewContextWithBearerToken(ctx, credential)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", c.serializer.ContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Inner: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Inner: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("document is submitted",
		log.String("doc_id", doc.DocID), log.Int("status", resp.StatusCode), log.Int("response_size", len(respBody)))

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// Close stops the rate limiter created by the client (callers waiting for it get *CancellationError)
// and closes idle connections.
func (c *Client) Close() {
	if c.ownedLimiter {
		c.limiter.Stop()
	}
	c.httpClient.CloseIdleConnections()
}
