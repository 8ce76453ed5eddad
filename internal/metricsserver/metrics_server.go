/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package metricsserver provides an HTTP server that exposes Prometheus metrics and a health check.
package metricsserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/service"
)

// Paths served by MetricsServer.
const (
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
)

const defaultShutdownTimeout = 5 * time.Second

// MetricsServer represents HTTP server for metrics scraping.
// It implements service.Unit interface.
type MetricsServer struct {
	URL            string
	HTTPServer     *http.Server
	httpServerDone chan struct{}
	Logger         log.FieldLogger
}

var _ service.Unit = (*MetricsServer)(nil)

// Opts contains optional parameters for constructing MetricsServer.
type Opts struct {
	// Gatherer is used for collecting metrics. prometheus.DefaultGatherer is used by default.
	Gatherer prometheus.Gatherer
}

// New creates a new metrics server that uses prometheus.DefaultGatherer.
func New(cfg *Config, logger log.FieldLogger) *MetricsServer {
	return NewWithOpts(cfg, logger, Opts{})
}

// NewWithOpts creates a new metrics server with an ability to specify optional parameters.
func NewWithOpts(cfg *Config, logger log.FieldLogger, opts Opts) *MetricsServer {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Get(HealthPath, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: time.Second * 5,
	}

	return &MetricsServer{
		URL:            "http://" + httpServer.Addr,
		HTTPServer:     httpServer,
		httpServerDone: make(chan struct{}),
		Logger:         logger,
	}
}

// Start starts metrics HTTP server in a blocking way. Supposed this methods will be called in a separate goroutine.
// If a fatal error occurs, it's sent into passed fatalError channel and should be processed outside.
func (s *MetricsServer) Start(fatalError chan<- error) {
	defer close(s.httpServerDone)

	logger := s.Logger.With(log.String("address", s.HTTPServer.Addr))

	logger.Info("starting metrics HTTP server...")
	if err := s.HTTPServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("metrics HTTP server closed")
			return
		}
		logger.Error("metrics HTTP server error", log.Error(err))
		fatalError <- err
	}
}

// Stop stops metrics HTTP server.
func (s *MetricsServer) Stop(gracefully bool) error {
	s.Logger.Info("closing metrics HTTP server...", log.Bool("gracefully", gracefully))
	if gracefully {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := s.HTTPServer.Shutdown(ctx); err != nil {
			s.Logger.Error("metrics HTTP server shutdown error", log.Error(err))
			return err
		}
	} else if err := s.HTTPServer.Close(); err != nil {
		s.Logger.Error("metrics HTTP server closing error", log.Error(err))
		return err
	}
	<-s.httpServerDone // Wait closing of listener.
	return nil
}
