/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Command crpt-submitter submits documents from a spool directory to the document creation API.
//
// Usage:
//
//	crpt-submitter -config config.yaml [-env .env]
//
// The bearer credential is read from the CRPT_TOKEN environment variable,
// which may also be defined in the env file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/acronis/go-crptapi/config"
	"github.com/acronis/go-crptapi/crpt"
	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/internal/libinfo"
	"github.com/acronis/go-crptapi/internal/metricsserver"
	"github.com/acronis/go-crptapi/internal/spool"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/ratelimit"
	"github.com/acronis/go-crptapi/service"
)

const (
	credentialEnvVar = "CRPT_TOKEN"
	envVarsPrefix    = "CRPT_SUBMITTER"
	metricsNamespace = "crpt_submitter"
)

type appConfig struct {
	Log     *log.Config
	CRPT    *crpt.Config
	Spool   *spool.Config
	Metrics *metricsserver.Config
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("crpt-submitter", flag.ContinueOnError)
	cfgPath := flags.String("config", "config.yaml", "path to the configuration file (yaml or json)")
	envPath := flags.String("env", ".env", "path to the env file, it's ignored if missing")
	if err := flags.Parse(args); err != nil {
		return err
	}

	credential, err := loadCredential(*envPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	logger, closeLogger := log.NewLogger(cfg.Log)
	defer closeLogger()

	collectors := newMetricsCollectors()
	client, err := crpt.NewClient(cfg.CRPT, crpt.ClientOpts{
		Logger:                  logger,
		UserAgent:               "crpt-submitter/" + libinfo.GetLibVersion(),
		HTTPMetricsCollector:    collectors.http,
		LimiterMetricsCollector: collectors.limiter,
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	sp, err := spool.New(cfg.Spool, client, credential, logger)
	if err != nil {
		return fmt.Errorf("create spool: %w", err)
	}

	units := []service.Unit{service.NewWorkerUnitWithOpts(sp, service.WorkerUnitOpts{MetricsRegisterer: collectors})}
	if cfg.Metrics.Enabled {
		units = append(units, metricsserver.New(cfg.Metrics, logger))
	}
	return service.New(logger, service.NewCompositeUnit(units...)).Start()
}

func loadCredential(envPath string) (string, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load env file: %w", err)
	}
	credential := os.Getenv(credentialEnvVar)
	if credential == "" {
		return "", fmt.Errorf("%s environment variable is not set", credentialEnvVar)
	}
	return credential, nil
}

func loadConfig(path string) (*appConfig, error) {
	cfg := &appConfig{
		Log:     log.NewConfig(),
		CRPT:    crpt.NewConfig(),
		Spool:   spool.NewConfig(),
		Metrics: metricsserver.NewConfig(),
	}
	dataType := config.DataTypeYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dataType = config.DataTypeJSON
	}
	err := config.NewDefaultLoader(envVarsPrefix).LoadFromFile(path, dataType, cfg.Log, cfg.CRPT, cfg.Spool, cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

type metricsCollectors struct {
	http    *httpclient.PrometheusMetricsCollector
	limiter *ratelimit.PrometheusMetricsCollector
}

var _ service.MetricsRegisterer = (*metricsCollectors)(nil)

func newMetricsCollectors() *metricsCollectors {
	return &metricsCollectors{
		http:    httpclient.NewPrometheusMetricsCollector(metricsNamespace),
		limiter: ratelimit.NewPrometheusMetricsCollector(metricsNamespace),
	}
}

func (c *metricsCollectors) MustRegisterMetrics() {
	c.http.MustRegister()
	c.limiter.MustRegister()
}

func (c *metricsCollectors) UnregisterMetrics() {
	c.http.Unregister()
	c.limiter.Unregister()
}
