/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package spool submits documents dropped as *.json files into a directory.
//
// Every scan picks up all *.json files of the directory and submits them concurrently.
// A file is moved into the "sent" subdirectory when the remote side answers with 2xx,
// and into the "failed" subdirectory otherwise. The response body is stored next to it
// with the ".response" suffix, a local error (bad JSON, network failure) with the ".error" suffix.
package spool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/acronis/go-crptapi/crpt"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/service"
)

// Subdirectories for processed files.
const (
	SentDir   = "sent"
	FailedDir = "failed"
)

const (
	documentExt = ".json"
	responseExt = ".response"
	errorExt    = ".error"
)

// DocumentCreator submits a single document.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, doc *crpt.Document, credential string) (*crpt.Response, error)
}

// Stats contains counters of processed files.
type Stats struct {
	Sent   int64
	Failed int64
}

// Spool is a service.Worker that periodically scans a directory and submits found documents.
type Spool struct {
	cfg        Config
	creator    DocumentCreator
	credential string
	logger     log.FieldLogger

	sent   *atomic.Int64
	failed *atomic.Int64

	// Submitted documents that could not be moved out of the spool directory; scans skip them.
	stuckMu sync.Mutex
	stuck   map[string]struct{}
}

var _ service.Worker = (*Spool)(nil)

// New creates a new Spool. Subdirectories for processed files are created if needed.
func New(cfg *Config, creator DocumentCreator, credential string, logger log.FieldLogger) (*Spool, error) {
	if credential == "" {
		return nil, crpt.ErrEmptyCredential
	}
	if cfg.Concurrency <= 0 || cfg.ScanInterval <= 0 {
		return nil, errors.New("concurrency and scan interval should be positive")
	}
	for _, sub := range []string{SentDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", sub, err)
		}
	}
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	return &Spool{
		cfg:        *cfg,
		creator:    creator,
		credential: credential,
		logger:     logger.With(log.String("spool_dir", cfg.Dir)),
		sent:       atomic.NewInt64(0),
		failed:     atomic.NewInt64(0),
		stuck:      make(map[string]struct{}),
	}, nil
}

// Stats returns counters of files processed so far.
func (s *Spool) Stats() Stats {
	return Stats{Sent: s.sent.Load(), Failed: s.failed.Load()}
}

// Run scans the directory every ScanInterval until ctx is done.
// It returns an error only when the rate limiter of the client has failed and nothing can be submitted anymore.
func (s *Spool) Run(ctx context.Context) error {
	var fatalErr error
	worker := service.WorkerFunc(func(ctx context.Context) error {
		err := s.Scan(ctx)
		var limiterErr *crpt.LimiterFatalError
		if errors.As(err, &limiterErr) {
			fatalErr = err
			return service.ErrPeriodicWorkerStop
		}
		return err
	})
	pw := service.NewPeriodicWorker(worker, s.cfg.ScanInterval, s.logger)
	if err := pw.Run(ctx); err != nil {
		return err
	}
	return fatalErr
}

// Scan submits all documents which are currently in the directory and waits until they are processed.
func (s *Spool) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return fmt.Errorf("read spool directory: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), documentExt) {
			continue
		}
		if gCtx.Err() != nil {
			break
		}
		name := entry.Name()
		if s.isStuck(name) {
			continue
		}
		g.Go(func() error {
			return s.submitFile(gCtx, name)
		})
	}
	return g.Wait()
}

func (s *Spool) submitFile(ctx context.Context, name string) error {
	logger := s.logger.With(log.String("file", name))
	startTime := time.Now()

	data, err := os.ReadFile(filepath.Join(s.cfg.Dir, name))
	if err != nil {
		return s.moveToFailed(logger, name, errorExt, []byte(err.Error()))
	}
	var doc crpt.Document
	if err = json.Unmarshal(data, &doc); err != nil {
		return s.moveToFailed(logger, name, errorExt, []byte("decode document: "+err.Error()))
	}

	resp, err := s.creator.CreateDocument(ctx, &doc, s.credential)
	if err != nil {
		var cancelErr *crpt.CancellationError
		var fatalErr *crpt.LimiterFatalError
		switch {
		case errors.As(err, &fatalErr):
			logger.Error("rate limiter failed, stopping spool", log.Error(err))
			return err
		case errors.As(err, &cancelErr):
			// The file stays in place and will be picked up by the next run.
			logger.Info("document submission is canceled", log.Error(err))
			return nil
		}
		return s.moveToFailed(logger, name, errorExt, []byte(err.Error()))
	}

	if !resp.IsSuccess() {
		body := fmt.Sprintf("HTTP %d\n\n%s", resp.StatusCode, resp.Body)
		return s.moveToFailed(logger, name, responseExt, []byte(body))
	}
	s.sent.Inc()
	if err = s.move(name, SentDir, responseExt, resp.Body); err != nil {
		var sidecarErr *sidecarError
		if !errors.As(err, &sidecarErr) {
			s.markStuck(name)
		}
		logger.Error("failed to move submitted document", log.Error(err))
	}
	logger.Info("document is submitted",
		log.String("doc_id", doc.DocID), log.Int("status", resp.StatusCode), log.DurationIn(time.Since(startTime), time.Millisecond))
	return nil
}

func (s *Spool) moveToFailed(logger log.FieldLogger, name, sidecarExt string, sidecar []byte) error {
	s.failed.Inc()
	logger.Warn("document is not submitted", log.String("reason", firstLine(sidecar)))
	if err := s.move(name, FailedDir, sidecarExt, sidecar); err != nil {
		var sidecarErr *sidecarError
		if !errors.As(err, &sidecarErr) {
			s.markStuck(name)
		}
		logger.Error("failed to move document", log.Error(err))
	}
	return nil
}

type sidecarError struct {
	Inner error
}

func (e *sidecarError) Error() string {
	return "write sidecar: " + e.Inner.Error()
}

func (e *sidecarError) Unwrap() error {
	return e.Inner
}

// move renames the document into subDir and then writes the sidecar next to it.
// *sidecarError is returned if only the sidecar could not be written.
func (s *Spool) move(name, subDir, sidecarExt string, sidecar []byte) error {
	dstDir := filepath.Join(s.cfg.Dir, subDir)
	if err := os.Rename(filepath.Join(s.cfg.Dir, name), filepath.Join(dstDir, name)); err != nil {
		return fmt.Errorf("move to %s: %w", subDir, err)
	}
	if err := os.WriteFile(filepath.Join(dstDir, name+sidecarExt), sidecar, 0o644); err != nil {
		return &sidecarError{Inner: err}
	}
	return nil
}

func (s *Spool) markStuck(name string) {
	s.stuckMu.Lock()
	defer s.stuckMu.Unlock()
	s.stuck[name] = struct{}{}
}

func (s *Spool) isStuck(name string) bool {
	s.stuckMu.Lock()
	defer s.stuckMu.Unlock()
	_, ok := s.stuck[name]
	return ok
}

func firstLine(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
