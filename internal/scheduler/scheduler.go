// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic cache warmup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule warms the cache every 15 minutes.
const DefaultSchedule = "*/15 * * * *"

// DefaultTimeout bounds a single warmup run.
const DefaultTimeout = 2 * time.Minute

// ErrAlreadyRunning is returned by RunNow while a warmup is in progress.
var ErrAlreadyRunning = errors.New("scheduler: warmup already running")

// Warmer pre-populates the content cache.
type Warmer interface {
	Warm(ctx context.Context) error
}

// JobInfo is the public view of the warmup job.
type JobInfo struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Enabled   bool      `json:"enabled"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run,omitzero"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitzero"`
}

// Scheduler handles the cache warmup job.
type Scheduler struct {
	cron     *cron.Cron
	warmer   Warmer
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
	entryID  cron.EntryID

	mu      sync.Mutex
	running bool
	runs    int
	lastRun time.Time
	lastErr error
}

// New creates a new scheduler instance. An empty schedule disables the
// periodic job; RunNow still works.
func New(warmer Warmer, schedule string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid warmup schedule %q: %w", schedule, err)
		}
	}

	logger = logger.With("component", "scheduler")
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{logger})),
		warmer:   warmer,
		schedule: schedule,
		timeout:  DefaultTimeout,
		logger:   logger,
	}, nil
}

// Enabled reports whether the periodic job is scheduled.
func (s *Scheduler) Enabled() bool {
	return s.schedule != ""
}

// Start begins the scheduler with the warmup job.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		s.logger.Info("cache warmup disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(context.Background()); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error("cache warmup failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs the warmup immediately. Overlapping runs are rejected.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.warmer.Warm(ctx)

	s.mu.Lock()
	s.running = false
	s.runs++
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err == nil {
		s.logger.Info("cache warmed", "duration", time.Since(start))
	}
	return err
}

// Info returns the state of the warmup job.
func (s *Scheduler) Info() JobInfo {
	s.mu.Lock()
	info := JobInfo{
		Name:     "cache-warmup",
		Schedule: s.schedule,
		Enabled:  s.Enabled(),
		Runs:     s.runs,
		LastRun:  s.lastRun,
	}
	if s.lastErr != nil {
		info.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if s.entryID != 0 {
		info.NextRun = s.cron.Entry(s.entryID).Next
	}
	return info
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
