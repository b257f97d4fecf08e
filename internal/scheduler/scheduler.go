// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs: event log pruning
// and SQLite housekeeping.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/service"
)

// Scheduler handles scheduled background tasks.
type Scheduler struct {
	db             *sql.DB
	events         *service.EventService
	logger         *slog.Logger
	cron           *cron.Cron
	eventRetention time.Duration
}

// New creates a new scheduler instance.
func New(db *sql.DB, events *service.EventService, logger *slog.Logger, eventRetention time.Duration) *Scheduler {
	return &Scheduler{
		db:             db,
		events:         events,
		logger:         logger,
		cron:           cron.New(),
		eventRetention: eventRetention,
	}
}

// Start registers the jobs and begins the cron loop.
// Event pruning runs nightly at 03:10, database maintenance at 03:40.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("10 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("40 3 * * *", func() {
		if err := s.maintainDatabase(); err != nil {
			s.logger.Error("failed to run database maintenance", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneEvents deletes event log entries older than the retention window.
func (s *Scheduler) pruneEvents() error {
	if s.eventRetention <= 0 {
		return nil
	}

	ctx := context.Background()
	if err := s.events.DeleteOldEvents(ctx, s.eventRetention); err != nil {
		return err
	}

	s.logger.Info("event log pruned", "retention", s.eventRetention.String())
	_ = s.events.LogSystemEvent(ctx, model.EventLevelInfo, "Event log pruned", nil, "",
		map[string]any{"retention": s.eventRetention.String()})
	return nil
}

// maintainDatabase checkpoints the WAL and refreshes query planner stats.
func (s *Scheduler) maintainDatabase() error {
	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return err
	}

	s.logger.Info("database maintenance completed")
	return nil
}
