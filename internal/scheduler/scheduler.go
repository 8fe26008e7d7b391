// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omtalent/portal-go/internal/service"
)

// Scheduler handles scheduled maintenance tasks like pruning old audit events.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	events        *service.EventService
	retentionDays int
}

// New creates a new scheduler instance. Audit events older than
// retentionDays are pruned nightly.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		events:        service.NewEventService(db),
		retentionDays: retentionDays,
	}
}

// Start begins the scheduler with the nightly event-pruning job.
func (s *Scheduler) Start() error {
	// Run daily at 03:10
	_, err := s.cron.AddFunc("10 3 * * *", func() {
		if err := s.pruneOldEvents(); err != nil {
			s.logger.Error("failed to prune old events", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneOldEvents removes audit events past the retention window.
func (s *Scheduler) pruneOldEvents() error {
	if s.retentionDays <= 0 {
		return nil
	}

	ctx := context.Background()
	olderThan := time.Duration(s.retentionDays) * 24 * time.Hour

	pruned, err := s.events.DeleteOldEvents(ctx, olderThan)
	if err != nil {
		return err
	}

	if pruned > 0 {
		s.logger.Info("pruned old audit events", "count", pruned, "retention_days", s.retentionDays)
	}

	return nil
}
