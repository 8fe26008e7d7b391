// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/store"
)

// EventService records audit events: logins, account changes, message
// delivery. Events carry the request ID of the HTTP request that caused them.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new audit event.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, requestID string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		RequestID: requestID,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to record audit event", "error", err, "message", message)
		return fmt.Errorf("creating event: %w", err)
	}

	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, requestID, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, requestID, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, userID, requestID, metadata)
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, requestID, metadata)
}

// LogAccountEvent logs an account-management event.
func (s *EventService) LogAccountEvent(ctx context.Context, level, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAccount, message, userID, requestID, metadata)
}

// LogMessageEvent logs a messaging or announcement event.
func (s *EventService) LogMessageEvent(ctx context.Context, level, message string, userID *int64, requestID string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryMessage, message, userID, requestID, metadata)
}

// ListRecent returns the most recent events for the admin panel.
func (s *EventService) ListRecent(ctx context.Context, limit int64) ([]model.Event, error) {
	return s.queries.ListRecentEvents(ctx, limit)
}

// DeleteOldEvents removes events older than the given duration and returns
// the number of rows pruned.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}
