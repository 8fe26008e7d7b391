// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/store"
)

// contentPolicy sanitizes user-facing rich content; titlePolicy strips
// all markup from single-line fields.
var (
	contentPolicy = bluemonday.UGCPolicy()
	titlePolicy   = bluemonday.StrictPolicy()
)

// MessagingService delivers per-student messages and site-wide announcements.
type MessagingService struct {
	queries *store.Queries
}

// NewMessagingService creates a new MessagingService.
func NewMessagingService(queries *store.Queries) *MessagingService {
	return &MessagingService{queries: queries}
}

// SendMessage stores a message for a single student. Admin only. The receiver
// must exist; the sent-at timestamp is always set server-side.
func (s *MessagingService) SendMessage(ctx context.Context, actor model.User, receiverID int64, content string) (model.Message, error) {
	if !actor.IsAdmin() {
		return model.Message{}, ErrForbidden
	}

	content = strings.TrimSpace(contentPolicy.Sanitize(content))
	if content == "" {
		return model.Message{}, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	receiver, err := s.queries.GetUserByID(ctx, receiverID)
	if err != nil {
		return model.Message{}, fmt.Errorf("%w: receiver does not exist", ErrNotFound)
	}

	msg, err := s.queries.CreateMessage(ctx, store.CreateMessageParams{
		Content:    content,
		ReceiverID: receiverID,
		SentAt:     time.Now(),
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("creating message: %w", err)
	}

	slog.Info("message sent", "message_id", msg.ID, "receiver_id", receiverID,
		"receiver", receiver.Username, "sent_by", actor.ID)
	return msg, nil
}

// ListMessages returns the given user's messages, newest first.
func (s *MessagingService) ListMessages(ctx context.Context, userID int64) ([]model.Message, error) {
	return s.queries.ListMessagesByReceiver(ctx, userID)
}

// PostAnnouncement publishes a site-wide announcement. Admin only. Content is
// Markdown; it is sanitized here and rendered at display time.
func (s *MessagingService) PostAnnouncement(ctx context.Context, actor model.User, title, content string) (model.Announcement, error) {
	if !actor.IsAdmin() {
		return model.Announcement{}, ErrForbidden
	}

	title = strings.TrimSpace(titlePolicy.Sanitize(title))
	content = strings.TrimSpace(content)
	if title == "" {
		return model.Announcement{}, fmt.Errorf("%w: announcement title is required", ErrValidation)
	}
	if content == "" {
		return model.Announcement{}, fmt.Errorf("%w: announcement content is required", ErrValidation)
	}

	ann, err := s.queries.CreateAnnouncement(ctx, store.CreateAnnouncementParams{
		Title:    title,
		Content:  content,
		PostedAt: time.Now(),
	})
	if err != nil {
		return model.Announcement{}, fmt.Errorf("creating announcement: %w", err)
	}

	slog.Info("announcement posted", "announcement_id", ann.ID, "title", ann.Title, "posted_by", actor.ID)
	return ann, nil
}

// ListAnnouncements returns all announcements, newest first.
func (s *MessagingService) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	return s.queries.ListAnnouncements(ctx)
}
