// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/omtalent/portal-go/internal/middleware"
	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/render"
	"github.com/omtalent/portal-go/internal/service"
	"github.com/omtalent/portal-go/internal/store"
)

// announcementPolicy sanitizes announcement HTML after Markdown conversion.
var announcementPolicy = bluemonday.UGCPolicy()

// DashboardHandler serves the student dashboard.
type DashboardHandler struct {
	messaging *service.MessagingService
	renderer  *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		messaging: service.NewMessagingService(store.New(db)),
		renderer:  renderer,
	}
}

// DashboardData holds data for the dashboard page.
type DashboardData struct {
	User          *model.User
	Messages      []model.Message
	Announcements []AnnouncementView
}

// AnnouncementView is an announcement with its Markdown content rendered to HTML.
type AnnouncementView struct {
	ID       int64
	Title    string
	Content  template.HTML
	PostedAt time.Time
}

// Dashboard renders the student dashboard: the student's messages and all
// announcements, newest first.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	messages, err := h.messaging.ListMessages(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to load messages", "error", err, "user_id", user.ID)
		return
	}

	announcements, err := h.messaging.ListAnnouncements(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load announcements", "error", err)
		return
	}

	data := DashboardData{
		User:     user,
		Messages: messages,
	}
	for _, a := range announcements {
		data.Announcements = append(data.Announcements, AnnouncementView{
			ID:       a.ID,
			Title:    a.Title,
			Content:  renderMarkdown(a.Content),
			PostedAt: a.PostedAt,
		})
	}

	if err := h.renderer.Render(w, r, "portal/dashboard", render.TemplateData{
		Title:       "Dashboard",
		Data:        data,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}

// renderMarkdown converts Markdown to sanitized HTML. On conversion failure
// the raw text is shown escaped.
func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		slog.Error("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(announcementPolicy.SanitizeBytes(buf.Bytes()))
}
