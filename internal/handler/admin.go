// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/omtalent/portal-go/internal/middleware"
	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/render"
	"github.com/omtalent/portal-go/internal/service"
	"github.com/omtalent/portal-go/internal/store"
)

// recentEventsLimit is the number of audit events shown on the admin panel.
const recentEventsLimit = 20

// AdminHandler handles the admin panel and account management actions.
type AdminHandler struct {
	accounts  *service.AccountService
	messaging *service.MessagingService
	events    *service.EventService
	renderer  *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		accounts:  service.NewAccountService(db),
		messaging: service.NewMessagingService(store.New(db)),
		events:    service.NewEventService(db),
		renderer:  renderer,
	}
}

// AdminPanelData holds data for the admin panel page.
type AdminPanelData struct {
	User          *model.User
	Students      []model.User
	Announcements []model.Announcement
	RecentEvents  []model.Event
	TotalStudents int
	TotalActive   int
	TotalBlocked  int
}

// Panel renders the admin panel: the student roster, announcement history
// and the recent audit trail.
func (h *AdminHandler) Panel(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	students, err := h.accounts.ListStudents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load students", "error", err)
		return
	}

	announcements, err := h.messaging.ListAnnouncements(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load announcements", "error", err)
		return
	}

	events, err := h.events.ListRecent(r.Context(), recentEventsLimit)
	if err != nil {
		slog.Error("failed to load recent events", "error", err)
		// The panel is still useful without the audit trail
	}

	data := AdminPanelData{
		User:          user,
		Students:      students,
		Announcements: announcements,
		RecentEvents:  events,
		TotalStudents: len(students),
	}
	for _, s := range students {
		if s.IsBlocked() {
			data.TotalBlocked++
		} else {
			data.TotalActive++
		}
	}

	if err := h.renderer.Render(w, r, "admin/panel", render.TemplateData{
		Title:       "Admin Panel",
		Data:        data,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "failed to render admin panel", "error", err)
	}
}

// ToggleStatus blocks an active account or unblocks a blocked one.
func (h *AdminHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)
	if actor == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	userID, ok := requireIDParam(w, r, h.renderer, redirectAdmin)
	if !ok {
		return
	}

	user, err := h.accounts.ToggleStatus(r.Context(), *actor, userID)
	if err != nil {
		if !isExpectedServiceError(err) {
			slog.Error("failed to toggle user status", "error", err, "user_id", userID)
		}
		flashError(w, r, h.renderer, redirectAdmin, serviceErrorMessage(err))
		return
	}

	actorID := actor.ID
	_ = h.events.LogAccountEvent(r.Context(), model.EventLevelInfo, "User status changed",
		&actorID, middleware.GetRequestID(r.Context()),
		map[string]any{"target_user_id": userID, "status": user.Status})

	verb := "unblocked"
	if user.IsBlocked() {
		verb = "blocked"
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, "User "+user.Username+" has been "+verb)
}

// DeleteUser removes a student account and its messages.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)
	if actor == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	userID, ok := requireIDParam(w, r, h.renderer, redirectAdmin)
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), *actor, userID); err != nil {
		if !isExpectedServiceError(err) {
			slog.Error("failed to delete user", "error", err, "user_id", userID)
		}
		flashError(w, r, h.renderer, redirectAdmin, serviceErrorMessage(err))
		return
	}

	actorID := actor.ID
	_ = h.events.LogAccountEvent(r.Context(), model.EventLevelInfo, "User deleted",
		&actorID, middleware.GetRequestID(r.Context()),
		map[string]any{"target_user_id": userID})

	flashSuccess(w, r, h.renderer, redirectAdmin, "User deleted")
}

// SendMessage delivers a message to a single student.
func (h *AdminHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)
	if actor == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	receiverID, err := strconv.ParseInt(r.FormValue("receiver_id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Please select a student")
		return
	}

	msg, err := h.messaging.SendMessage(r.Context(), *actor, receiverID, r.FormValue("content"))
	if err != nil {
		if !isExpectedServiceError(err) {
			slog.Error("failed to send message", "error", err, "receiver_id", receiverID)
		}
		flashError(w, r, h.renderer, redirectAdmin, serviceErrorMessage(err))
		return
	}

	actorID := actor.ID
	_ = h.events.LogMessageEvent(r.Context(), model.EventLevelInfo, "Message sent",
		&actorID, middleware.GetRequestID(r.Context()),
		map[string]any{"message_id": msg.ID, "receiver_id": receiverID})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Message sent")
}

// Announce publishes a site-wide announcement.
func (h *AdminHandler) Announce(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)
	if actor == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	ann, err := h.messaging.PostAnnouncement(r.Context(), *actor, r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		if !isExpectedServiceError(err) {
			slog.Error("failed to post announcement", "error", err)
		}
		flashError(w, r, h.renderer, redirectAdmin, serviceErrorMessage(err))
		return
	}

	actorID := actor.ID
	_ = h.events.LogMessageEvent(r.Context(), model.EventLevelInfo, "Announcement posted",
		&actorID, middleware.GetRequestID(r.Context()),
		map[string]any{"announcement_id": ann.ID, "title": ann.Title})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Announcement published")
}

// isExpectedServiceError reports whether err is one of the well-known service
// error kinds, as opposed to an infrastructure failure worth logging.
func isExpectedServiceError(err error) bool {
	return errors.Is(err, service.ErrValidation) ||
		errors.Is(err, service.ErrDuplicate) ||
		errors.Is(err, service.ErrForbidden) ||
		errors.Is(err, service.ErrNotFound)
}
