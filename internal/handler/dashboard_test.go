// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/session"
)

func TestDashboardShowsMessagesAndAnnouncements(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewDashboardHandler(db, testRenderer(t, sm))

	admin := createTestUser(t, db, "root", model.RoleAdmin, model.StatusActive, "adminpass")
	student := createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	ctx := context.Background()
	if _, err := h.messaging.SendMessage(ctx, admin, student.ID, "Welcome aboard"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := h.messaging.PostAnnouncement(ctx, admin, "Orientation", "Starts **tomorrow** at 9am."); err != nil {
		t.Fatalf("PostAnnouncement failed: %v", err)
	}

	req := requestWithUser(requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/dashboard", nil)), student)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)
	assertStatus(t, rec.Code, http.StatusOK)

	body := rec.Body.String()
	if !strings.Contains(body, "Welcome aboard") {
		t.Error("message missing from dashboard")
	}
	if !strings.Contains(body, "Orientation") {
		t.Error("announcement missing from dashboard")
	}
	// Markdown rendered to HTML at display time
	if !strings.Contains(body, "<strong>tomorrow</strong>") {
		t.Error("announcement markdown not rendered")
	}
}

func TestDashboardScopedToCurrentStudent(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewDashboardHandler(db, testRenderer(t, sm))

	admin := createTestUser(t, db, "root", model.RoleAdmin, model.StatusActive, "adminpass")
	alice := createTestUser(t, db, "alice", model.RoleStudent, model.StatusActive, "secret123")
	bob := createTestUser(t, db, "bob", model.RoleStudent, model.StatusActive, "secret123")

	ctx := context.Background()
	if _, err := h.messaging.SendMessage(ctx, admin, bob.ID, "for bob only"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	req := requestWithUser(requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/dashboard", nil)), alice)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)
	assertStatus(t, rec.Code, http.StatusOK)

	if strings.Contains(rec.Body.String(), "for bob only") {
		t.Error("another student's message leaked onto the dashboard")
	}
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewDashboardHandler(db, testRenderer(t, sm))

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)
	assertRedirect(t, rec, "/login")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(renderMarkdown(`Hello <script>alert(1)</script> **world**`))
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag survived: %q", out)
	}
	if !strings.Contains(out, "<strong>world</strong>") {
		t.Errorf("markdown emphasis lost: %q", out)
	}
}

func TestLandingRendersForAnonymous(t *testing.T) {
	sm := testSessionManager(t)
	h := NewHomeHandler(testRenderer(t, sm), sm)

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()

	h.Landing(rec, req)
	assertStatus(t, rec.Code, http.StatusOK)
}

func TestLandingRedirectsByRole(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewHomeHandler(testRenderer(t, sm), sm)

	admin := createTestUser(t, db, "root", model.RoleAdmin, model.StatusActive, "adminpass")

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	session.PutIdentity(req.Context(), sm, session.Identity{UserID: admin.ID, Role: admin.Role})

	rec := httptest.NewRecorder()
	h.Landing(rec, req)
	assertRedirect(t, rec, "/admin")
}
