// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/session"
)

func formRequest(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterSuccess(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, formRequest(t, "/register", url.Values{
		"first_name": {"Thandi"},
		"surname":    {"Nkosi"},
		"username":   {"thandi"},
		"id_number":  {"9001015009087"},
		"email":      {"thandi@example.com"},
		"password":   {"secret123"},
	}))
	rec := httptest.NewRecorder()

	h.Register(rec, req)
	assertRedirect(t, rec, "/login")

	if _, err := h.accounts.Authenticate(req.Context(), "thandi", "secret123"); err != nil {
		t.Errorf("registered user cannot authenticate: %v", err)
	}
}

func TestRegisterValidationRedirectsBack(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, formRequest(t, "/register", url.Values{
		"username": {"thandi"},
		// email and password missing
	}))
	rec := httptest.NewRecorder()

	h.Register(rec, req)
	assertRedirect(t, rec, "/register")
}

func TestRegisterDuplicateRedirectsBack(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	req := requestWithSession(sm, formRequest(t, "/register", url.Values{
		"username": {"thandi"},
		"email":    {"new@example.com"},
		"password": {"secret123"},
	}))
	rec := httptest.NewRecorder()

	h.Register(rec, req)
	assertRedirect(t, rec, "/register")
}

func TestLoginStudentRedirectsToDashboard(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	req := requestWithSession(sm, formRequest(t, "/login", url.Values{
		"username": {"thandi"},
		"password": {"secret123"},
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)
	assertRedirect(t, rec, "/dashboard")

	id, ok := session.GetIdentity(req.Context(), sm)
	if !ok {
		t.Fatal("no identity in session after login")
	}
	if id.Role != model.RoleStudent {
		t.Errorf("session role = %q, want student", id.Role)
	}
}

func TestLoginAdminRedirectsToPanel(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	createTestUser(t, db, "root", model.RoleAdmin, model.StatusActive, "adminpass")

	req := requestWithSession(sm, formRequest(t, "/login", url.Values{
		"username": {"root"},
		"password": {"adminpass"},
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)
	assertRedirect(t, rec, "/admin")
}

func TestLoginBadPasswordRedirectsToLogin(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	req := requestWithSession(sm, formRequest(t, "/login", url.Values{
		"username": {"thandi"},
		"password": {"wrong"},
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)
	assertRedirect(t, rec, "/login")

	if _, ok := session.GetIdentity(req.Context(), sm); ok {
		t.Error("identity present in session after failed login")
	}
}

func TestLoginBlockedAccountRejected(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	createTestUser(t, db, "blocked", model.RoleStudent, model.StatusBlocked, "secret123")

	req := requestWithSession(sm, formRequest(t, "/login", url.Values{
		"username": {"blocked"},
		"password": {"secret123"},
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)
	assertRedirect(t, rec, "/login")

	if _, ok := session.GetIdentity(req.Context(), sm); ok {
		t.Error("blocked account obtained a session")
	}
}

func TestLoginMissingFields(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, formRequest(t, "/login", url.Values{}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)
	assertRedirect(t, rec, "/login")
}

func TestLogoutClearsSession(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	user := createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	req := requestWithSession(sm, httptest.NewRequest(http.MethodPost, "/logout", nil))
	session.PutIdentity(req.Context(), sm, session.Identity{UserID: user.ID, Role: user.Role})

	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	assertRedirect(t, rec, "/login")

	if _, ok := session.GetIdentity(req.Context(), sm); ok {
		t.Error("identity survives logout")
	}
}

func TestRegisterFormRendersForAnonymous(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/register", nil))
	rec := httptest.NewRecorder()

	h.RegisterForm(rec, req)
	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Register") {
		t.Error("registration page missing expected content")
	}
}

func TestLoginFormRedirectsAuthenticated(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	user := createTestUser(t, db, "thandi", model.RoleStudent, model.StatusActive, "secret123")

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/login", nil))
	session.PutIdentity(req.Context(), sm, session.Identity{UserID: user.ID, Role: user.Role})

	rec := httptest.NewRecorder()
	h.LoginForm(rec, req)
	assertRedirect(t, rec, "/dashboard")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30s", "30 seconds"},
		{"1m", "1 minute"},
		{"15m", "15 minutes"},
		{"1h", "1 hour"},
		{"3h", "3 hours"},
	}
	for _, tt := range tests {
		d, err := time.ParseDuration(tt.in)
		if err != nil {
			t.Fatalf("bad duration %q: %v", tt.in, err)
		}
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
