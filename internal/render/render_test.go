// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/omtalent/portal-go/web"
)

func testRenderer(t *testing.T, sm *scs.SessionManager) *Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("failed to get templates fs: %v", err)
	}

	r, err := New(Config{TemplatesFS: templatesFS, SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	return r
}

func sessionRequest(t *testing.T, sm *scs.SessionManager) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return req.WithContext(ctx)
}

func TestAllPagesParse(t *testing.T) {
	r := testRenderer(t, scs.New())

	for _, name := range []string{
		"portal/landing", "portal/dashboard",
		"auth/login", "auth/register",
		"admin/panel",
	} {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %s not parsed", name)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	sm := scs.New()
	r := testRenderer(t, sm)

	rec := httptest.NewRecorder()
	if err := r.Render(rec, sessionRequest(t, sm), "portal/nonexistent", TemplateData{}); err == nil {
		t.Error("no error for unknown template")
	}
}

func TestRenderSetsContentType(t *testing.T) {
	sm := scs.New()
	r := testRenderer(t, sm)

	rec := httptest.NewRecorder()
	req := sessionRequest(t, sm)
	if err := r.Render(rec, req, "auth/login", TemplateData{Title: "Login"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Login") {
		t.Error("rendered page missing title")
	}
}

func TestFlashConsumedOnRender(t *testing.T) {
	sm := scs.New()
	r := testRenderer(t, sm)
	req := sessionRequest(t, sm)

	r.SetFlash(req, "Saved", FlashSuccess)

	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, "auth/login", TemplateData{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Saved") {
		t.Error("flash message not rendered")
	}

	// Flash is popped; a second render shows nothing
	rec = httptest.NewRecorder()
	if err := r.Render(rec, req, "auth/login", TemplateData{}); err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if strings.Contains(rec.Body.String(), "Saved") {
		t.Error("flash message shown twice")
	}
}

func TestTruncateFunc(t *testing.T) {
	funcs := (&Renderer{}).templateFuncs()
	truncate := funcs["truncate"].(func(string, int) string)

	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("hello world", 5); got != "hello..." {
		t.Errorf("truncate long = %q", got)
	}
}
