// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/omtalent/portal-go/internal/render"
	"github.com/omtalent/portal-go/internal/session"
)

// HomeHandler serves the public landing page.
type HomeHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(renderer *render.Renderer, sm *scs.SessionManager) *HomeHandler {
	return &HomeHandler{
		renderer:       renderer,
		sessionManager: sm,
	}
}

// Landing renders the landing page. Authenticated users are sent straight
// to their home screen.
func (h *HomeHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.GetIdentity(r.Context(), h.sessionManager); ok {
		if id.Role == RoleAdmin {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		} else {
			http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		}
		return
	}

	if err := h.renderer.Render(w, r, "portal/landing", render.TemplateData{
		Title: "Welcome",
	}); err != nil {
		logAndInternalError(w, "failed to render landing page", "error", err)
	}
}
