// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers for the portal: public pages,
// authentication, the student dashboard and the admin panel.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omtalent/portal-go/internal/render"
	"github.com/omtalent/portal-go/internal/service"
)

// parseIDParam extracts and parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requireIDParam parses the {id} URL parameter, redirecting with a flash
// message when it is missing or malformed. The second return value is false
// if a redirect was performed.
func requireIDParam(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid ID")
		return 0, false
	}
	return id, true
}

// serviceErrorMessage maps a service error to a user-facing flash message.
// Unknown errors get a generic message so internals never leak to the browser.
func serviceErrorMessage(err error) string {
	var msg string
	switch {
	case errors.Is(err, service.ErrValidation):
		msg = err.Error()
	case errors.Is(err, service.ErrDuplicate):
		msg = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		msg = "Invalid username or password"
	case errors.Is(err, service.ErrAccountBlocked):
		msg = "Your account has been blocked. Contact an administrator."
	case errors.Is(err, service.ErrForbidden):
		msg = "You do not have permission to do that"
	case errors.Is(err, service.ErrNotFound):
		msg = "Record not found"
	default:
		msg = "Something went wrong. Please try again."
	}
	return msg
}
