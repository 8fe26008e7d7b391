// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/omtalent/portal-go/internal/middleware"
	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/render"
	"github.com/omtalent/portal-go/internal/service"
	"github.com/omtalent/portal-go/internal/session"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	accounts        *service.AccountService
	events          *service.EventService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		accounts:        service.NewAccountService(db),
		events:          service.NewEventService(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.GetIdentity(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title: "Register",
	}); err != nil {
		logAndInternalError(w, "failed to render registration page", "error", err)
	}
}

// Register handles the registration form submission. A successful
// registration redirects to the login page; validation and duplicate
// failures redirect back to the form with a flash message.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterParams{
		FirstName: r.FormValue("first_name"),
		Surname:   r.FormValue("surname"),
		Username:  r.FormValue("username"),
		IDNumber:  r.FormValue("id_number"),
		Email:     r.FormValue("email"),
		DOB:       r.FormValue("dob"),
		Phone:     r.FormValue("phone"),
		Gender:    r.FormValue("gender"),
		Password:  r.FormValue("password"),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrDuplicate) {
			flashError(w, r, h.renderer, redirectRegister, serviceErrorMessage(err))
			return
		}
		slog.Error("registration failed", "error", err)
		flashError(w, r, h.renderer, redirectRegister, serviceErrorMessage(err))
		return
	}

	userID := user.ID
	_ = h.events.LogAccountEvent(r.Context(), model.EventLevelInfo, "User registered",
		&userID, middleware.GetRequestID(r.Context()), map[string]any{"username": user.Username})

	flashSuccess(w, r, h.renderer, redirectLogin, "Registration successful. Please log in.")
}

// LoginForm renders the login page.
// Already-authenticated users are redirected to their home screen.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.GetIdentity(r.Context(), h.sessionManager); ok {
		if id.Role == RoleAdmin {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		} else {
			http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		}
		return
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Login",
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	requestID := middleware.GetRequestID(r.Context())

	if username == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Username and password are required")
		return
	}

	// Check account lockout before touching the database
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on locked account",
				nil, requestID, map[string]any{"username": username})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrAccountBlocked) {
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on blocked account",
				nil, requestID, map[string]any{"username": username})
			flashError(w, r, h.renderer, redirectLogin, serviceErrorMessage(err))
			return
		}

		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("login error", "error", err)
		}

		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed",
			nil, requestID, map[string]any{"username": username})

		// Record failed attempt even for non-existent users to prevent enumeration
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
				flashError(w, r, h.renderer, redirectLogin,
					fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
				return
			}
			remaining := h.loginProtection.GetRemainingAttempts(username)
			if remaining <= 3 && remaining > 0 {
				flashError(w, r, h.renderer, redirectLogin,
					fmt.Sprintf("Invalid username or password. %d attempts remaining.", remaining))
				return
			}
		}

		flashError(w, r, h.renderer, redirectLogin, "Invalid username or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	session.PutIdentity(r.Context(), h.sessionManager, session.Identity{
		UserID:   user.ID,
		Role:     user.Role,
		IssuedAt: time.Now(),
	})

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	userID := user.ID
	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in",
		&userID, requestID, map[string]any{"username": user.Username})

	h.renderer.SetFlash(r, "Welcome back, "+user.FullName(), render.FlashSuccess)

	if user.IsAdmin() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
	}
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if id, ok := session.GetIdentity(r.Context(), h.sessionManager); ok {
		userID = id.UserID
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out",
			&userID, middleware.GetRequestID(r.Context()), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)

	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been logged out.", render.FlashInfo)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
