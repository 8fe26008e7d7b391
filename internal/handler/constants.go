// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the landing page.
	RouteRoot = "/"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteDashboard is the student dashboard route.
	RouteDashboard = "/dashboard"
	// RouteAdmin is the admin panel route.
	RouteAdmin = "/admin"
	// RouteToggleStatus blocks or unblocks a student account.
	RouteToggleStatus = "/toggle-status/{id}"
	// RouteDeleteUser removes a student account.
	RouteDeleteUser = "/delete-user/{id}"
	// RouteSendMessage delivers a message to a single student.
	RouteSendMessage = "/admin/send_message"
	// RouteAnnounce publishes a site-wide announcement.
	RouteAnnounce = "/admin/announce"
)

// Redirect targets.
const (
	redirectRoot      = "/"
	redirectRegister  = "/register"
	redirectLogin     = "/login"
	redirectDashboard = "/dashboard"
	redirectAdmin     = "/admin"
)

// User roles - must match model.Role* constants.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)
