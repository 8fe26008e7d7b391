// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer: account management,
// messaging and announcements, and the audit event trail.
package service

import "errors"

// Error kinds returned by the service layer. Handlers convert these into
// flash messages and redirects; check with errors.Is.
var (
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique-constraint conflict (username, email, id number).
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidCredentials indicates an unknown username or a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBlocked indicates a login attempt on a blocked account.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrForbidden indicates an admin-only operation attempted without admin role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsDuplicate reports whether err is a unique-constraint conflict.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// IsInvalidCredentials reports whether err is a credential mismatch.
func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }

// IsAccountBlocked reports whether err is a blocked-account login rejection.
func IsAccountBlocked(err error) bool { return errors.Is(err, ErrAccountBlocked) }

// IsForbidden reports whether err is a role-based denial.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
