// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Message, Announcement and audit event structures.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Account statuses.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleStudent, RoleAdmin}

// ValidStatuses contains all valid account statuses.
var ValidStatuses = []string{StatusActive, StatusBlocked}

// User represents a portal account. Students self-register; admins are seeded.
type User struct {
	ID           int64          `json:"id"`
	FirstName    string         `json:"first_name"`
	Surname      string         `json:"surname"`
	Username     string         `json:"username"`
	IDNumber     sql.NullString `json:"id_number,omitempty"`
	Email        string         `json:"email"`
	DOB          sql.NullString `json:"dob,omitempty"`
	Phone        sql.NullString `json:"phone,omitempty"`
	Gender       sql.NullString `json:"gender,omitempty"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	Role         string         `json:"role"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	LastLoginAt  sql.NullTime   `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBlocked returns true if the account has been blocked by an admin.
func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.Surname
}

// IsValidStatus checks if a status is a member of the closed status enumeration.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidRole checks if a role is a member of the closed role enumeration.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
