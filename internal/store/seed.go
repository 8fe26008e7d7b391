// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/omtalent/portal-go/internal/auth"
	"github.com/omtalent/portal-go/internal/model"
)

// SeedConfig holds the admin bootstrap credentials. Earlier iterations of the
// portal granted admin access to a hardcoded credential pair checked at login;
// seeding a real, hashed account removes that path entirely.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Seed creates the initial admin account if no admin exists yet.
func Seed(ctx context.Context, db *sql.DB, cfg SeedConfig) error {
	queries := New(db)

	count, err := queries.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if count > 0 {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}

	// Refuse to silently shadow an existing student account
	if _, err := queries.GetUserByUsername(ctx, cfg.AdminUsername); err == nil {
		return fmt.Errorf("cannot seed admin: username %q is already taken", cfg.AdminUsername)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin username: %w", err)
	}

	passwordHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		FirstName:    "Portal",
		Surname:      "Administrator",
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
		"email", user.Email,
	)

	return nil
}
