// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/omtalent/portal-go/internal/auth"
	"github.com/omtalent/portal-go/internal/model"
)

func TestSeedCreatesAdmin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	cfg := SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-password",
	}

	if err := Seed(ctx, db, cfg); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	q := New(db)
	admin, err := q.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("Role = %q, want admin", admin.Role)
	}
	if admin.Status != model.StatusActive {
		t.Errorf("Status = %q, want active", admin.Status)
	}

	// Password must be stored hashed, never in clear
	if admin.PasswordHash == "bootstrap-password" {
		t.Fatal("admin password stored in plaintext")
	}
	valid, err := auth.CheckPassword("bootstrap-password", admin.PasswordHash)
	if err != nil || !valid {
		t.Errorf("seeded password does not verify: valid=%v err=%v", valid, err)
	}
}

func TestSeedSkipsWhenAdminExists(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	cfg := SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-password",
	}

	if err := Seed(ctx, db, cfg); err != nil {
		t.Fatalf("first Seed failed: %v", err)
	}
	if err := Seed(ctx, db, cfg); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	q := New(db)
	count, err := q.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		t.Fatalf("CountUsersByRole failed: %v", err)
	}
	if count != 1 {
		t.Errorf("admin count = %d, want 1", count)
	}
}

func TestSeedRefusesTakenUsername(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	createUser(t, q, "admin", "student@example.com", model.RoleStudent)

	err := Seed(ctx, db, SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-password",
	})
	if err == nil {
		t.Fatal("Seed silently shadowed an existing student account")
	}
}
