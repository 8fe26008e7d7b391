// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "modernc.org/sqlite"
)

func sessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return ctx
}

func TestPutAndGetIdentity(t *testing.T) {
	sm := scs.New()
	ctx := sessionContext(t, sm)

	PutIdentity(ctx, sm, Identity{UserID: 7, Role: "student", IssuedAt: time.Now()})

	id, ok := GetIdentity(ctx, sm)
	if !ok {
		t.Fatal("identity not found after Put")
	}
	if id.UserID != 7 || id.Role != "student" {
		t.Errorf("identity = %+v, want UserID 7, Role student", id)
	}
}

func TestGetIdentityAnonymous(t *testing.T) {
	sm := scs.New()
	ctx := sessionContext(t, sm)

	if _, ok := GetIdentity(ctx, sm); ok {
		t.Error("identity reported for anonymous session")
	}
}

func TestGetIdentityRejectsZeroUserID(t *testing.T) {
	sm := scs.New()
	ctx := sessionContext(t, sm)

	PutIdentity(ctx, sm, Identity{UserID: 0, Role: "student"})

	if _, ok := GetIdentity(ctx, sm); ok {
		t.Error("identity with zero UserID treated as authenticated")
	}
}

func TestNewCookieSettings(t *testing.T) {
	db := testSessionDB(t)

	sm := New(db, false)
	if !sm.Cookie.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if !sm.Cookie.Secure {
		t.Error("production cookie not Secure")
	}

	dev := New(db, true)
	if dev.Cookie.Secure {
		t.Error("dev cookie unexpectedly Secure")
	}
}

func testSessionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE sessions (token TEXT PRIMARY KEY, data BLOB NOT NULL, expiry REAL NOT NULL);`); err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
