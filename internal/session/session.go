// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session store and defines the
// typed identity record kept for authenticated users.
package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// KeyIdentity is the session key under which the identity record is stored.
const KeyIdentity = "identity"

// Identity is the typed session record for an authenticated user. Earlier
// iterations of the portal scattered ad hoc keys ("user_id", "role") through
// the session; a single typed record replaces them.
type Identity struct {
	UserID   int64
	Role     string
	IssuedAt time.Time
}

func init() {
	// scs encodes session values with gob
	gob.Register(Identity{})
}

// New creates a new session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// PutIdentity stores the identity record in the current session.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, id Identity) {
	sm.Put(ctx, KeyIdentity, id)
}

// GetIdentity retrieves the identity record from the current session.
// The second return value is false for anonymous sessions.
func GetIdentity(ctx context.Context, sm *scs.SessionManager) (Identity, bool) {
	id, ok := sm.Get(ctx, KeyIdentity).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}
