// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the operator session and owns the keys the
// panel stores in it.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/olegiv/ocms-panel/internal/backend"
)

// Session keys. An operator is authenticated while both KeyAuthToken and
// KeyAuthUser are present.
const (
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
	KeyViewID    = "view_id"
	KeyUILang    = "ui_lang"
)

// New creates a session manager backed by the SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	configure(sm, isDev)
	return sm
}

func configure(sm *scs.SessionManager, isDev bool) {
	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.Name = "panel_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-panel_session"
	}
}

// SetAuth stores the auth token and user, renews the session token and
// assigns a fresh view id.
func SetAuth(ctx context.Context, sm *scs.SessionManager, token string, user backend.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	sm.Put(ctx, KeyAuthToken, token)
	sm.Put(ctx, KeyAuthUser, string(raw))
	sm.Put(ctx, KeyViewID, uuid.NewString())
	return nil
}

// ClearAuth removes both auth keys. The view id is kept so that in-process
// state tied to it can be released by the caller.
func ClearAuth(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, KeyAuthToken)
	sm.Remove(ctx, KeyAuthUser)
}

// Auth returns the stored token and user. ok is false unless both keys are
// present and the user decodes.
func Auth(ctx context.Context, sm *scs.SessionManager) (token string, user backend.User, ok bool) {
	token = sm.GetString(ctx, KeyAuthToken)
	raw := sm.GetString(ctx, KeyAuthUser)
	if token == "" || raw == "" {
		return "", backend.User{}, false
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", backend.User{}, false
	}
	return token, user, true
}

// ViewID returns the id keying the operator's in-process state, creating
// one if the session has none yet.
func ViewID(ctx context.Context, sm *scs.SessionManager) string {
	id := sm.GetString(ctx, KeyViewID)
	if id == "" {
		id = uuid.NewString()
		sm.Put(ctx, KeyViewID, id)
	}
	return id
}
