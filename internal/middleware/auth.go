// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication, request
// context and response hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-panel/internal/auth"
	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for the authenticated operator.
const (
	ContextKeyUser   ContextKey = "user"
	ContextKeyToken  ContextKey = "token"
	ContextKeyViewID ContextKey = "view_id"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// Auth creates middleware that requires a stored token and user. A missing
// pair or an expired token clears the session and redirects to the login
// page.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return authWithClock(sm, time.Now)
}

func authWithClock(sm *scs.SessionManager, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, user, ok := session.Auth(ctx, sm)
			if !ok {
				RedirectToLogin(w, r)
				return
			}
			if auth.Expired(token, now()) {
				slog.Info("session token expired", "actor", user.DisplayName())
				session.ClearAuth(ctx, sm)
				RedirectToLogin(w, r)
				return
			}

			ctx = context.WithValue(ctx, ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyToken, token)
			ctx = context.WithValue(ctx, ContextKeyViewID, session.ViewID(ctx, sm))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadSession reads the session into the request context without wrapping
// the response writer. Routes that hijack the connection use it in place of
// LoadAndSave; changes made to the session are not saved.
func LoadSession(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = c.Value
			}
			ctx, err := sm.Load(r.Context(), token)
			if err != nil {
				slog.Error("failed to load session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectToLogin sends the browser to the login page. htmx requests get an
// HX-Redirect header so the whole page navigates instead of swapping a
// fragment.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", LoginPath)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// GetUser returns the operator stored by Auth.
func GetUser(r *http.Request) (backend.User, bool) {
	user, ok := r.Context().Value(ContextKeyUser).(backend.User)
	return user, ok
}

// GetToken returns the backend token stored by Auth.
func GetToken(r *http.Request) string {
	token, _ := r.Context().Value(ContextKeyToken).(string)
	return token
}

// GetViewID returns the per-login view key stored by Auth.
func GetViewID(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyViewID).(string)
	return id
}
