// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/session"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

// withSession runs setup inside a loaded session before next.
func withSession(sm *scs.SessionManager, setup func(ctx context.Context), next http.Handler) http.Handler {
	return sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if setup != nil {
			setup(r.Context())
		}
		next.ServeHTTP(w, r)
	}))
}

func TestAuth(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user := backend.User{ID: 1, Username: "admin"}

	tests := []struct {
		name     string
		setup    func(t *testing.T, ctx context.Context, sm *scs.SessionManager)
		htmx     bool
		wantCode int
		wantNext bool
	}{
		{
			name:     "no session",
			wantCode: http.StatusSeeOther,
		},
		{
			name:     "no session htmx",
			htmx:     true,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "token without user",
			setup: func(_ *testing.T, ctx context.Context, sm *scs.SessionManager) {
				sm.Put(ctx, session.KeyAuthToken, "opaque")
			},
			wantCode: http.StatusSeeOther,
		},
		{
			name: "valid opaque token",
			setup: func(t *testing.T, ctx context.Context, sm *scs.SessionManager) {
				require.NoError(t, session.SetAuth(ctx, sm, "opaque", user))
			},
			wantCode: http.StatusOK,
			wantNext: true,
		},
		{
			name: "valid jwt",
			setup: func(t *testing.T, ctx context.Context, sm *scs.SessionManager) {
				require.NoError(t, session.SetAuth(ctx, sm, signedToken(t, now.Add(time.Hour)), user))
			},
			wantCode: http.StatusOK,
			wantNext: true,
		},
		{
			name: "expired jwt",
			setup: func(t *testing.T, ctx context.Context, sm *scs.SessionManager) {
				require.NoError(t, session.SetAuth(ctx, sm, signedToken(t, now.Add(-time.Hour)), user))
			},
			wantCode: http.StatusSeeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := scs.New()
			called := false
			var gotToken, gotView string
			final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotToken = GetToken(r)
				gotView = GetViewID(r)
				u, ok := GetUser(r)
				assert.True(t, ok)
				assert.Equal(t, "admin", u.Username)
			})

			var setup func(ctx context.Context)
			if tt.setup != nil {
				setup = func(ctx context.Context) { tt.setup(t, ctx, sm) }
			}
			h := withSession(sm, setup, authWithClock(sm, func() time.Time { return now })(final))

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantNext, called)
			if tt.wantNext {
				assert.NotEmpty(t, gotToken)
				assert.NotEmpty(t, gotView)
				return
			}
			if tt.htmx {
				assert.Equal(t, LoginPath, rec.Header().Get("HX-Redirect"))
			} else {
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAuthExpiredClearsSession(t *testing.T) {
	sm := scs.New()
	now := time.Now()
	var stillAuthed bool

	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		require.NoError(t, session.SetAuth(ctx, sm, signedToken(t, now.Add(-time.Hour)), backend.User{ID: 1}))
		authWithClock(sm, func() time.Time { return now })(http.NotFoundHandler()).ServeHTTP(w, r)
		_, _, stillAuthed = session.Auth(ctx, sm)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.False(t, stillAuthed)
}

func TestIsHTMXAndVary(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, IsHTMX(req))
	req.Header.Set("HX-Request", "true")
	assert.True(t, IsHTMX(req))

	rec := httptest.NewRecorder()
	Vary(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, "HX-Request", rec.Header().Get("Vary"))
}

func TestUILanguage(t *testing.T) {
	sm := scs.New()
	var got string
	h := sm.LoadAndSave(UILanguage(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUILang(r)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en", got)

	req = httptest.NewRequest(http.MethodGet, "/?ui=RU", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "ru", got)

	// the choice is remembered by the session
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ru", got)

	assert.Equal(t, "en", GetUILang(httptest.NewRequest(http.MethodGet, "/", nil)))
}
