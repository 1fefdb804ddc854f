// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(RouteLogin, false)
	assertStatus(t, w.Code, http.StatusOK)

	doc := env.doc(w)
	assert.Equal(t, 1, doc.Find(`form[action="/login"] input[name="email"]`).Length())
	assert.Equal(t, 0, doc.Find("nav").Length(), "login page has no admin navigation")
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()

	w := env.get(RouteDashboard, false)
	assertStatus(t, w.Code, http.StatusOK)
	assert.NotEmpty(t, env.viewKey())

	// already signed in
	w = env.get(RouteLogin, false)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, RouteDashboard, w.Header().Get("Location"))
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		status   int
		message  string
		keepMail bool
	}{
		{
			name:     "wrong password",
			form:     url.Values{"email": {testEmail}, "password": {"nope"}},
			status:   http.StatusUnauthorized,
			message:  "Invalid email or password",
			keepMail: true,
		},
		{
			name:    "empty fields",
			form:    url.Values{"email": {""}, "password": {""}},
			status:  http.StatusUnprocessableEntity,
			message: "Invalid email or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.post(RouteLogin, tt.form, false)
			assertStatus(t, w.Code, tt.status)

			doc := env.doc(w)
			assert.Equal(t, tt.message, strings.TrimSpace(doc.Find(".flash-error").Text()))
			if tt.keepMail {
				val, _ := doc.Find("#email").Attr("value")
				assert.Equal(t, testEmail, val)
			}

			w = env.get(RouteDashboard, false)
			assertStatus(t, w.Code, http.StatusSeeOther)
		})
	}
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	bad := url.Values{"email": {testEmail}, "password": {"nope"}}

	var last int
	for range 5 {
		last = env.post(RouteLogin, bad, false).Code
	}
	assertStatus(t, last, http.StatusTooManyRequests)

	// even the right password is refused while locked
	w := env.post(RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}}, false)
	assertStatus(t, w.Code, http.StatusTooManyRequests)
}

func TestAdminRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/admin/pages/about", false)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, RouteLogin, w.Header().Get("Location"))

	w = env.get("/admin/sections/20?lang=1", true)
	assertStatus(t, w.Code, http.StatusUnauthorized)
	assert.Equal(t, RouteLogin, w.Header().Get("HX-Redirect"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()
	viewKey := env.viewKey()
	env.get("/admin/pages/about", false)
	require.Equal(t, 1, env.views.Registries.Len())

	w := env.post("/logout", nil, false)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, RouteLogin, w.Header().Get("Location"))
	assert.Equal(t, "You have been logged out", env.flash(w))

	_, ok := env.views.Registries.Lookup(viewKey, "about")
	assert.False(t, ok, "view state released on logout")

	w = env.get(RouteDashboard, false)
	assertStatus(t, w.Code, http.StatusSeeOther)
}

func TestBackendUnauthorizedSignsOut(t *testing.T) {
	t.Run("page load", func(t *testing.T) {
		env := newTestEnv(t)
		env.signIn()
		env.backend.unauthorized = true

		w := env.get("/admin/pages/about", false)
		assertStatus(t, w.Code, http.StatusSeeOther)
		assert.Equal(t, RouteLogin, w.Header().Get("Location"))
		assert.Equal(t, "Your session has expired. Please sign in again.", env.flash(w))

		env.backend.unauthorized = false
		w = env.get(RouteDashboard, false)
		assertStatus(t, w.Code, http.StatusSeeOther)
	})

	t.Run("htmx save", func(t *testing.T) {
		env := newTestEnv(t)
		env.signIn()
		env.get("/admin/pages/about", false)
		viewKey := env.viewKey()
		env.backend.unauthorized = true

		w := env.post("/admin/sections/20", aboutHeroForm(), true)
		assertStatus(t, w.Code, http.StatusUnauthorized)
		assert.Equal(t, RouteLogin, w.Header().Get("HX-Redirect"))

		_, ok := env.views.Registries.Lookup(viewKey, "about")
		assert.False(t, ok, "view state released")

		env.backend.unauthorized = false
		w = env.get(RouteDashboard, false)
		assertStatus(t, w.Code, http.StatusSeeOther)
	})
}
