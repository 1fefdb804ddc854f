// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/session"
	"github.com/olegiv/ocms-panel/internal/util"
)

// Authenticator exchanges operator credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	Deps
	backend         Authenticator
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(d Deps, b Authenticator, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{Deps: d, backend: b, loginProtection: lp}
}

// LoginData is the login form.
type LoginData struct {
	Email string
	Error string
}

// LoginForm renders the login page. Signed-in operators go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := session.Auth(r.Context(), h.Sessions); ok {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginData{})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	lang := middleware.GetUILang(r)
	h.render(w, r, status, "auth/login", render.TemplateData{
		Title: i18n.T(lang, "auth.login_title"),
		Lang:  lang,
		Data:  data,
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: i18n.T(lang, "auth.invalid_credentials")})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	fail := func(status int, key string) {
		h.renderLogin(w, r, status, LoginData{Email: email, Error: i18n.T(lang, key)})
	}

	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, "auth.invalid_credentials")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.Logger.Warn("login attempt on locked account",
				"category", "auth", "email", email, "ip", util.ClientIP(r), "remaining", remaining.String())
			fail(http.StatusTooManyRequests, "auth.too_many_attempts")
			return
		}
	}

	result, err := h.backend.Login(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, backend.ErrInvalidCredentials) {
			h.Logger.Error("login request failed", "category", "auth", "error", err)
			fail(http.StatusBadGateway, "auth.backend_unavailable")
			return
		}
		h.Logger.Warn("login failed", "category", "auth", "email", email, "ip", util.ClientIP(r))
		if h.loginProtection != nil {
			if locked, _ := h.loginProtection.RecordFailedAttempt(email); locked {
				fail(http.StatusTooManyRequests, "auth.too_many_attempts")
				return
			}
		}
		fail(http.StatusUnauthorized, "auth.invalid_credentials")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// A previous view of this browser must not leak into the new login.
	h.Views.Drop(h.Sessions.GetString(r.Context(), session.KeyViewID))

	if err := session.SetAuth(r.Context(), h.Sessions, result.Token, result.User); err != nil {
		logAndInternalError(w, h.Logger, "failed to store session", "error", err)
		return
	}

	h.Logger.Info("operator signed in", "actor", result.User.DisplayName())
	http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Views.Drop(h.Sessions.GetString(ctx, session.KeyViewID))
	session.ClearAuth(ctx, h.Sessions)
	h.Sessions.Remove(ctx, session.KeyViewID)
	if err := h.Sessions.RenewToken(ctx); err != nil {
		h.Logger.Error("failed to renew session token", "error", err)
	}
	flashSuccess(w, r, h.Renderer, RouteLogin, i18n.T(middleware.GetUILang(r), "auth.logged_out"))
}
