// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the panel's HTTP handlers.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/editor"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/layout"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/registry"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/sections"
	"github.com/olegiv/ocms-panel/internal/service"
	"github.com/olegiv/ocms-panel/internal/session"
)

// Routes used in redirects and navigation.
const (
	RouteLogin         = "/login"
	RouteDashboard     = "/admin"
	RouteGallery       = "/admin/gallery"
	RouteSettings      = "/admin/settings"
	RoutePreviewSocket = "/admin/preview/ws"
	routePages         = "/admin/pages/"
)

// Deps are shared by all handlers.
type Deps struct {
	Renderer *render.Renderer
	Sessions *scs.SessionManager
	Views    *ViewState
	Logger   *slog.Logger
}

// ViewState holds the in-process state of every operator view.
type ViewState struct {
	Registries *registry.Store
	Layouts    *layout.Manager
	Preview    *preview.Hub
	Editor     *editor.Editor
}

// Drop releases everything held for viewKey.
func (v *ViewState) Drop(viewKey string) {
	if v == nil || viewKey == "" {
		return
	}
	v.Registries.Drop(viewKey)
	v.Layouts.Drop(viewKey)
	v.Preview.Drop(viewKey)
	v.Editor.Forget(viewKey)
}

// page builds the template data shared by admin pages.
func (d Deps) page(r *http.Request, title, active string, data any) render.TemplateData {
	lang := middleware.GetUILang(r)
	td := render.TemplateData{
		Title: title,
		Lang:  lang,
		Nav:   navItems(lang, active),
		Data:  data,
	}
	if user, ok := middleware.GetUser(r); ok {
		td.UserName = user.DisplayName()
	}
	if viewKey := middleware.GetViewID(r); viewKey != "" && d.Views != nil {
		td.ScrollLocked = d.Views.Layouts.ScrollLocked(viewKey)
	}
	return td
}

func navItems(lang, active string) []render.NavItem {
	items := []render.NavItem{{
		Label:  i18n.T(lang, "nav.dashboard"),
		URL:    RouteDashboard,
		Active: active == RouteDashboard,
	}}
	for _, p := range sections.Pages() {
		url := routePages + string(p.Page)
		items = append(items, render.NavItem{Label: i18n.T(lang, p.TitleKey), URL: url, Active: active == url})
	}
	return append(items,
		render.NavItem{Label: i18n.T(lang, "nav.gallery"), URL: RouteGallery, Active: active == RouteGallery},
		render.NavItem{Label: i18n.T(lang, "nav.settings"), URL: RouteSettings, Active: active == RouteSettings},
	)
}

// render renders a full page, logging and answering 500 on failure.
func (d Deps) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := d.Renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, d.Logger, "failed to render page", "template", name, "error", err)
	}
}

// partial renders an htmx fragment, logging and answering 500 on failure.
func (d Deps) partial(w http.ResponseWriter, status int, name string, data any) {
	if err := d.Renderer.RenderPartial(w, status, name, data); err != nil {
		logAndInternalError(w, d.Logger, "failed to render partial", "partial", name, "error", err)
	}
}

// unauthorized handles a backend 401: the session is cleared, the view's
// state released and the browser sent to the login page. It reports whether
// err was a 401.
func (d Deps) unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	ctx := r.Context()
	d.Logger.Info("backend rejected token, signing out", "path", r.URL.Path)
	d.Views.Drop(middleware.GetViewID(r))
	session.ClearAuth(ctx, d.Sessions)
	d.Renderer.SetFlash(r, i18n.T(middleware.GetUILang(r), "auth.session_expired"), render.FlashInfo)
	middleware.RedirectToLogin(w, r)
	return true
}

// actor identifies the operator for activity records.
func actor(r *http.Request) service.Actor {
	a := service.Actor{UserAgent: r.UserAgent()}
	if user, ok := middleware.GetUser(r); ok {
		a.Name = user.DisplayName()
	}
	return a
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int, logMsg string, args ...any) {
	logger.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logger *slog.Logger, logMsg string, args ...any) {
	logAndHTTPError(w, logger, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}
