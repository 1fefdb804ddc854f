// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"

	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/sections"
	"github.com/olegiv/ocms-panel/internal/store"
)

const recentActivityLimit = 15

// ActivityReader lists recorded operator changes.
type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]store.Activity, error)
	CountToday(ctx context.Context) (int64, error)
}

// DashboardHandler renders the landing page.
type DashboardHandler struct {
	Deps
	activity ActivityReader
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(d Deps, a ActivityReader) *DashboardHandler {
	return &DashboardHandler{Deps: d, activity: a}
}

// PageCard links to a page editor.
type PageCard struct {
	Title    string
	URL      string
	Sections int
}

// DashboardData is the dashboard view.
type DashboardData struct {
	Pages      []PageCard
	Activity   []store.Activity
	SavesToday int64
}

// Dashboard handles GET /admin.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	data := DashboardData{}

	for _, p := range sections.Pages() {
		data.Pages = append(data.Pages, PageCard{
			Title:    i18n.T(lang, p.TitleKey),
			URL:      routePages + string(p.Page),
			Sections: len(sections.ForPage(p.Page)),
		})
	}

	var err error
	if data.Activity, err = h.activity.Recent(r.Context(), recentActivityLimit); err != nil {
		h.Logger.Error("failed to list activity", "error", err)
	}
	if data.SavesToday, err = h.activity.CountToday(r.Context()); err != nil {
		h.Logger.Error("failed to count activity", "error", err)
	}

	h.render(w, r, http.StatusOK, "admin/dashboard",
		h.page(r, i18n.T(lang, "nav.dashboard"), RouteDashboard, data))
}
