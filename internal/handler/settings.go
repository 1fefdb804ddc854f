// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/model"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/sections"
	"github.com/olegiv/ocms-panel/internal/service"
)

// ConstantStore reads and writes backend constants.
type ConstantStore interface {
	GetConstant(ctx context.Context, token, key string) (string, error)
	SetConstant(ctx context.Context, token, key, value string) error
}

// ActivityRecorder stores activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, a service.Activity) error
}

// settingFields lists the editable constants with their label keys.
var settingFields = []struct {
	key   string
	label string
}{
	{backend.ConstantCVEmail, "settings.cv_email"},
	{backend.ConstantUserDataEmail, "settings.user_data_email"},
}

// SettingsHandler edits the notification email addresses.
type SettingsHandler struct {
	Deps
	constants ConstantStore
	recorder  ActivityRecorder
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(d Deps, c ConstantStore, rec ActivityRecorder) *SettingsHandler {
	return &SettingsHandler{Deps: d, constants: c, recorder: rec}
}

// SettingField is one input of the settings form.
type SettingField struct {
	Name  string
	Label string
	Value string
	Error string
}

// SettingsData is the settings page.
type SettingsData struct {
	Fields     []SettingField
	LoadFailed bool
}

func (h *SettingsHandler) renderSettings(w http.ResponseWriter, r *http.Request, status int, data SettingsData) {
	lang := middleware.GetUILang(r)
	h.render(w, r, status, "admin/settings", h.page(r, i18n.T(lang, "settings.title"), RouteSettings, data))
}

// Form handles GET /admin/settings.
func (h *SettingsHandler) Form(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r)
	data := SettingsData{}

	for _, f := range settingFields {
		value, err := h.constants.GetConstant(r.Context(), token, f.key)
		if err != nil {
			if h.unauthorized(w, r, err) {
				return
			}
			h.Logger.Error("failed to read constant", "key", f.key, "error", err)
			data.LoadFailed = true
		}
		data.Fields = append(data.Fields, SettingField{Name: f.key, Label: f.label, Value: value})
	}
	h.renderSettings(w, r, http.StatusOK, data)
}

// Save handles POST /admin/settings. Both addresses must be valid before
// anything is written; each save answers with exactly one toast.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := SettingsData{}
	invalid := false
	for _, f := range settingFields {
		field := SettingField{Name: f.key, Label: f.label, Value: strings.TrimSpace(r.PostForm.Get(f.key))}
		switch {
		case field.Value == "":
			field.Error = sections.MsgRequired
		case !sections.ValidEmail(field.Value):
			field.Error = sections.MsgEmail
		}
		invalid = invalid || field.Error != ""
		data.Fields = append(data.Fields, field)
	}

	if invalid {
		h.respond(w, r, data, http.StatusUnprocessableEntity, i18n.T(lang, "section.invalid"), render.FlashError)
		return
	}

	token := middleware.GetToken(r)
	for _, field := range data.Fields {
		if err := h.constants.SetConstant(r.Context(), token, field.Name, field.Value); err != nil {
			if h.unauthorized(w, r, err) {
				return
			}
			h.Logger.Error("failed to save constant", "key", field.Name, "error", err)
			h.respond(w, r, data, http.StatusBadGateway, i18n.T(lang, "settings.save_failed"), render.FlashError)
			return
		}
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), service.Activity{
			Action: model.ActionSettingsSave,
			Target: "notification emails",
			Actor:  actor(r),
		}); err != nil {
			h.Logger.Warn("failed to record settings save", "error", err)
		}
	}

	if !middleware.IsHTMX(r) {
		flashSuccess(w, r, h.Renderer, RouteSettings, i18n.T(lang, "settings.saved"))
		return
	}
	h.respond(w, r, data, http.StatusOK, i18n.T(lang, "settings.saved"), render.FlashSuccess)
}

// respond re-renders the form with one message: a toast for htmx, the
// page flash otherwise. htmx only swaps 2xx responses, so it always gets 200.
func (h *SettingsHandler) respond(w http.ResponseWriter, r *http.Request, data SettingsData, status int, message, kind string) {
	if middleware.IsHTMX(r) {
		triggers{}.toast(message, kind).write(w)
		h.renderSettings(w, r, http.StatusOK, data)
		return
	}
	lang := middleware.GetUILang(r)
	td := h.page(r, i18n.T(lang, "settings.title"), RouteSettings, data)
	td.Flash, td.FlashType = message, kind
	h.render(w, r, status, "admin/settings", td)
}
