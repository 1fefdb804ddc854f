// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/ocms-panel/internal/render"
)

// htmx client events.
const (
	eventToast          = "showToast"
	eventPreviewRefresh = "preview-refresh"
)

// triggers collects the client events of one htmx response.
type triggers map[string]any

func (t triggers) toast(message, toastType string) triggers {
	t[eventToast] = map[string]string{"message": message, "type": toastType}
	return t
}

func (t triggers) previewRefresh(token int64, url string) triggers {
	t[eventPreviewRefresh] = map[string]any{"token": token, "url": url}
	return t
}

// write sets the HX-Trigger header. It must run before the body is written.
func (t triggers) write(w http.ResponseWriter) {
	if len(t) == 0 {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(raw))
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}
