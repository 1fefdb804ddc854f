// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/session"
)

// ContextKeyUILang holds the language of the panel's own interface.
const ContextKeyUILang ContextKey = "ui_lang"

// UILanguage picks the interface language: an explicit ?ui=xx (remembered in
// the session), then the session, then Accept-Language.
func UILanguage(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			lang := ""
			if q := strings.ToLower(r.URL.Query().Get("ui")); i18n.IsSupported(q) {
				lang = q
				sm.Put(ctx, session.KeyUILang, q)
			}
			if lang == "" {
				if s := sm.GetString(ctx, session.KeyUILang); i18n.IsSupported(s) {
					lang = s
				}
			}
			if lang == "" {
				lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
			}

			ctx = context.WithValue(ctx, ContextKeyUILang, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUILang returns the interface language, defaulting to English.
func GetUILang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyUILang).(string); ok && lang != "" {
		return lang
	}
	return "en"
}
