// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/sections"
	"github.com/olegiv/ocms-panel/internal/testutil"
	"github.com/olegiv/ocms-panel/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<html lang="{{.Lang}}"><title>{{.Title}}</title>{{if .Flash}}<p class="flash {{.FlashType}}">{{.Flash}}</p>{{end}}{{template "body" .}}</html>{{end}}`)},
		"layouts/admin.html":   {Data: []byte(`{{define "body"}}<main>{{template "content" .}}</main>{{end}}`)},
		"partials/hello.html":  {Data: []byte(`{{define "hello"}}<b>hello {{.}}</b>{{end}}`)},
		"admin/dashboard.html": {Data: []byte(`{{define "content"}}{{template "hello" .UserName}}{{end}}`)},
		"auth/login.html":      {Data: []byte(`{{define "body"}}<form id="login"></form>{{end}}`)},
	}
}

func testRequest(t *testing.T, sm *scs.SessionManager) *http.Request {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRender(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), "admin/dashboard", TemplateData{
		Title:    "Dashboard",
		UserName: "Ann",
	})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	doc := testutil.ParseHTML(t, w.Body.Bytes())
	require.Equal(t, "hello Ann", doc.Find("main b").Text())
	lang, _ := doc.Find("html").Attr("lang")
	require.Equal(t, "en", lang)
}

func TestRenderAuthPageHasNoAdminLayout(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), "auth/login", TemplateData{}))

	doc := testutil.ParseHTML(t, w.Body.Bytes())
	require.Equal(t, 1, doc.Find("form#login").Length())
	require.Equal(t, 0, doc.Find("main").Length())
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), "admin/missing", TemplateData{})
	require.Error(t, err)
	require.Zero(t, w.Body.Len())
	require.False(t, r.Has("admin/missing"))
	require.True(t, r.Has("admin/dashboard"))
}

func TestRenderStatus(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.RenderStatus(w, httptest.NewRequest(http.MethodGet, "/", nil),
		http.StatusNotFound, "admin/dashboard", TemplateData{}))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlashIsShownOnce(t *testing.T) {
	sm := scs.New()
	r, err := New(Config{TemplatesFS: testFS(), SessionManager: sm})
	require.NoError(t, err)

	req := testRequest(t, sm)
	r.SetFlash(req, "Saved", FlashSuccess)

	w := httptest.NewRecorder()
	require.NoError(t, r.Render(w, req, "admin/dashboard", TemplateData{}))
	doc := testutil.ParseHTML(t, w.Body.Bytes())
	require.Equal(t, "Saved", doc.Find("p.flash.success").Text())

	w = httptest.NewRecorder()
	require.NoError(t, r.Render(w, req, "admin/dashboard", TemplateData{}))
	require.NotContains(t, w.Body.String(), "Saved")
}

func TestRenderPartial(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.RenderPartial(w, http.StatusUnprocessableEntity, "hello", "<world>"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "<b>hello &lt;world&gt;</b>", w.Body.String())

	require.Error(t, r.RenderPartial(httptest.NewRecorder(), http.StatusOK, "nope", nil))
}

func TestTemplateFuncs(t *testing.T) {
	funcs := templateFuncs()

	dict := funcs["dict"].(func(...any) (map[string]any, error))
	m, err := dict("a", 1, "b", "x")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 1, "b": "x"}, m)
	_, err = dict("a")
	require.Error(t, err)
	_, err = dict(1, 2)
	require.Error(t, err)

	isKind := funcs["isKind"].(func(sections.FieldKind, string) bool)
	require.True(t, isKind(sections.KindMarkdown, "markdown"))
	require.False(t, isKind(sections.KindText, "list"))
}

// sectionPanel mirrors the fields the section partial reads.
type sectionPanel struct {
	Lang         string
	Form         sections.FormView
	Languages    []backend.Language
	LangID       int64
	FromDefaults bool
	LoadFailed   bool
	Invalid      bool
}

func TestWebTemplatesRenderSectionPanel(t *testing.T) {
	tfs, err := web.TemplatesFS()
	require.NoError(t, err)
	r, err := New(Config{TemplatesFS: tfs})
	require.NoError(t, err)

	for _, name := range []string{"admin/dashboard", "admin/page", "admin/gallery", "admin/settings", "admin/error", "auth/login"} {
		require.True(t, r.Has(name), name)
	}

	sec, ok := sections.Lookup(sections.AboutHero)
	require.True(t, ok)
	content := sections.Defaults(sections.AboutHero)
	errs := sections.Errors{"title": sections.MsgRequired}

	w := httptest.NewRecorder()
	require.NoError(t, r.RenderPartial(w, http.StatusOK, "section_panel", sectionPanel{
		Lang:      "en",
		Form:      sections.NewFormView(sec, content, errs),
		Languages: []backend.Language{{ID: 1, Name: "English", Code: "en"}, {ID: 2, Name: "Русский", Code: "ru"}},
		LangID:    2,
		Invalid:   true,
	}))

	doc := testutil.ParseHTML(t, w.Body.Bytes())
	panel := doc.Find("section#section-20")
	require.Equal(t, 1, panel.Length())

	selected := panel.Find(`.lang-tab[aria-selected="true"]`)
	require.Equal(t, "Русский", strings.TrimSpace(selected.Text()))

	langID, _ := panel.Find(`input[name="lang_id"]`).Attr("value")
	require.Equal(t, "2", langID)

	require.Equal(t, 1, panel.Find(".field.has-error").Length())
	require.Equal(t, "validation.required", strings.TrimSpace(panel.Find("#about-hero-title-error").Text()))

	rows := panel.Find(".list-row")
	require.Equal(t, len(content["stats"].([]any))+1, rows.Length())
	require.Equal(t, 1, panel.Find(".list-row.blank").Length())
	require.Equal(t, 1, panel.Find(`input[name="stats[0][label]"]`).Length())
	require.Equal(t, 1, panel.Find(`input[name="stats[0][_remove]"]`).Length())
}
