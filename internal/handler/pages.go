// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/editor"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/registry"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/sections"
)

// LanguageSource lists the site languages, default first.
type LanguageSource interface {
	All(ctx context.Context, token string) ([]backend.Language, error)
}

// PagesHandler serves the page editors and their section forms.
type PagesHandler struct {
	Deps
	languages   LanguageSource
	previewBase string
}

// NewPagesHandler creates a new PagesHandler. previewBase is the public
// site address shown in the preview frame.
func NewPagesHandler(d Deps, languages LanguageSource, previewBase string) *PagesHandler {
	return &PagesHandler{Deps: d, languages: languages, previewBase: previewBase}
}

// SectionView is one section editor.
type SectionView struct {
	Lang         string
	Form         sections.FormView
	Languages    []backend.Language
	LangID       int64
	FromDefaults bool
	LoadFailed   bool
	Invalid      bool
}

// PageData is a page editor.
type PageData struct {
	Title        string
	Page         string
	Sections     []SectionView
	PreviewURL   string
	PreviewToken int64
	PreviewLang  string
	Layout       LayoutView

	LanguagesFailed bool
}

// Page handles GET /admin/pages/{page}. Arriving on a page starts a fresh
// registry and leaves any fullscreen view.
func (h *PagesHandler) Page(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	info, ok := sections.LookupPage(chi.URLParam(r, "page"))
	if !ok {
		h.notFound(w, r)
		return
	}

	ctx := r.Context()
	token := middleware.GetToken(r)
	viewKey := middleware.GetViewID(r)

	langs, err := h.languages.All(ctx, token)
	langsFailed := err != nil
	if langsFailed {
		if h.unauthorized(w, r, err) {
			return
		}
		h.Logger.Error("failed to list languages", "error", err)
	}

	h.Views.Layouts.Reset(viewKey)
	h.Views.Editor.Forget(viewKey)
	reg := h.Views.Registries.ForPage(viewKey, string(info.Page))
	if len(langs) > 0 {
		reg.SetDefault(langs[0])
	}

	secs := sections.ForPage(info.Page)
	views := make([]SectionView, len(secs))
	loadErrs := make([]error, len(secs))

	var wg sync.WaitGroup
	for i, sec := range secs {
		reg.Register(int(sec.ID), langs, nil)
		state, registered := reg.Get(int(sec.ID))
		if !registered {
			views[i] = h.defaultView(lang, sec, langs, 0, langsFailed)
			continue
		}
		wg.Add(1)
		go func(i int, sec sections.Section, langID int64) {
			defer wg.Done()
			views[i], loadErrs[i] = h.load(ctx, lang, token, viewKey, sec, langs, langID)
		}(i, sec, state.SelectedLangID)
	}
	wg.Wait()

	for _, err := range loadErrs {
		if h.unauthorized(w, r, err) {
			return
		}
	}

	title := i18n.T(lang, info.TitleKey)
	data := PageData{
		Title:        title,
		Page:         string(info.Page),
		Sections:     views,
		PreviewToken: h.Views.Preview.Token(viewKey),
		Layout:       h.layoutView(lang, viewKey),

		LanguagesFailed: langsFailed,
	}
	data.PreviewURL = h.previewURL(info, reg, nil, data.PreviewToken)
	data.PreviewLang = reg.ActiveLanguageName(nil)

	h.render(w, r, http.StatusOK, "admin/page", h.page(r, title, routePages+string(info.Page), data))
}

// load renders a section with its stored content. Failures other than a
// backend 401 fall back to the defaults and are flagged in the view.
func (h *PagesHandler) load(ctx context.Context, lang, token, viewKey string, sec sections.Section, langs []backend.Language, langID int64) (SectionView, error) {
	res, err := h.Views.Editor.Load(ctx, token, viewKey, sec.ID, langID)
	if err != nil {
		if backend.IsUnauthorized(err) {
			return SectionView{}, err
		}
		if !errors.Is(err, editor.ErrStale) {
			h.Logger.Error("failed to load section", "section", sec.Key, "language_id", langID, "error", err)
		}
		return h.defaultView(lang, sec, langs, langID, true), nil
	}
	return SectionView{
		Lang:         lang,
		Form:         sections.NewFormView(sec, res.Content, nil),
		Languages:    langs,
		LangID:       langID,
		FromDefaults: res.FromDefaults,
	}, nil
}

func (h *PagesHandler) defaultView(lang string, sec sections.Section, langs []backend.Language, langID int64, failed bool) SectionView {
	return SectionView{
		Lang:         lang,
		Form:         sections.NewFormView(sec, sections.Defaults(sec.ID), nil),
		Languages:    langs,
		LangID:       langID,
		FromDefaults: true,
		LoadFailed:   failed,
	}
}

// sectionRequest resolves the section and language of a section request.
func (h *PagesHandler) sectionRequest(w http.ResponseWriter, r *http.Request, rawLang string) (sections.Section, backend.Language, []backend.Language, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return sections.Section{}, backend.Language{}, nil, false
	}
	sec, ok := sections.Lookup(sections.ID(id))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return sections.Section{}, backend.Language{}, nil, false
	}

	langs, err := h.languages.All(r.Context(), middleware.GetToken(r))
	if err != nil {
		if !h.unauthorized(w, r, err) {
			logAndHTTPError(w, h.Logger, "Bad Gateway", http.StatusBadGateway, "failed to list languages", "error", err)
		}
		return sections.Section{}, backend.Language{}, nil, false
	}

	langID, err := strconv.ParseInt(rawLang, 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return sections.Section{}, backend.Language{}, nil, false
	}
	for _, l := range langs {
		if l.ID == langID {
			return sec, l, langs, true
		}
	}
	http.Error(w, "Bad Request", http.StatusBadRequest)
	return sections.Section{}, backend.Language{}, nil, false
}

// Section handles GET /admin/sections/{id}?lang=. It switches one section to
// another language; other sections keep theirs. A response overtaken by a
// newer request for the same section is not swapped in.
func (h *PagesHandler) Section(w http.ResponseWriter, r *http.Request) {
	sec, language, langs, ok := h.sectionRequest(w, r, r.URL.Query().Get("lang"))
	if !ok {
		return
	}
	lang := middleware.GetUILang(r)
	viewKey := middleware.GetViewID(r)

	reg := h.Views.Registries.ForFragment(viewKey, string(sec.Page))
	reg.Update(int(sec.ID), language)

	res, err := h.Views.Editor.Load(r.Context(), middleware.GetToken(r), viewKey, sec.ID, language.ID)
	if errors.Is(err, editor.ErrStale) {
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil && h.unauthorized(w, r, err) {
		return
	}

	// The preview follows the language of the section shown fullscreen.
	t := triggers{}
	if snap := h.Views.Layouts.For(viewKey).Snapshot(); snap.Section == sec.Key {
		info, _ := sections.LookupPage(string(sec.Page))
		signal := h.Views.Preview.SignalFor(viewKey)
		signal.Refresh()
		id := int(sec.ID)
		token := signal.Token()
		t.previewRefresh(token, h.previewURL(info, reg, &id, token))
	}

	if err != nil {
		h.Logger.Error("failed to load section", "section", sec.Key, "language_id", language.ID, "error", err)
		t.toast(i18n.T(lang, "section.load_failed"), render.FlashError).write(w)
		h.partial(w, http.StatusOK, "section_panel", h.defaultView(lang, sec, langs, language.ID, true))
		return
	}

	t.write(w)
	h.partial(w, http.StatusOK, "section_panel", SectionView{
		Lang:         lang,
		Form:         sections.NewFormView(sec, res.Content, nil),
		Languages:    langs,
		LangID:       language.ID,
		FromDefaults: res.FromDefaults,
	})
}

// SaveSection handles POST /admin/sections/{id}. Every outcome answers with
// exactly one toast; only a successful save refreshes the preview.
func (h *PagesHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sec, language, langs, ok := h.sectionRequest(w, r, r.PostForm.Get("lang_id"))
	if !ok {
		return
	}
	lang := middleware.GetUILang(r)
	viewKey := middleware.GetViewID(r)
	info, _ := sections.LookupPage(string(sec.Page))
	pageURL := routePages + string(sec.Page)

	reg := h.Views.Registries.ForFragment(viewKey, string(sec.Page))
	if state, ok := reg.Get(int(sec.ID)); !ok || state.SelectedLangID != language.ID {
		reg.Update(int(sec.ID), language)
	}

	signal := h.Views.Preview.SignalFor(viewKey)
	res, errs, err := h.Views.Editor.Save(r.Context(), editor.SaveRequest{
		Token:      middleware.GetToken(r),
		ViewKey:    viewKey,
		Section:    sec.ID,
		LanguageID: language.ID,
		Form:       r.PostForm,
		Actor:      actor(r),
		Preview:    signal,
	})
	if err != nil && h.unauthorized(w, r, err) {
		return
	}

	view := SectionView{
		Lang:      lang,
		Form:      sections.NewFormView(sec, res.Content, errs),
		Languages: langs,
		LangID:    language.ID,
		Invalid:   errs.Any(),
	}

	t := triggers{}
	var message, kind string
	switch {
	case err != nil:
		h.Logger.Error("failed to save section", "section", sec.Key, "language_id", language.ID, "error", err)
		message, kind = i18n.T(lang, "section.save_failed", sec.Title), render.FlashError
	case errs.Any():
		message, kind = i18n.T(lang, "section.invalid"), render.FlashError
	default:
		message, kind = i18n.T(lang, "section.saved", sec.Title), render.FlashSuccess
		id := int(sec.ID)
		token := signal.Token()
		t.previewRefresh(token, h.previewURL(info, reg, &id, token))
	}

	if !middleware.IsHTMX(r) {
		if kind == render.FlashSuccess {
			flashSuccess(w, r, h.Renderer, pageURL, message)
		} else {
			flashError(w, r, h.Renderer, pageURL, message)
		}
		return
	}

	t.toast(message, kind).write(w)
	h.partial(w, http.StatusOK, "section_panel", view)
}

// previewURL builds the preview frame address in the language of sectionID,
// or of the fullscreen section, falling back to the registry's default.
func (h *PagesHandler) previewURL(info sections.PageInfo, reg *registry.Registry, sectionID *int, token int64) string {
	return previewURL(h.previewBase, info, reg, sectionID, token)
}

func previewURL(base string, info sections.PageInfo, reg *registry.Registry, sectionID *int, token int64) string {
	return preview.URL(base, info.SitePath, reg.ActiveLanguageCode(sectionID), token)
}

func (h *PagesHandler) layoutView(lang, viewKey string) LayoutView {
	return newLayoutView(lang, h.Views.Layouts.For(viewKey))
}

func (h *PagesHandler) notFound(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	h.render(w, r, http.StatusNotFound, "admin/error", h.page(r, i18n.T(lang, "error.not_found"), "", nil))
}
