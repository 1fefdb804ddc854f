// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/olegiv/ocms-panel/internal/layout"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/sections"
)

// pollSlack is added to a transition delay before the page asks for the
// settled state.
const pollSlack = 50

// LayoutView is the layout state partial.
type LayoutView struct {
	Lang         string
	State        string
	Section      string
	Ref          string
	Focus        string
	ScrollLocked bool
	Pending      bool
	PollMillis   int64
}

func newLayoutView(lang string, v layout.View) LayoutView {
	snap := v.Snapshot()
	lv := LayoutView{
		Lang:         lang,
		State:        snap.State.String(),
		Section:      snap.Section,
		Ref:          snap.Ref,
		ScrollLocked: v.Scroll.Locked(),
	}
	switch snap.State {
	case layout.Entering:
		lv.Pending, lv.PollMillis = true, layout.EnterDelay.Milliseconds()+pollSlack
	case layout.Exiting:
		lv.Pending, lv.PollMillis = true, layout.ExitDelay.Milliseconds()+pollSlack
	}
	return lv
}

// LayoutHandler drives the fullscreen split view of a page editor.
type LayoutHandler struct {
	Deps
}

// NewLayoutHandler creates a new LayoutHandler.
func NewLayoutHandler(d Deps) *LayoutHandler {
	return &LayoutHandler{Deps: d}
}

func (h *LayoutHandler) view(r *http.Request) layout.View {
	return h.Views.Layouts.For(middleware.GetViewID(r))
}

func (h *LayoutHandler) write(w http.ResponseWriter, r *http.Request, v layout.View, focus string) {
	lv := newLayoutView(middleware.GetUILang(r), v)
	lv.Focus = focus
	h.partial(w, http.StatusOK, "layout_state", lv)
}

// State handles GET /admin/layout.
func (h *LayoutHandler) State(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.view(r), "")
}

// Fullscreen handles POST /admin/layout/fullscreen. A request while already
// entering or in fullscreen leaves the state unchanged.
func (h *LayoutHandler) Fullscreen(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	key := r.PostForm.Get("section")
	if _, ok := sections.LookupKey(key); !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	v := h.view(r)
	v.Enter(key, r.PostForm.Get("ref"))
	h.write(w, r, v, "")
}

// Exit handles POST /admin/layout/exit. Focus returns to the element that
// opened the fullscreen view.
func (h *LayoutHandler) Exit(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	ref := v.Snapshot().Ref
	focus := ""
	if v.Exit() {
		focus = ref
	}
	h.write(w, r, v, focus)
}

// Key handles POST /admin/layout/key with the pressed key, the focused
// element and the focusable elements of the fullscreen view in order.
func (h *LayoutHandler) Key(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	var focusables []string
	for _, id := range strings.Split(r.PostForm.Get("focusables"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			focusables = append(focusables, id)
		}
	}
	k := layout.Key{Name: r.PostForm.Get("key"), Shift: r.PostForm.Get("shift") != ""}

	focused := r.PostForm.Get("focused")

	v := h.view(r)
	focus, handled := v.HandleKey(k, focusables, focused)
	if !handled && k.Name == "Tab" && v.State() == layout.Fullscreen {
		// the page suppresses every Tab in fullscreen, so plain steps are
		// answered here too
		focus = stepFocus(focusables, focused, k.Shift)
	}
	h.write(w, r, v, focus)
}

// stepFocus returns the element after focused, or before it with back set.
func stepFocus(focusables []string, focused string, back bool) string {
	i := slices.Index(focusables, focused)
	switch {
	case i < 0:
		return ""
	case back && i > 0:
		return focusables[i-1]
	case !back && i < len(focusables)-1:
		return focusables[i+1]
	}
	return ""
}
