// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/sections"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// PreviewHandler pushes preview refresh tokens to the page editor.
type PreviewHandler struct {
	Deps
	previewBase string
	upgrader    websocket.Upgrader
}

// NewPreviewHandler creates a new PreviewHandler. The websocket only accepts
// same-origin upgrades.
func NewPreviewHandler(d Deps, previewBase string) *PreviewHandler {
	return &PreviewHandler{
		Deps:        d,
		previewBase: previewBase,
		upgrader:    websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

// previewMessage is sent for every refresh.
type previewMessage struct {
	Type  string `json:"type"`
	Token int64  `json:"token"`
	URL   string `json:"url,omitempty"`
}

// url builds the frame address for the view's current page, in the language
// of the fullscreen section if there is one.
func (h *PreviewHandler) url(viewKey string, info sections.PageInfo, token int64) string {
	reg, ok := h.Views.Registries.Lookup(viewKey, string(info.Page))
	if !ok {
		return preview.URL(h.previewBase, info.SitePath, "", token)
	}
	var sectionID *int
	if snap := h.Views.Layouts.For(viewKey).Snapshot(); snap.Section != "" {
		if sec, ok := sections.LookupKey(snap.Section); ok {
			id := int(sec.ID)
			sectionID = &id
		}
	}
	return previewURL(h.previewBase, info, reg, sectionID, token)
}

// Socket handles GET /admin/preview/ws?page=. It streams a refresh message
// for every new token of the view until the client leaves or the view is
// dropped.
func (h *PreviewHandler) Socket(w http.ResponseWriter, r *http.Request) {
	info, ok := sections.LookupPage(r.URL.Query().Get("page"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	viewKey := middleware.GetViewID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("preview websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	tokens, cancel := h.Views.Preview.SignalFor(viewKey).Subscribe()
	defer cancel()

	// The client sends nothing; reading only processes pongs and notices
	// the close.
	gone := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case token, ok := <-tokens:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(previewMessage{Type: "refresh", Token: token, URL: h.url(viewKey, info, token)}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// Refresh handles POST /admin/preview/refresh, the manual reload button.
func (h *PreviewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	info, ok := sections.LookupPage(r.PostForm.Get("page"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	viewKey := middleware.GetViewID(r)
	signal := h.Views.Preview.SignalFor(viewKey)
	signal.Refresh()

	token := signal.Token()
	triggers{}.previewRefresh(token, h.url(viewKey, info, token)).write(w)
	w.WriteHeader(http.StatusOK)
}
