// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()
	env.get("/admin/pages/about", false)

	for want := 1; want <= 2; want++ {
		w := env.post("/admin/preview/refresh", url.Values{"page": {"about"}}, true)
		assertStatus(t, w.Code, http.StatusOK)
		trig := hxTriggers(t, w)
		require.Contains(t, trig, "preview-refresh")
		assert.EqualValues(t, want, trig["preview-refresh"]["token"])
	}
	assert.Equal(t, int64(2), env.views.Preview.Token(env.viewKey()))
}

func TestPreviewRefreshWithoutRegistry(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()

	w := env.post("/admin/preview/refresh", url.Values{"page": {"about"}}, true)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Equal(t, "https://site.example/about?_v=1", hxTriggers(t, w)["preview-refresh"]["url"])
}

func TestPreviewRefreshUnknownPage(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()

	w := env.post("/admin/preview/refresh", url.Values{"page": {"nowhere"}}, true)
	assertStatus(t, w.Code, http.StatusBadRequest)
	assert.Empty(t, w.Header().Get("HX-Trigger"))
}

func dialPreview(t *testing.T, env *testEnv, srv *httptest.Server, page string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	for _, c := range env.cookies {
		header.Add("Cookie", c.Name+"="+c.Value)
	}
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + RoutePreviewSocket + "?page=" + page
	return websocket.DefaultDialer.Dial(u, header)
}

func TestPreviewSocket(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()
	env.get("/admin/pages/about", false)

	viewKey := env.viewKey()
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, resp, err := dialPreview(t, env, srv, "about")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	// the subscription starts after the upgrade, so keep refreshing until
	// a message arrives
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	var msg previewMessage
	received := make(chan error, 1)
	go func() { received <- conn.ReadJSON(&msg) }()

	stop := time.NewTicker(20 * time.Millisecond)
	defer stop.Stop()
	for done := false; !done; {
		select {
		case err := <-received:
			require.NoError(t, err)
			done = true
		case <-stop.C:
			env.views.Preview.SignalFor(viewKey).Refresh()
		}
	}

	assert.Equal(t, "refresh", msg.Type)
	assert.Positive(t, msg.Token)
	assert.True(t, strings.HasPrefix(msg.URL, "https://site.example/about?"), msg.URL)
	assert.Contains(t, msg.URL, "lang=en")
}

func TestPreviewSocketRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, resp, err := dialPreview(t, env, srv, "about")
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestPreviewSocketUnknownPage(t *testing.T) {
	env := newTestEnv(t)
	env.signIn()

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, resp, err := dialPreview(t, env, srv, "nowhere")
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
