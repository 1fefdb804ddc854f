// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/cache"
	"github.com/olegiv/ocms-panel/internal/session"
	"github.com/olegiv/ocms-panel/internal/testutil"
)

func TestHealthPublic(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatus(t, w.Code, http.StatusOK)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]any{"status": "healthy"}, got)
}

func TestHealthDegraded(t *testing.T) {
	db := testutil.TestDB(t)
	require.NoError(t, db.Close())
	h := NewHealthHandler(db, nil, nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatus(t, w.Code, http.StatusServiceUnavailable)
	var got HealthStatusPublic
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "degraded", got.Status)
}

func TestHealthDetailsForOperators(t *testing.T) {
	sm := scs.New()
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = mc.Close() })
	h := NewHealthHandler(testutil.TestDB(t), sm, mc)

	signedIn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, session.SetAuth(r.Context(), sm, testToken, backend.User{ID: 1, Email: testEmail}))
		h.Health(w, r)
	})

	w := httptest.NewRecorder()
	sm.LoadAndSave(signedIn).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatus(t, w.Code, http.StatusOK)
	var got HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "healthy", got.Checks["database"].Status)
	assert.Equal(t, "healthy", got.Checks["cache"].Status)
	assert.Equal(t, "hit rate 0.0%", got.Checks["cache"].Message)
	assert.NotEmpty(t, got.Version.Version)
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, nil)

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assertStatus(t, w.Code, http.StatusOK)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
