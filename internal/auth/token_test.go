// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.MapClaims{"sub": "7", "exp": exp.Unix()})

	got, ok := ExpiresAt(tok)
	require.True(t, ok)
	require.True(t, got.Equal(exp))
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	_, ok := ExpiresAt("3f2a9c0e-opaque")
	require.False(t, ok)

	_, ok = ExpiresAt(signed(t, jwt.MapClaims{"sub": "7"}))
	require.False(t, ok, "token without exp")
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque", "opaque-token", false},
		{"future", signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), false},
		{"within leeway", signed(t, jwt.MapClaims{"exp": now.Add(-10 * time.Second).Unix()}), false},
		{"past", signed(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Expired(tc.token, now))
		})
	}
}
