// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth inspects backend bearer tokens.
//
// The panel never verifies token signatures; the backend does that on every
// call. Reading the exp claim only lets the panel drop a session whose token
// has already expired instead of waiting for the backend's 401.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Leeway absorbs clock skew between the panel and the backend.
const Leeway = 30 * time.Second

// ExpiresAt returns the token's exp claim. ok is false for opaque tokens and
// JWTs without an exp claim.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Expired reports whether token is known to be expired at now. Tokens whose
// expiry cannot be read are treated as valid.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return now.After(exp.Add(Leeway))
}
