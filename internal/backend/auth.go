// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", body, "")
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized ||
			apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusForbidden) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var payload struct {
		Success *bool        `json:"success"`
		Token   string       `json:"token"`
		User    User         `json:"user"`
		Data    *LoginResult `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("backend: decode login: %w", err)
	}
	if payload.Success != nil && !*payload.Success {
		return nil, ErrInvalidCredentials
	}

	result := &LoginResult{Token: payload.Token, User: payload.User}
	if result.Token == "" && payload.Data != nil {
		result = payload.Data
	}
	if result.Token == "" {
		return nil, ErrInvalidCredentials
	}
	return result, nil
}

// ListLanguages returns the site languages, default language first.
func (c *Client) ListLanguages(ctx context.Context, token string) ([]Language, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/languages", nil, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var langs []Language
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &langs); err != nil {
			return nil, fmt.Errorf("backend: decode languages: %w", err)
		}
		return langs, nil
	}
	if err := decodeEnvelope(raw, http.StatusOK, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}
