// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FetchContent returns the saved content of a section in one language. It
// returns nil, nil when nothing has been saved yet for that pair, so callers
// can fall back to the section's default payload. A body that is not the
// expected envelope is an error.
func (c *Client) FetchContent(ctx context.Context, token string, sectionID int, langID int64) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathf("/content/%d/%d", sectionID, langID), nil, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("backend: decode response: %w", err)
	}
	if env.failed() || !env.hasData() {
		return nil, nil
	}
	var data struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("backend: decode data: %w", err)
	}
	if len(data.Content) == 0 || string(data.Content) == "null" {
		return nil, nil
	}
	var content map[string]any
	if err := json.Unmarshal(data.Content, &content); err != nil {
		return nil, fmt.Errorf("backend: decode content: %w", err)
	}
	return content, nil
}

// UpdateSectionContent replaces the content of a section in one language
// and returns the payload the backend echoes back. Last write wins.
func (c *Client) UpdateSectionContent(ctx context.Context, token string, sectionID int, langID int64, content map[string]any) (map[string]any, error) {
	body := map[string]any{"content": content}
	req, err := c.newJSONRequest(ctx, http.MethodPut,
		pathf("/aggregated/section/%d/language/%d", sectionID, langID), body, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return content, nil
	}

	var echoed map[string]any
	if err := decodeEnvelope(raw, http.StatusOK, &echoed); err != nil {
		return nil, err
	}
	if inner, ok := echoed["content"].(map[string]any); ok {
		return inner, nil
	}
	if echoed == nil {
		return content, nil
	}
	return echoed, nil
}
