// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// GetConstant reads a site constant. A missing constant yields "".
func (c *Client) GetConstant(ctx context.Context, token, key string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathf("/constants/%s", key), nil, token)
	if err != nil {
		return "", err
	}
	raw, err := c.do(req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	var data json.RawMessage
	if err := decodeEnvelope(raw, http.StatusOK, &data); err != nil {
		return "", err
	}
	return constantValue(data), nil
}

// SetConstant writes a site constant.
func (c *Client) SetConstant(ctx context.Context, token, key, value string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPut, pathf("/constants/%s", key),
		map[string]string{"value": value}, token)
	if err != nil {
		return err
	}
	raw, err := c.do(req)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return decodeEnvelope(raw, http.StatusOK, nil)
}

// constantValue accepts data as a bare string or an object with a value field.
func constantValue(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if json.Unmarshal(data, &obj) == nil {
		return obj.Value
	}
	return ""
}
