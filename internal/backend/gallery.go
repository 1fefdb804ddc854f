// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// ListGalleries returns every folder with its images.
func (c *Client) ListGalleries(ctx context.Context, token string) ([]GalleryFolder, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/galleries/all", nil, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var folders []GalleryFolder
	if err := decodeList(raw, &folders); err != nil {
		return nil, fmt.Errorf("backend: decode galleries: %w", err)
	}
	return folders, nil
}

// FolderImages returns the images of one folder.
func (c *Client) FolderImages(ctx context.Context, token, folder string) ([]GalleryImage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathf("/galleries/all/%s", folder), nil, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var images []GalleryImage
	if err := decodeList(raw, &images); err != nil {
		return nil, fmt.Errorf("backend: decode folder images: %w", err)
	}
	return images, nil
}

// CreateFolder creates a gallery folder and returns the name the backend stored.
func (c *Client) CreateFolder(ctx context.Context, token, name string) (string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/galleries",
		map[string]string{"galleryName": name}, token)
	if err != nil {
		return "", err
	}
	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var resp struct {
		GalleryName string `json:"galleryName"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &resp)
	}
	if resp.GalleryName == "" {
		return name, nil
	}
	return resp.GalleryName, nil
}

// DeleteFolder deletes a folder and its images.
func (c *Client) DeleteFolder(ctx context.Context, token, folder string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, pathf("/galleries/%s", folder), nil, token)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// UploadImage uploads one image into folder as multipart fields image and alt.
func (c *Client) UploadImage(ctx context.Context, token, folder string, up Upload) (*GalleryImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, up.Filename))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}
	if err := mw.WriteField("alt", up.Alt); err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathf("/galleries/%s/images", folder), &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Image *GalleryImage `json:"image"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("backend: decode upload: %w", err)
		}
	}
	if resp.Image == nil {
		return &GalleryImage{Filename: up.Filename, Alt: up.Alt}, nil
	}
	return resp.Image, nil
}

// DeleteImage deletes one image.
func (c *Client) DeleteImage(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, pathf("/galleries/images/%d", id), nil, token)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// UpdateImageAlt changes the alt text of one image.
func (c *Client) UpdateImageAlt(ctx context.Context, token string, id int64, alt string) (*GalleryImage, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPut, pathf("/galleries/images/%d/alt", id),
		map[string]string{"alt": alt}, token)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	img := &GalleryImage{ID: id, Alt: alt}
	if len(raw) > 0 {
		var decoded GalleryImage
		if json.Unmarshal(raw, &decoded) == nil && decoded.ID != 0 {
			img = &decoded
		}
	}
	return img, nil
}

// decodeList accepts either a bare JSON array or an envelope whose data is one.
func decodeList(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	return decodeEnvelope(trimmed, http.StatusOK, out)
}
