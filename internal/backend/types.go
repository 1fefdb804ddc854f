// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

// Language is a site language as returned by GET /languages. The first
// entry of the list is the site's default language.
type Language struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

// User is the operator account attached to an auth token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// DisplayName returns the username, falling back to the email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// LoginResult is the outcome of a successful POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// GalleryFolder is a named folder of images.
type GalleryFolder struct {
	Name   string         `json:"name"`
	Images []GalleryImage `json:"images"`
}

// GalleryImage is one uploaded image. Size and MimeType are optional.
type GalleryImage struct {
	ID       int64   `json:"id"`
	Filename string  `json:"filename"`
	URL      string  `json:"url"`
	Alt      string  `json:"alt"`
	Size     *int64  `json:"size,omitempty"`
	MimeType *string `json:"mime_type,omitempty"`
}

// Upload is an image ready to be sent to the backend.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Alt         string
}

// Constant keys editable from the settings screen.
const (
	ConstantCVEmail       = "default_cv_email"
	ConstantUserDataEmail = "default_user_data_email"
)
