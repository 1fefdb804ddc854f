// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the panel's templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templates embed.FS

//go:embed all:static/dist
var static embed.FS

// TemplatesFS returns the template tree rooted at its layouts, partials and
// page directories.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(templates, "templates")
}

// StaticFS returns the static assets served under /static/dist.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static/dist")
}
