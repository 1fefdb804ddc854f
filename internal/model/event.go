// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds the panel's event log vocabulary.
package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth     = "auth"
	EventCategoryContent  = "content"
	EventCategoryGallery  = "gallery"
	EventCategorySettings = "settings"
	EventCategoryBackend  = "backend"
	EventCategoryCache    = "cache"
	EventCategorySystem   = "system"
)

// Activity actions recorded for mutating operator requests.
const (
	ActionSectionSave  = "section.save"
	ActionFolderCreate = "gallery.folder.create"
	ActionFolderDelete = "gallery.folder.delete"
	ActionImageUpload  = "gallery.image.upload"
	ActionImageDelete  = "gallery.image.delete"
	ActionImageAlt     = "gallery.image.alt"
	ActionSettingsSave = "settings.save"
)
