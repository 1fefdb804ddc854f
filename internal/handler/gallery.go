// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/gallery"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/imaging"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/render"
)

// multipartOverhead covers the form fields sent along with an upload.
const multipartOverhead = 1 << 20

// GalleryHandler serves the image gallery.
type GalleryHandler struct {
	Deps
	gallery        *gallery.Service
	uploadMaxBytes int64
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(d Deps, g *gallery.Service, uploadMaxBytes int64) *GalleryHandler {
	return &GalleryHandler{Deps: d, gallery: g, uploadMaxBytes: uploadMaxBytes}
}

// GalleryData is the gallery page.
type GalleryData struct {
	Lang       string
	Folders    []backend.GalleryFolder
	Selected   string
	Images     []backend.GalleryImage
	Confirm    *ConfirmView
	LoadFailed bool
}

// ConfirmView asks before a destructive action.
type ConfirmView struct {
	Lang    string
	Message string
	Action  string
}

func folderURL(folder string) string {
	if folder == "" {
		return RouteGallery
	}
	return RouteGallery + "?folder=" + url.QueryEscape(folder)
}

// List handles GET /admin/gallery?folder=.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r, r.URL.Query().Get("folder"))
	if !ok {
		return
	}
	h.renderGallery(w, r, data)
}

func (h *GalleryHandler) renderGallery(w http.ResponseWriter, r *http.Request, data GalleryData) {
	h.render(w, r, http.StatusOK, "admin/gallery",
		h.page(r, i18n.T(data.Lang, "gallery.title"), RouteGallery, data))
}

// load reads the folder list and the images of the selected folder. ok is
// false when a 401 has already been answered.
func (h *GalleryHandler) load(w http.ResponseWriter, r *http.Request, selected string) (GalleryData, bool) {
	ctx := r.Context()
	token := middleware.GetToken(r)
	data := GalleryData{Lang: middleware.GetUILang(r), Selected: selected}

	folders, err := h.gallery.Folders(ctx, token)
	if err != nil {
		if h.unauthorized(w, r, err) {
			return data, false
		}
		h.Logger.Error("failed to list galleries", "error", err)
		data.LoadFailed = true
		return data, true
	}
	data.Folders = folders

	if selected == "" {
		return data, true
	}
	images, err := h.gallery.Images(ctx, token, selected)
	if err != nil {
		if h.unauthorized(w, r, err) {
			return data, false
		}
		h.Logger.Error("failed to list images", "folder", selected, "error", err)
		data.LoadFailed = true
		return data, true
	}
	data.Images = images
	return data, true
}

// CreateFolder handles POST /admin/gallery/folders.
func (h *GalleryHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.Renderer, RouteGallery, i18n.T(lang, "gallery.create_failed"))
		return
	}

	name, err := h.gallery.CreateFolder(r.Context(), middleware.GetToken(r), actor(r), r.PostForm.Get("name"))
	if err != nil {
		if h.unauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, gallery.ErrInvalidFolderName) {
			h.Logger.Error("failed to create folder", "error", err)
		}
		flashError(w, r, h.Renderer, RouteGallery, i18n.T(lang, "gallery.create_failed"))
		return
	}
	flashSuccess(w, r, h.Renderer, folderURL(name), i18n.T(lang, "gallery.created", name))
}

// confirm renders the confirm dialog, as a fragment for htmx and inside the
// gallery page otherwise.
func (h *GalleryHandler) confirm(w http.ResponseWriter, r *http.Request, folder string, cv ConfirmView) {
	if middleware.IsHTMX(r) {
		h.partial(w, http.StatusOK, "confirm_dialog", cv)
		return
	}
	data, ok := h.load(w, r, folder)
	if !ok {
		return
	}
	data.Confirm = &cv
	h.renderGallery(w, r, data)
}

// ConfirmDeleteFolder handles GET /admin/gallery/folders/{folder}/delete.
func (h *GalleryHandler) ConfirmDeleteFolder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	folder := chi.URLParam(r, "folder")
	h.confirm(w, r, folder, ConfirmView{
		Lang:    lang,
		Message: i18n.T(lang, "gallery.confirm_folder", folder),
		Action:  "/admin/gallery/folders/" + url.PathEscape(folder) + "/delete",
	})
}

// DeleteFolder handles POST /admin/gallery/folders/{folder}/delete. Only
// confirm=yes deletes; any other answer leaves the folder alone.
func (h *GalleryHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	folder := chi.URLParam(r, "folder")
	if !confirmed(r) {
		flashAndRedirect(w, r, h.Renderer, folderURL(folder), i18n.T(lang, "gallery.delete_cancelled"), render.FlashInfo)
		return
	}

	if err := h.gallery.DeleteFolder(r.Context(), middleware.GetToken(r), actor(r), folder); err != nil {
		if h.unauthorized(w, r, err) {
			return
		}
		h.Logger.Error("failed to delete folder", "folder", folder, "error", err)
		flashError(w, r, h.Renderer, folderURL(folder), i18n.T(lang, "gallery.delete_failed"))
		return
	}
	flashSuccess(w, r, h.Renderer, RouteGallery, i18n.T(lang, "gallery.folder_deleted", folder))
}

// Upload handles POST /admin/gallery/folders/{folder}/images.
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	folder := chi.URLParam(r, "folder")
	back := folderURL(folder)

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.upload_failed", imaging.ErrTooLarge.Error()))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.upload_failed", err.Error()))
		return
	}
	defer func() { _ = file.Close() }()

	_, err = h.gallery.Upload(r.Context(), middleware.GetToken(r), actor(r), folder, file, r.FormValue("alt"))
	if err != nil {
		if h.unauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, imaging.ErrUnsupportedFormat) && !errors.Is(err, imaging.ErrTooLarge) &&
			!errors.Is(err, gallery.ErrAltTooLong) {
			h.Logger.Error("failed to upload image", "folder", folder, "error", err)
		}
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.upload_failed", err.Error()))
		return
	}
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "gallery.uploaded"))
}

func imageID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ConfirmDeleteImage handles GET /admin/gallery/folders/{folder}/images/{id}/delete.
func (h *GalleryHandler) ConfirmDeleteImage(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	folder := chi.URLParam(r, "folder")
	id, ok := imageID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := strconv.FormatInt(id, 10)
	if images, err := h.gallery.Images(r.Context(), middleware.GetToken(r), folder); err == nil {
		for _, img := range images {
			if img.ID == id {
				name = img.Filename
				break
			}
		}
	} else if h.unauthorized(w, r, err) {
		return
	}

	h.confirm(w, r, folder, ConfirmView{
		Lang:    lang,
		Message: i18n.T(lang, "gallery.confirm_image", name),
		Action:  "/admin/gallery/folders/" + url.PathEscape(folder) + "/images/" + strconv.FormatInt(id, 10) + "/delete",
	})
}

// DeleteImage handles POST /admin/gallery/folders/{folder}/images/{id}/delete.
// Only confirm=yes deletes.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	folder := chi.URLParam(r, "folder")
	back := folderURL(folder)
	id, ok := imageID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !confirmed(r) {
		flashAndRedirect(w, r, h.Renderer, back, i18n.T(lang, "gallery.delete_cancelled"), render.FlashInfo)
		return
	}

	if err := h.gallery.DeleteImage(r.Context(), middleware.GetToken(r), actor(r), folder, id); err != nil {
		if h.unauthorized(w, r, err) {
			return
		}
		h.Logger.Error("failed to delete image", "folder", folder, "id", id, "error", err)
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.delete_failed"))
		return
	}
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "gallery.image_deleted"))
}

// UpdateAlt handles POST /admin/gallery/folders/{folder}/images/{id}/alt.
func (h *GalleryHandler) UpdateAlt(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetUILang(r)
	back := folderURL(chi.URLParam(r, "folder"))
	id, ok := imageID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.alt_failed"))
		return
	}

	if _, err := h.gallery.UpdateAlt(r.Context(), middleware.GetToken(r), actor(r), id, r.PostForm.Get("alt")); err != nil {
		if h.unauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, gallery.ErrAltTooLong) {
			h.Logger.Error("failed to update alt text", "id", id, "error", err)
		}
		flashError(w, r, h.Renderer, back, i18n.T(lang, "gallery.alt_failed"))
		return
	}
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "gallery.alt_saved"))
}

// confirmed reports whether the operator accepted a confirm dialog.
func confirmed(r *http.Request) bool {
	return r.PostFormValue("confirm") == "yes"
}
