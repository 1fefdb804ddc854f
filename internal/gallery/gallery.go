// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gallery manages image folders on the backend.
package gallery

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/imaging"
	"github.com/olegiv/ocms-panel/internal/model"
	"github.com/olegiv/ocms-panel/internal/service"
	"github.com/olegiv/ocms-panel/internal/util"
)

// MaxAltLength bounds image alt text.
const MaxAltLength = 250

var (
	// ErrInvalidFolderName is returned when a folder name has no usable characters.
	ErrInvalidFolderName = errors.New("invalid folder name")
	// ErrAltTooLong is returned when alt text exceeds MaxAltLength.
	ErrAltTooLong = errors.New("alt text too long")
)

// Backend is the part of the backend client the gallery uses.
type Backend interface {
	ListGalleries(ctx context.Context, token string) ([]backend.GalleryFolder, error)
	FolderImages(ctx context.Context, token, folder string) ([]backend.GalleryImage, error)
	CreateFolder(ctx context.Context, token, name string) (string, error)
	DeleteFolder(ctx context.Context, token, folder string) error
	UploadImage(ctx context.Context, token, folder string, up backend.Upload) (*backend.GalleryImage, error)
	DeleteImage(ctx context.Context, token string, id int64) error
	UpdateImageAlt(ctx context.Context, token string, id int64, alt string) (*backend.GalleryImage, error)
}

// Recorder stores activity entries.
type Recorder interface {
	Record(ctx context.Context, a service.Activity) error
}

// Service performs gallery operations and records them.
type Service struct {
	backend   Backend
	processor *imaging.Processor
	recorder  Recorder
	logger    *slog.Logger
}

// NewService creates a gallery service.
func NewService(b Backend, p *imaging.Processor, r Recorder, logger *slog.Logger) *Service {
	return &Service{backend: b, processor: p, recorder: r, logger: logger}
}

// Folders returns every folder sorted by name.
func (s *Service) Folders(ctx context.Context, token string) ([]backend.GalleryFolder, error) {
	folders, err := s.backend.ListGalleries(ctx, token)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(folders, func(a, b backend.GalleryFolder) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return folders, nil
}

// Images returns the images of folder.
func (s *Service) Images(ctx context.Context, token, folder string) ([]backend.GalleryImage, error) {
	return s.backend.FolderImages(ctx, token, folder)
}

// CreateFolder slugifies name and creates the folder. It returns the name
// the backend stored.
func (s *Service) CreateFolder(ctx context.Context, token string, actor service.Actor, name string) (string, error) {
	slug := util.Slugify(name)
	if !util.IsValidSlug(slug) {
		return "", ErrInvalidFolderName
	}
	created, err := s.backend.CreateFolder(ctx, token, slug)
	if err != nil {
		return "", err
	}
	s.record(ctx, model.ActionFolderCreate, created, actor)
	return created, nil
}

// DeleteFolder deletes folder and every image in it.
func (s *Service) DeleteFolder(ctx context.Context, token string, actor service.Actor, folder string) error {
	if err := s.backend.DeleteFolder(ctx, token, folder); err != nil {
		return err
	}
	s.record(ctx, model.ActionFolderDelete, folder, actor)
	return nil
}

// Upload normalizes an image and uploads it into folder.
func (s *Service) Upload(ctx context.Context, token string, actor service.Actor, folder string, r io.Reader, alt string) (*backend.GalleryImage, error) {
	alt, err := cleanAlt(alt)
	if err != nil {
		return nil, err
	}
	res, err := s.processor.Process(r)
	if err != nil {
		return nil, err
	}
	if res.Reencoded {
		s.logger.Debug("upload normalized", "folder", folder, "width", res.Width, "height", res.Height)
	}

	img, err := s.backend.UploadImage(ctx, token, folder, backend.Upload{
		Filename:    res.Filename,
		ContentType: res.MimeType,
		Data:        res.Data,
		Alt:         alt,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.ActionImageUpload, folder+"/"+img.Filename, actor)
	return img, nil
}

// DeleteImage deletes image id of folder.
func (s *Service) DeleteImage(ctx context.Context, token string, actor service.Actor, folder string, id int64) error {
	if err := s.backend.DeleteImage(ctx, token, id); err != nil {
		return err
	}
	s.record(ctx, model.ActionImageDelete, fmt.Sprintf("%s/%d", folder, id), actor)
	return nil
}

// UpdateAlt replaces the alt text of image id.
func (s *Service) UpdateAlt(ctx context.Context, token string, actor service.Actor, id int64, alt string) (*backend.GalleryImage, error) {
	alt, err := cleanAlt(alt)
	if err != nil {
		return nil, err
	}
	img, err := s.backend.UpdateImageAlt(ctx, token, id, alt)
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.ActionImageAlt, fmt.Sprintf("%d", id), actor)
	return img, nil
}

func (s *Service) record(ctx context.Context, action, target string, actor service.Actor) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, service.Activity{Action: action, Target: target, Actor: actor}); err != nil {
		s.logger.Warn("failed to record gallery activity", "action", action, "error", err)
	}
}

func cleanAlt(alt string) (string, error) {
	alt = strings.Join(strings.Fields(alt), " ")
	if len([]rune(alt)) > MaxAltLength {
		return "", ErrAltTooLong
	}
	return alt, nil
}
