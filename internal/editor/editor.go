// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor loads and saves section content through the backend.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/olegiv/ocms-panel/internal/model"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/sections"
	"github.com/olegiv/ocms-panel/internal/service"
)

var (
	// ErrStale is returned for a response superseded by a newer request
	// for the same section in the same view.
	ErrStale = errors.New("stale response")
	// ErrUnknownSection is returned for ids missing from the catalog.
	ErrUnknownSection = errors.New("unknown section")
)

// Gateway reads and writes section content.
type Gateway interface {
	FetchContent(ctx context.Context, token string, sectionID int, langID int64) (map[string]any, error)
	UpdateSectionContent(ctx context.Context, token string, sectionID int, langID int64, content map[string]any) (map[string]any, error)
}

// Recorder stores activity entries.
type Recorder interface {
	Record(ctx context.Context, a service.Activity) error
}

// Result is section content ready for the form.
type Result struct {
	Section    sections.Section
	LanguageID int64
	Content    sections.Content
	// FromDefaults is set when nothing is saved yet for the language.
	FromDefaults bool
}

// SaveRequest is a submitted section form.
type SaveRequest struct {
	Token      string
	ViewKey    string
	Section    sections.ID
	LanguageID int64
	Form       url.Values
	Actor      service.Actor
	Preview    preview.Signal
}

// Editor loads and saves sections.
type Editor struct {
	gateway  Gateway
	recorder Recorder
	logger   *slog.Logger
	seq      *sequencer
}

// New creates an editor.
func New(g Gateway, r Recorder, logger *slog.Logger) *Editor {
	return &Editor{gateway: g, recorder: r, logger: logger, seq: newSequencer()}
}

// Load fetches the content of section id in language langID. Content that
// was never saved is replaced by the section's defaults. When another load or
// save of the same section in the same view starts before this one returns,
// Load returns ErrStale.
func (e *Editor) Load(ctx context.Context, token, viewKey string, id sections.ID, langID int64) (Result, error) {
	sec, ok := sections.Lookup(id)
	if !ok {
		return Result{}, ErrUnknownSection
	}

	key := seqKey{view: viewKey, section: id}
	n := e.seq.next(key)

	content, err := e.gateway.FetchContent(ctx, token, int(id), langID)
	if !e.seq.current(key, n) {
		return Result{}, ErrStale
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Section: sec, LanguageID: langID}
	if content == nil {
		res.Content = sections.Defaults(id)
		res.FromDefaults = true
		return res, nil
	}
	res.Content = content
	return res, nil
}

// Save validates the submitted form and writes it. Invalid input is returned
// as errors without contacting the backend. After a successful write the
// action is recorded and the preview is refreshed once. On any failure the
// result carries the submitted content for redisplay.
func (e *Editor) Save(ctx context.Context, req SaveRequest) (Result, sections.Errors, error) {
	sec, ok := sections.Lookup(req.Section)
	if !ok {
		return Result{}, nil, ErrUnknownSection
	}

	bound, errs := sections.Bind(sec, req.Form)
	res := Result{Section: sec, LanguageID: req.LanguageID, Content: bound}
	if errs.Any() {
		return res, errs, nil
	}

	// a save supersedes any load still in flight
	e.seq.next(seqKey{view: req.ViewKey, section: req.Section})

	clean := sections.Sanitize(sec, bound)
	saved, err := e.gateway.UpdateSectionContent(ctx, req.Token, int(req.Section), req.LanguageID, clean)
	if err != nil {
		return res, nil, err
	}
	if saved == nil {
		saved = clean
	}
	res.Content = saved

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, service.Activity{
			Action:     model.ActionSectionSave,
			SectionID:  int64(req.Section),
			LanguageID: req.LanguageID,
			Target:     sec.Title,
			Actor:      req.Actor,
		}); err != nil {
			e.logger.Warn("failed to record section save", "section", sec.Key, "error", err)
		}
	}

	signal := req.Preview
	if signal == nil {
		signal = preview.Noop{}
	}
	signal.Refresh()

	return res, nil, nil
}

// Forget drops the request sequence state of viewKey.
func (e *Editor) Forget(viewKey string) {
	e.seq.drop(viewKey)
}

type seqKey struct {
	view    string
	section sections.ID
}

// sequencer hands out increasing request numbers per key.
type sequencer struct {
	mu   sync.Mutex
	last map[seqKey]uint64
}

func newSequencer() *sequencer {
	return &sequencer{last: make(map[seqKey]uint64)}
}

func (s *sequencer) next(k seqKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[k]++
	return s.last[k]
}

func (s *sequencer) current(k seqKey, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[k] == n
}

func (s *sequencer) drop(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.last {
		if k.view == view {
			delete(s.last, k)
		}
	}
}
