// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that copies warnings and errors
// into the panel's event log.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"maps"
	"strings"

	"github.com/olegiv/ocms-panel/internal/model"
	"github.com/olegiv/ocms-panel/internal/store"
)

// EventLogHandler wraps another handler. Records at or above its level are
// also stored as events, with "category" and "actor" attributes lifted into
// their own columns and everything else kept as JSON metadata.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level

	group string      // dotted prefix from WithGroup
	base  eventFields // attributes added with WithAttrs
}

// NewEventLogHandler stores WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel stores records at level and above.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
		base:    eventFields{meta: map[string]string{}},
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < h.level {
		return nil
	}

	f := h.base.clone()
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.group, a)
		return true
	})

	// The request may already be gone; the event is still wanted.
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     h.slogLevelToEventLevel(r.Level),
		Category:  f.categoryOr(r.Message),
		Message:   r.Message,
		Actor:     f.actor,
		Metadata:  f.metadata(),
		CreatedAt: r.Time,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.inner = h.inner.WithAttrs(attrs)
	h2.base = h.base.clone()
	for _, a := range attrs {
		h2.base.add(h.group, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.inner = h.inner.WithGroup(name)
	h2.group = joinKey(h.group, name)
	return &h2
}

func (h *EventLogHandler) slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// eventFields accumulates the attributes of one event.
type eventFields struct {
	category string
	actor    string
	meta     map[string]string
}

func (f eventFields) clone() eventFields {
	f.meta = maps.Clone(f.meta)
	if f.meta == nil {
		f.meta = map[string]string{}
	}
	return f
}

// add records a. category and actor are only recognised outside groups.
func (f *eventFields) add(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if prefix == "" {
		switch a.Key {
		case "category":
			f.category = a.Value.String()
			return
		case "actor":
			f.actor = a.Value.String()
			return
		}
	}
	if a.Value.Kind() == slog.KindGroup {
		// inline groups have no key of their own
		p := prefix
		if a.Key != "" {
			p = joinKey(prefix, a.Key)
		}
		for _, ga := range a.Value.Group() {
			f.add(p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	f.meta[joinKey(prefix, a.Key)] = a.Value.String()
}

// categoryOr returns the explicit category or one guessed from msg.
func (f eventFields) categoryOr(msg string) string {
	if f.category != "" {
		return f.category
	}
	msg = strings.ToLower(msg)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("auth", "login", "logout", "session"):
		return model.EventCategoryAuth
	case has("section", "content"):
		return model.EventCategoryContent
	case has("gallery", "image", "upload"):
		return model.EventCategoryGallery
	case has("setting", "constant"):
		return model.EventCategorySettings
	case has("backend"):
		return model.EventCategoryBackend
	case has("cache"):
		return model.EventCategoryCache
	}
	return model.EventCategorySystem
}

func (f eventFields) metadata() string {
	if len(f.meta) == 0 {
		return "{}"
	}
	b, err := json.Marshal(f.meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
