// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the activity trail shown on the dashboard.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/ocms-panel/internal/store"
)

// Actor identifies who performed a mutating action.
type Actor struct {
	Name      string
	UserAgent string
}

// Activity describes one mutating action.
type Activity struct {
	Action     string
	SectionID  int64
	LanguageID int64
	Target     string
	Actor      Actor
}

// ActivityService records and lists operator actions.
type ActivityService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// Record stores a. The browser and OS are parsed from the actor's user agent.
func (s *ActivityService) Record(ctx context.Context, a Activity) error {
	browser, os := parseUserAgent(a.Actor.UserAgent)
	_, err := s.queries.CreateActivity(ctx, store.CreateActivityParams{
		Action:     a.Action,
		SectionID:  a.SectionID,
		LanguageID: a.LanguageID,
		Target:     a.Target,
		Actor:      a.Actor.Name,
		Browser:    browser,
		OS:         os,
		CreatedAt:  s.now().UTC(),
	})
	return err
}

// Recent returns the newest limit actions.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]store.Activity, error) {
	return s.queries.ListRecentActivity(ctx, int64(limit))
}

// CountToday counts actions since local midnight.
func (s *ActivityService) CountToday(ctx context.Context) (int64, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.queries.CountActivitySince(ctx, midnight.UTC())
}

// parseUserAgent extracts browser and OS names from a user agent string.
func parseUserAgent(uaString string) (browser, os string) {
	ua := useragent.Parse(uaString)
	browser, os = ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}
	return browser, os
}
