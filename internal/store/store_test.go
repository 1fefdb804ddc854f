// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a migrated database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "panel-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestEvents_CreateListDelete(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).UTC()
	recent := time.Now().UTC()

	if _, err := q.CreateEvent(ctx, CreateEventParams{
		Level: "warning", Category: "content", Message: "old", Metadata: "{}", CreatedAt: old,
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	created, err := q.CreateEvent(ctx, CreateEventParams{
		Level: "error", Category: "auth", Message: "recent", Actor: "admin@example.com", Metadata: "{}", CreatedAt: recent,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateEvent returned zero id")
	}

	events, err := q.ListEvents(ctx, ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Message != "recent" {
		t.Errorf("events[0].Message = %q, want newest first", events[0].Message)
	}

	n, err := q.DeleteEventsBefore(ctx, time.Now().Add(-24*time.Hour).UTC())
	if err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestActivity_CreateAndList(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, target := range []string{"about", "home"} {
		if _, err := q.CreateActivity(ctx, CreateActivityParams{
			Action:     "section.save",
			SectionID:  int64(20 + i),
			LanguageID: 1,
			Target:     target,
			Actor:      "admin@example.com",
			Browser:    "Firefox",
			OS:         "Linux",
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	items, err := q.ListRecentActivity(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentActivity: %v", err)
	}
	if len(items) != 1 || items[0].Target != "home" {
		t.Fatalf("ListRecentActivity = %+v, want newest row only", items)
	}

	count, err := q.CountActivitySince(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountActivitySince: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
