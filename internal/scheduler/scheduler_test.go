// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/ocms-panel/internal/store"
	"github.com/olegiv/ocms-panel/internal/testutil"
)

func TestScheduler_StartStop(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	if err := s.Add(Job{Name: "noop", Schedule: "@every 1h", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()
	s.Stop()
}

func TestAddRejectsBadJobs(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	run := func(context.Context) error { return nil }

	tests := []struct {
		name string
		job  Job
	}{
		{"no name", Job{Schedule: "@hourly", Run: run}},
		{"no run func", Job{Name: "x", Schedule: "@hourly"}},
		{"bad schedule", Job{Name: "x", Schedule: "not a cron", Run: run}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Add(tt.job); err == nil {
				t.Error("Add() succeeded, want error")
			}
		})
	}

	if err := s.Add(Job{Name: "dup", Schedule: "@hourly", Run: run}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(Job{Name: "dup", Schedule: "@daily", Run: run}); err == nil {
		t.Error("duplicate Add() succeeded, want error")
	}
}

func TestListSorted(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	run := func(context.Context) error { return nil }
	for _, name := range []string{"view-sweep", "event-retention", "language-refresh"} {
		if err := s.Add(Job{Name: name, Schedule: "@hourly", Run: run}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	s.Start()
	defer s.Stop()

	jobs := s.List()
	if len(jobs) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(jobs))
	}
	if !sort.SliceIsSorted(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name }) {
		t.Errorf("List() not sorted: %+v", jobs)
	}
	if jobs[0].NextRun.IsZero() {
		t.Error("NextRun is zero for a started scheduler")
	}
}

func TestTriggerNow(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	calls := 0
	boom := errors.New("boom")
	if err := s.Add(Job{Name: "count", Schedule: "@hourly", Run: func(context.Context) error {
		calls++
		return boom
	}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.TriggerNow(context.Background(), "count"); !errors.Is(err, boom) {
		t.Errorf("TriggerNow() error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err := s.TriggerNow(context.Background(), "missing"); err == nil {
		t.Error("TriggerNow(missing) succeeded, want error")
	}
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

func TestLanguageRefreshJob(t *testing.T) {
	inv := &fakeInvalidator{}
	job := LanguageRefreshJob(inv)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inv.calls != 1 {
		t.Errorf("Invalidate calls = %d, want 1", inv.calls)
	}
}

func TestEventRetentionJob(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, ev := range []struct {
		msg string
		at  time.Time
	}{
		{"ancient", now.AddDate(0, 0, -40)},
		{"fresh", now.AddDate(0, 0, -2)},
	} {
		if _, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level: "warning", Category: "system", Message: ev.msg, Metadata: "{}", CreatedAt: ev.at,
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	job := EventRetentionJob(q, 30, testutil.TestLoggerSilent(), func() time.Time { return now })
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	events, err := q.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Message != "fresh" {
		t.Errorf("events after prune = %+v, want only fresh", events)
	}
}

type countingPruner struct{ calls int }

func (p *countingPruner) DeleteEventsBefore(context.Context, time.Time) (int64, error) {
	p.calls++
	return 0, nil
}

func TestEventRetentionJob_ZeroKeepsEverything(t *testing.T) {
	p := &countingPruner{}
	job := EventRetentionJob(p, 0, testutil.TestLoggerSilent(), nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("DeleteEventsBefore calls = %d, want 0", p.calls)
	}
}

type fakeSweeper struct {
	keys []string
	idle time.Duration
}

func (f *fakeSweeper) Sweep(idle time.Duration) []string {
	f.idle = idle
	return f.keys
}

type recordingDropper struct {
	mu      sync.Mutex
	dropped []string
}

func (d *recordingDropper) Drop(viewKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropped = append(d.dropped, viewKey)
}

func TestViewSweepJob(t *testing.T) {
	sw := &fakeSweeper{keys: []string{"view-a", "view-b"}}
	dr := &recordingDropper{}

	job := ViewSweepJob(sw, dr, ViewIdleTimeout, testutil.TestLoggerSilent())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sw.idle != ViewIdleTimeout {
		t.Errorf("Sweep idle = %v, want %v", sw.idle, ViewIdleTimeout)
	}
	if len(dr.dropped) != 2 || dr.dropped[0] != "view-a" || dr.dropped[1] != "view-b" {
		t.Errorf("dropped = %v, want [view-a view-b]", dr.dropped)
	}
}
