// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Default schedules.
const (
	LanguageRefreshSchedule = "@every 30m"
	EventRetentionSchedule  = "@daily"
	ViewSweepSchedule       = "@every 10m"
)

// ViewIdleTimeout is how long an operator view may go untouched before its
// in-memory state is released.
const ViewIdleTimeout = 2 * time.Hour

// LanguageInvalidator drops the cached language list.
type LanguageInvalidator interface {
	Invalidate(ctx context.Context) error
}

// EventPruner deletes event log rows older than a cutoff.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ViewSweeper reports the view keys that went idle and were dropped.
type ViewSweeper interface {
	Sweep(idle time.Duration) []string
}

// ViewDropper releases the remaining state held for a view key.
type ViewDropper interface {
	Drop(viewKey string)
}

// LanguageRefreshJob forces the next page load to refetch languages from the
// backend, so languages added there show up without a restart.
func LanguageRefreshJob(c LanguageInvalidator) Job {
	return Job{
		Name:        "language-refresh",
		Description: "Drop the cached backend language list",
		Schedule:    LanguageRefreshSchedule,
		Run:         c.Invalidate,
	}
}

// EventRetentionJob prunes the event log. A retention of zero days keeps
// everything and the job is a no-op.
func EventRetentionJob(p EventPruner, days int, logger *slog.Logger, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:        "event-retention",
		Description: fmt.Sprintf("Delete event log entries older than %d days", days),
		Schedule:    EventRetentionSchedule,
		Run: func(ctx context.Context) error {
			if days <= 0 {
				return nil
			}
			cutoff := now().AddDate(0, 0, -days)
			n, err := p.DeleteEventsBefore(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("pruning events: %w", err)
			}
			if n > 0 {
				logger.Info("pruned event log", "deleted", n, "cutoff", cutoff)
			}
			return nil
		},
	}
}

// ViewSweepJob releases the state of views whose operators went away without
// logging out.
func ViewSweepJob(s ViewSweeper, d ViewDropper, idle time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        "view-sweep",
		Description: "Release state of idle operator views",
		Schedule:    ViewSweepSchedule,
		Run: func(context.Context) error {
			keys := s.Sweep(idle)
			for _, k := range keys {
				d.Drop(k)
			}
			if len(keys) > 0 {
				logger.Info("released idle views", "count", len(keys))
			}
			return nil
		},
	}
}
