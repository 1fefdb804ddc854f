// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Activity is a row of the activity table: one mutating operator action.
type Activity struct {
	ID         int64
	Action     string
	SectionID  int64
	LanguageID int64
	Target     string
	Actor      string
	Browser    string
	OS         string
	CreatedAt  time.Time
}

// CreateActivityParams holds the columns written by CreateActivity.
type CreateActivityParams struct {
	Action     string
	SectionID  int64
	LanguageID int64
	Target     string
	Actor      string
	Browser    string
	OS         string
	CreatedAt  time.Time
}

const createActivity = `INSERT INTO activity (action, section_id, language_id, target, actor, browser, os, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

// CreateActivity inserts an activity row and returns its id.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createActivity,
		arg.Action, arg.SectionID, arg.LanguageID, arg.Target, arg.Actor, arg.Browser, arg.OS, arg.CreatedAt,
	).Scan(&id)
	return id, err
}

const listRecentActivity = `SELECT id, action, section_id, language_id, target, actor, browser, os, created_at
FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`

// ListRecentActivity returns the newest activity rows.
func (q *Queries) ListRecentActivity(ctx context.Context, limit int64) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listRecentActivity, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Action, &a.SectionID, &a.LanguageID, &a.Target,
			&a.Actor, &a.Browser, &a.OS, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const countActivitySince = `SELECT COUNT(*) FROM activity WHERE created_at >= ?`

// CountActivitySince counts activity rows created at or after since.
func (q *Queries) CountActivitySince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countActivitySince, since).Scan(&n)
	return n, err
}
