// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

// ListUpcomingEvents returns agenda events starting at or after the given
// time, soonest first.
func (q *Queries) ListUpcomingEvents(ctx context.Context, from time.Time, limit int) ([]model.AgendaEvent, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, description, location, starts_at, ends_at, created_at, updated_at
		FROM agenda_events
		WHERE starts_at >= ?
		ORDER BY starts_at
		LIMIT ?
	`, from, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.AgendaEvent
	for rows.Next() {
		var e model.AgendaEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location,
			&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// AgendaEventParams holds fields for creating or updating an agenda event.
type AgendaEventParams struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      sql.NullTime
}

// CreateAgendaEvent inserts an agenda event and returns its id.
func (q *Queries) CreateAgendaEvent(ctx context.Context, p AgendaEventParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO agenda_events (title, description, location, starts_at, ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Description, p.Location, p.StartsAt, p.EndsAt, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteAgendaEvent removes an agenda event.
func (q *Queries) DeleteAgendaEvent(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM agenda_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListActiveAlerts returns alerts active at the given time, newest first.
// An alert is active when its flag is set and the time falls inside its
// optional start/end window.
func (q *Queries) ListActiveAlerts(ctx context.Context, at time.Time) ([]model.Alert, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, message, level, active, starts_at, ends_at, created_at
		FROM alerts
		WHERE active = 1
			AND (starts_at IS NULL OR starts_at <= ?)
			AND (ends_at IS NULL OR ends_at > ?)
		ORDER BY created_at DESC
	`, at, at)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.Level, &a.Active,
			&a.StartsAt, &a.EndsAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// AlertParams holds fields for creating an alert.
type AlertParams struct {
	Title    string
	Message  string
	Level    string
	Active   bool
	StartsAt sql.NullTime
	EndsAt   sql.NullTime
}

// CreateAlert inserts an alert and returns its id.
func (q *Queries) CreateAlert(ctx context.Context, p AlertParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO alerts (title, message, level, active, starts_at, ends_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Message, p.Level, p.Active, p.StartsAt, p.EndsAt, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeactivateAlert clears an alert's active flag.
func (q *Queries) DeactivateAlert(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE alerts SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
