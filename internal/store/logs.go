// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

// CreateLogParams holds fields for inserting a system log entry.
type CreateLogParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateLog inserts a system log entry.
func (q *Queries) CreateLog(ctx context.Context, p CreateLogParams) (int64, error) {
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO system_logs (level, category, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.Level, p.Category, p.Message, p.Metadata, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LogFilter narrows ListLogs. Empty fields match all.
type LogFilter struct {
	Level    string
	Category string
	Limit    int
	Offset   int
}

// ListLogs returns log entries matching the filter, newest first.
func (q *Queries) ListLogs(ctx context.Context, f LogFilter) ([]model.SystemLog, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}

	query := `SELECT id, level, category, message, metadata, created_at FROM system_logs WHERE 1=1`
	var args []any
	if f.Level != "" {
		query += ` AND level = ?`
		args = append(args, f.Level)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.SystemLog
	for rows.Next() {
		var l model.SystemLog
		if err := rows.Scan(&l.ID, &l.Level, &l.Category, &l.Message, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// LogStats summarizes the log table for the admin screen.
type LogStats struct {
	Total    int64            `json:"total"`
	ByLevel  map[string]int64 `json:"by_level"`
	Oldest   *time.Time       `json:"oldest,omitempty"`
	Newest   *time.Time       `json:"newest,omitempty"`
}

// GetLogStats returns counts per level and the covered time range.
func (q *Queries) GetLogStats(ctx context.Context) (LogStats, error) {
	stats := LogStats{ByLevel: make(map[string]int64)}

	rows, err := q.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM system_logs GROUP BY level`)
	if err != nil {
		return stats, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return stats, err
		}
		stats.ByLevel[level] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if stats.Total > 0 {
		var oldest, newest time.Time
		if err := q.db.QueryRowContext(ctx,
			`SELECT MIN(created_at), MAX(created_at) FROM system_logs`).Scan(&oldest, &newest); err == nil {
			stats.Oldest = &oldest
			stats.Newest = &newest
		}
	}

	return stats, nil
}

// ClearLogs deletes all log entries and returns the count removed.
func (q *Queries) ClearLogs(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM system_logs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
