// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/mesrs/portal-go/internal/model"
)

// ListStatsByKind returns ministry figures of one kind for the most recent
// year present, national row first, then by label.
func (q *Queries) ListStatsByKind(ctx context.Context, kind string) ([]model.MinistryStat, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, kind, label, value, year, region, created_at
		FROM ministry_stats
		WHERE kind = ? AND year = (SELECT MAX(year) FROM ministry_stats WHERE kind = ?)
		ORDER BY region = '' DESC, label
	`, kind, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.MinistryStat
	for rows.Next() {
		var s model.MinistryStat
		if err := rows.Scan(&s.ID, &s.Kind, &s.Label, &s.Value, &s.Year, &s.Region, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// CreateStat inserts a ministry figure and returns its id.
func (q *Queries) CreateStat(ctx context.Context, s model.MinistryStat) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO ministry_stats (kind, label, value, year, region)
		VALUES (?, ?, ?, ?, ?)
	`, s.Kind, s.Label, s.Value, s.Year, s.Region)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// HomepageCounts aggregates content totals for the public homepage widget.
type HomepageCounts struct {
	PublishedNews  int64 `json:"published_news"`
	Establishments int64 `json:"establishments"`
	Services       int64 `json:"services"`
	Documents      int64 `json:"documents"`
	UpcomingEvents int64 `json:"upcoming_events"`
}

// GetHomepageCounts returns the content totals shown on the homepage.
func (q *Queries) GetHomepageCounts(ctx context.Context) (HomepageCounts, error) {
	var c HomepageCounts
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM news WHERE status = 'published'),
			(SELECT COUNT(*) FROM establishments),
			(SELECT COUNT(*) FROM services WHERE active = 1),
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM agenda_events WHERE starts_at >= CURRENT_TIMESTAMP)
	`).Scan(&c.PublishedNews, &c.Establishments, &c.Services, &c.Documents, &c.UpcomingEvents)
	return c, err
}
