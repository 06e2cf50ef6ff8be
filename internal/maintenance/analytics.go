// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"fmt"
	"time"
)

func (o *Optimizer) analyticsSteps() []step {
	return []step{
		{"purge_bot_events", o.purgeBotEvents},
		{"ensure_indexes", o.ensureAnalyticsIndexes},
		{"refresh_rollup", o.refreshRollup},
		{"recompute_incomplete", o.recomputeIncomplete},
	}
}

// purgeBotEvents deletes bot-flagged view and share events older than
// the retention cutoff. Human events are kept regardless of age. The
// two deletes are independent; a partial run is acceptable.
func (o *Optimizer) purgeBotEvents(ctx context.Context) (string, error) {
	deleted, err := o.PurgeBotEvents(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("purged %d stale bot events", deleted), nil
}

// PurgeBotEvents deletes bot events older than the configured retention
// window and returns the total number of rows removed. It is also run
// standalone by the nightly scheduler.
func (o *Optimizer) PurgeBotEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -o.cfg.RetentionDays)
	return o.purgeBotEventsBefore(ctx, cutoff)
}

func (o *Optimizer) purgeBotEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	views, err := o.db.ExecContext(ctx,
		`DELETE FROM view_events WHERE is_bot = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging view events: %w", err)
	}
	deletedViews, _ := views.RowsAffected()

	shares, err := o.db.ExecContext(ctx,
		`DELETE FROM share_events WHERE is_bot = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return deletedViews, fmt.Errorf("purging share events: %w", err)
	}
	deletedShares, _ := shares.RowsAffected()

	if deletedViews+deletedShares > 0 {
		o.log.Info("purged stale bot events", "views", deletedViews, "shares", deletedShares, "cutoff", cutoff.Format("2006-01-02"))
	}
	return deletedViews + deletedShares, nil
}

// ensureAnalyticsIndexes creates the indexes backing the common
// aggregation shapes if a migration ever left them behind.
func (o *Optimizer) ensureAnalyticsIndexes(ctx context.Context) (string, error) {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_view_events_news_created ON view_events(news_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_view_events_bot_created ON view_events(is_bot, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_share_events_news_created ON share_events(news_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_news_stats_date ON daily_news_stats(date)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_news_stats_incomplete ON daily_news_stats(is_complete, date)`,
	}
	for _, ddl := range indexes {
		if _, err := o.db.ExecContext(ctx, ddl); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("ensured %d aggregation indexes", len(indexes)), nil
}

// refreshRollup maintains the physical per-article rollup table that
// stands in for a database-native materialized view: dashboards read
// lifetime totals from it instead of scanning daily rows.
func (o *Optimizer) refreshRollup(ctx context.Context) (string, error) {
	_, err := o.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS news_stats_rollup (
			news_id INTEGER PRIMARY KEY REFERENCES news(id) ON DELETE CASCADE,
			total_views INTEGER NOT NULL DEFAULT 0,
			unique_views INTEGER NOT NULL DEFAULT 0,
			total_shares INTEGER NOT NULL DEFAULT 0,
			avg_reading_time REAL NOT NULL DEFAULT 0,
			refreshed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return "", fmt.Errorf("creating rollup table: %w", err)
	}

	res, err := o.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO news_stats_rollup
			(news_id, total_views, unique_views, total_shares, avg_reading_time, refreshed_at)
		SELECT
			news_id,
			SUM(total_views),
			SUM(unique_views),
			SUM(total_shares),
			CASE WHEN SUM(total_views) > 0
				THEN SUM(avg_reading_time * total_views) / SUM(total_views)
				ELSE 0 END,
			CURRENT_TIMESTAMP
		FROM daily_news_stats
		GROUP BY news_id
	`)
	if err != nil {
		return "", fmt.Errorf("refreshing rollup: %w", err)
	}
	refreshed, _ := res.RowsAffected()
	return fmt.Sprintf("refreshed rollup for %d articles", refreshed), nil
}

// recomputeIncomplete re-derives daily rollup rows still flagged
// incomplete within the trailing window, in a bounded batch.
func (o *Optimizer) recomputeIncomplete(ctx context.Context) (string, error) {
	since := time.Now().UTC().AddDate(0, 0, -o.cfg.IncompleteWindowDays).Format("2006-01-02")
	today := time.Now().UTC().Format("2006-01-02")

	rows, err := o.db.QueryContext(ctx, `
		SELECT news_id, date FROM daily_news_stats
		WHERE is_complete = 0 AND date >= ? AND date < ?
		ORDER BY date
		LIMIT ?
	`, since, today, o.cfg.RecomputeBatchSize)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	type rollupKey struct {
		newsID int64
		date   string
	}
	var pending []rollupKey
	for rows.Next() {
		var k rollupKey
		if err := rows.Scan(&k.newsID, &k.date); err != nil {
			return "", err
		}
		pending = append(pending, k)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, k := range pending {
		day, err := time.Parse("2006-01-02", k.date)
		if err != nil {
			return "", fmt.Errorf("bad rollup date %q: %w", k.date, err)
		}
		if err := o.analytics.UpdateDailyStats(ctx, k.newsID, day); err != nil {
			return "", fmt.Errorf("recomputing news %d for %s: %w", k.newsID, k.date, err)
		}
	}
	return fmt.Sprintf("recomputed %d incomplete daily rollups", len(pending)), nil
}
