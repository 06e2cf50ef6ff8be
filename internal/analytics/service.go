// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics turns raw view and share events into the rollups the
// dashboards consume. Expensive aggregates go through the shared cache;
// event ingestion never fails the caller, it logs and moves on.
package analytics

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/geoip"
	"github.com/mesrs/portal-go/internal/store"
)

const (
	// globalStatsTTL bounds how stale a dashboard snapshot may be.
	globalStatsTTL = 5 * time.Minute

	// topNewsLimit is the ranking depth of the global snapshot.
	topNewsLimit = 10
)

// Service aggregates news analytics.
type Service struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Cache
	geo     *geoip.Lookup
	log     *slog.Logger
}

// NewService creates an analytics service. The geo lookup may be one
// with no database loaded; country codes then stay empty.
func NewService(db *sql.DB, c *cache.Cache, geo *geoip.Lookup, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		queries: store.New(db),
		cache:   c,
		geo:     geo,
		log:     logger.With("component", "analytics"),
	}
}

// ViewContext carries the request-side facts recorded with a view.
type ViewContext struct {
	SessionID       string
	IP              string
	UserAgent       string
	ReadingTimeSecs int
	ScrollDepthPct  int
}

// TrackView appends a view event for an article. Failures are logged,
// never surfaced: analytics must not break content delivery.
func (s *Service) TrackView(ctx context.Context, newsID int64, vc ViewContext) {
	ua := useragent.Parse(vc.UserAgent)
	country := s.geo.LookupCountry(vc.IP)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO view_events (news_id, session_id, ip, user_agent, country_code, is_bot, reading_time_secs, scroll_depth_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, newsID, vc.SessionID, vc.IP, vc.UserAgent, country, ua.Bot, vc.ReadingTimeSecs, vc.ScrollDepthPct)
	if err != nil {
		s.log.Error("failed to record view event", "news_id", newsID, "error", err)
	}
}

// TrackShare appends a share event for an article on a social network.
// Same contract as TrackView: log and continue.
func (s *Service) TrackShare(ctx context.Context, newsID int64, network string, vc ViewContext) {
	ua := useragent.Parse(vc.UserAgent)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO share_events (news_id, session_id, ip, user_agent, network, is_bot)
		VALUES (?, ?, ?, ?, ?, ?)
	`, newsID, vc.SessionID, vc.IP, vc.UserAgent, network, ua.Bot)
	if err != nil {
		s.log.Error("failed to record share event", "news_id", newsID, "network", network, "error", err)
	}
}

// normalizePeriod clamps a requested window to the supported set.
func normalizePeriod(days int) int {
	switch days {
	case 7, 30, 90, 365:
		return days
	default:
		return 30
	}
}

// GetGlobalStats returns the portal-wide snapshot for the trailing
// periodDays window, served from cache when fresh.
func (s *Service) GetGlobalStats(ctx context.Context, periodDays int) (*GlobalStats, error) {
	periodDays = normalizePeriod(periodDays)

	v, err := s.cache.Wrap(cache.GlobalStatsKey(periodDays), func() (any, error) {
		return s.computeGlobalStats(ctx, periodDays)
	}, cache.WithTTL(globalStatsTTL), cache.WithTags(cache.TagAnalytics, cache.TagStats))
	if err != nil {
		return nil, err
	}
	return v.(*GlobalStats), nil
}

func (s *Service) computeGlobalStats(ctx context.Context, periodDays int) (*GlobalStats, error) {
	now := time.Now().UTC()
	currentFrom := now.AddDate(0, 0, -periodDays).Format("2006-01-02")
	previousFrom := now.AddDate(0, 0, -2*periodDays).Format("2006-01-02")

	stats := &GlobalStats{
		PeriodDays:  periodDays,
		GeneratedAt: now.Format(time.RFC3339),
	}

	// Current-period totals from the daily rollups. Averages are
	// weighted by views so heavy days dominate.
	var weightedReading, weightedScroll float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_views), 0),
			COALESCE(SUM(unique_views), 0),
			COALESCE(SUM(total_shares), 0),
			COUNT(DISTINCT CASE WHEN total_views > 0 THEN news_id END),
			COALESCE(SUM(avg_reading_time * total_views), 0),
			COALESCE(SUM(avg_scroll_depth * total_views), 0)
		FROM daily_news_stats
		WHERE date >= ?
	`, currentFrom).Scan(
		&stats.TotalViews, &stats.UniqueViews, &stats.TotalShares,
		&stats.ActiveArticles, &weightedReading, &weightedScroll,
	)
	if err != nil {
		return nil, err
	}
	if stats.TotalViews > 0 {
		stats.AvgReadingTime = weightedReading / float64(stats.TotalViews)
		stats.AvgScrollDepth = weightedScroll / float64(stats.TotalViews)
	}
	stats.EngagementRate = safeRate(stats.TotalShares, stats.TotalViews)

	// Previous period, for the growth deltas.
	var prevViews, prevShares int64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_views), 0), COALESCE(SUM(total_shares), 0)
		FROM daily_news_stats
		WHERE date >= ? AND date < ?
	`, previousFrom, currentFrom).Scan(&prevViews, &prevShares)
	if err != nil {
		return nil, err
	}
	stats.ViewsGrowth = percentChange(stats.TotalViews, prevViews)
	stats.SharesGrowth = percentChange(stats.TotalShares, prevShares)

	// Day-by-day breakdown.
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, COALESCE(SUM(total_views), 0), COALESCE(SUM(total_shares), 0)
		FROM daily_news_stats
		WHERE date >= ?
		GROUP BY date
		ORDER BY date
	`, currentFrom)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Date, &p.Views, &p.Shares); err != nil {
			return nil, err
		}
		stats.Daily = append(stats.Daily, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := s.queries.TopPublishedNewsByViews(ctx, periodDays, topNewsLimit)
	if err != nil {
		return nil, err
	}
	for _, item := range top {
		stats.TopNews = append(stats.TopNews, TopNewsEntry{
			NewsID: item.News.ID,
			Title:  item.News.Title,
			Slug:   item.News.Slug,
			Views:  item.TotalViews,
		})
	}

	return stats, nil
}

// GetNewsStats computes the per-article rollup for an explicit date
// range directly from the daily rollups; results are not cached.
func (s *Service) GetNewsStats(ctx context.Context, newsID int64, startDate, endDate time.Time) (*NewsStats, error) {
	start := startDate.Format("2006-01-02")
	end := endDate.Format("2006-01-02")

	stats := &NewsStats{NewsID: newsID, StartDate: start, EndDate: end}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, total_views, unique_views, total_shares, avg_reading_time, avg_scroll_depth
		FROM daily_news_stats
		WHERE news_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, newsID, start, end)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var weightedReading, weightedScroll float64
	for rows.Next() {
		var (
			p                  DailyPoint
			uniques            int64
			avgRead, avgScroll float64
		)
		if err := rows.Scan(&p.Date, &p.Views, &uniques, &p.Shares, &avgRead, &avgScroll); err != nil {
			return nil, err
		}
		stats.TotalViews += p.Views
		stats.UniqueViews += uniques
		stats.TotalShares += p.Shares
		weightedReading += avgRead * float64(p.Views)
		weightedScroll += avgScroll * float64(p.Views)
		stats.Daily = append(stats.Daily, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalViews > 0 {
		stats.AvgReadingTime = weightedReading / float64(stats.TotalViews)
		stats.AvgScrollDepth = weightedScroll / float64(stats.TotalViews)
	}
	stats.EngagementRate = safeRate(stats.TotalShares, stats.TotalViews)
	return stats, nil
}

// UpdateDailyStats recomputes the rollup row for one article and day
// from the raw events. The row is marked complete only when the day
// has fully elapsed.
func (s *Service) UpdateDailyStats(ctx context.Context, newsID int64, date time.Time) error {
	day := date.UTC().Format("2006-01-02")
	today := time.Now().UTC().Format("2006-01-02")
	isComplete := day < today

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO daily_news_stats
			(news_id, date, total_views, unique_views, total_shares, avg_reading_time, avg_scroll_depth, is_complete)
		SELECT
			?1, ?2,
			COUNT(*),
			COUNT(DISTINCT session_id),
			(SELECT COUNT(*) FROM share_events WHERE news_id = ?1 AND DATE(created_at) = ?2 AND is_bot = 0),
			COALESCE(AVG(reading_time_secs), 0),
			COALESCE(AVG(scroll_depth_pct), 0),
			?3
		FROM view_events
		WHERE news_id = ?1 AND DATE(created_at) = ?2 AND is_bot = 0
	`, newsID, day, isComplete)
	return err
}

// RefreshRecentStats recomputes rollups for every article that received
// events today. The scheduler calls this hourly.
func (s *Service) RefreshRecentStats(ctx context.Context) error {
	today := time.Now().UTC().Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT news_id FROM view_events WHERE DATE(created_at) = ?
		UNION
		SELECT DISTINCT news_id FROM share_events WHERE DATE(created_at) = ?
	`, today, today)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, id := range ids {
		if err := s.UpdateDailyStats(ctx, id, now); err != nil {
			s.log.Error("daily stats refresh failed", "news_id", id, "error", err)
		}
	}

	if len(ids) > 0 {
		s.cache.InvalidateByTags([]string{cache.TagAnalytics})
	}
	return nil
}

// CloseOutDay finalizes yesterday's rollups: every touched article gets
// a last recompute with is_complete set.
func (s *Service) CloseOutDay(ctx context.Context) error {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	day := yesterday.Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT news_id FROM view_events WHERE DATE(created_at) = ?
		UNION
		SELECT DISTINCT news_id FROM share_events WHERE DATE(created_at) = ?
	`, day, day)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.UpdateDailyStats(ctx, id, yesterday); err != nil {
			return err
		}
	}

	s.cache.InvalidateByTags([]string{cache.TagAnalytics})
	s.log.Info("daily stats closed out", "date", day, "articles", len(ids))
	return nil
}
