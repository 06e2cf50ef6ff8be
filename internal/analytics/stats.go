// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

// DailyPoint is one day of the global breakdown.
type DailyPoint struct {
	Date   string `json:"date"`
	Views  int64  `json:"views"`
	Shares int64  `json:"shares"`
}

// TopNewsEntry ranks one article in the global snapshot.
type TopNewsEntry struct {
	NewsID int64  `json:"news_id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Views  int64  `json:"views"`
}

// GlobalStats is the portal-wide rollup for a trailing period.
// It lives in the cache and is rebuilt on miss.
type GlobalStats struct {
	PeriodDays     int            `json:"period_days"`
	TotalViews     int64          `json:"total_views"`
	UniqueViews    int64          `json:"unique_views"`
	TotalShares    int64          `json:"total_shares"`
	ActiveArticles int64          `json:"active_articles"`
	AvgReadingTime float64        `json:"avg_reading_time"`
	AvgScrollDepth float64        `json:"avg_scroll_depth"`
	EngagementRate float64        `json:"engagement_rate"`
	ViewsGrowth    float64        `json:"views_growth"`
	SharesGrowth   float64        `json:"shares_growth"`
	Daily          []DailyPoint   `json:"daily"`
	TopNews        []TopNewsEntry `json:"top_news"`
	GeneratedAt    string         `json:"generated_at"`
}

// NewsStats is the per-article rollup over an explicit date range.
type NewsStats struct {
	NewsID         int64        `json:"news_id"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	TotalViews     int64        `json:"total_views"`
	UniqueViews    int64        `json:"unique_views"`
	TotalShares    int64        `json:"total_shares"`
	AvgReadingTime float64      `json:"avg_reading_time"`
	AvgScrollDepth float64      `json:"avg_scroll_depth"`
	EngagementRate float64      `json:"engagement_rate"`
	Daily          []DailyPoint `json:"daily"`
}

// percentChange returns the period-over-period growth percentage.
// A zero previous value yields 0 rather than a division by zero.
func percentChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// safeRate returns numerator/denominator*100, or 0 when the
// denominator is zero.
func safeRate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}
