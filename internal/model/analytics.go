// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ViewEvent is a raw, immutable record of a single article view.
// Bot-flagged rows are eligible for bulk deletion after the retention
// window; human rows feed the daily rollups.
type ViewEvent struct {
	ID              int64     `json:"id"`
	NewsID          int64     `json:"news_id"`
	SessionID       string    `json:"session_id"`
	IP              string    `json:"ip"`
	UserAgent       string    `json:"user_agent"`
	CountryCode     string    `json:"country_code"`
	IsBot           bool      `json:"is_bot"`
	ReadingTimeSecs int       `json:"reading_time_secs"`
	ScrollDepthPct  int       `json:"scroll_depth_pct"`
	CreatedAt       time.Time `json:"created_at"`
}

// ShareEvent is a raw, immutable record of a single article share.
type ShareEvent struct {
	ID        int64     `json:"id"`
	NewsID    int64     `json:"news_id"`
	SessionID string    `json:"session_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Network   string    `json:"network"`
	IsBot     bool      `json:"is_bot"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyNewsStats is the per-(article, day) rollup derived from raw
// events. One row per pair; counters only grow until the day closes and
// IsComplete is set.
type DailyNewsStats struct {
	ID             int64   `json:"id"`
	NewsID         int64   `json:"news_id"`
	Date           string  `json:"date"` // YYYY-MM-DD
	TotalViews     int64   `json:"total_views"`
	UniqueViews    int64   `json:"unique_views"`
	TotalShares    int64   `json:"total_shares"`
	AvgReadingTime float64 `json:"avg_reading_time"`
	AvgScrollDepth float64 `json:"avg_scroll_depth"`
	IsComplete     bool    `json:"is_complete"`
}

// MinistryStat kinds
const (
	StatKindStudents     = "students"
	StatKindTeachers     = "teachers"
	StatKindInstitutions = "institutions"
)

// MinistryStat is a published ministry figure (enrolment, staffing,
// institution counts) keyed by kind, year and optional region.
type MinistryStat struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	Value     int64     `json:"value"`
	Year      int       `json:"year"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
