// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "strconv"

// Tag names shared by the cache consumers. Invalidating TagAnalytics
// drops every cached rollup after an aggregation pass; TagNews drops
// content-derived entries after a news mutation.
const (
	TagAnalytics = "analytics"
	TagNews      = "news"
	TagStats     = "stats"
	TagPrewarm   = "prewarm"
)

// Key prefixes. Keys are built by convention: prefix plus parameters.
const (
	keyGlobalStats = "analytics:global:"
	keyTopNews     = "news:top:"
	keyNewsItem    = "news:item:"
	keyQueryShape  = "query:"
)

// GlobalStatsKey returns the cache key for the global stats snapshot
// covering the trailing periodDays window.
func GlobalStatsKey(periodDays int) string {
	return keyGlobalStats + strconv.Itoa(periodDays)
}

// TopNewsKey returns the cache key for the top-N most viewed news list.
func TopNewsKey(limit int) string {
	return keyTopNews + strconv.Itoa(limit)
}

// NewsItemKey returns the cache key for a single pre-warmed news item.
func NewsItemKey(id int64) string {
	return keyNewsItem + strconv.FormatInt(id, 10)
}

// QueryShapeKey returns the cache key for a pre-computed query result
// registered in the maintenance query catalogue.
func QueryShapeKey(name string) string {
	return keyQueryShape + name
}
