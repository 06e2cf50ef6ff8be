// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/geoip"
	"github.com/mesrs/portal-go/internal/testutil"
)

func newTestOptimizer(t *testing.T) (*Optimizer, *sql.DB, *cache.Cache, func()) {
	t.Helper()

	db := testutil.TestDB(t)
	c := cache.New(cache.Config{MaxSize: 1000, DefaultTTL: time.Hour})
	svc := analytics.NewService(db, c, geoip.NewLookup(), testutil.TestLogger())
	opt := NewOptimizer(db, c, svc, DefaultConfig(), testutil.TestLogger())
	return opt, db, c, c.Stop
}

func TestRunProducesFullReport(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()

	testutil.CreatePublishedNews(t, db, "Plan national", "plan-national")

	report := opt.Run(context.Background())

	if report.Baseline == nil || report.Final == nil {
		t.Fatalf("missing benchmarks: baseline=%v final=%v", report.Baseline, report.Final)
	}
	if len(report.Baseline.Operations) != 6 {
		t.Errorf("baseline measured %d operations, want 6", len(report.Baseline.Operations))
	}
	if len(report.Optimizations) != 5 {
		t.Errorf("report has %d stages, want 5", len(report.Optimizations))
	}
	for _, o := range report.Optimizations {
		if o.Impact != "completed" {
			t.Errorf("stage %s impact = %q, want completed (errors: %v)", o.Type, o.Impact, report.Errors)
		}
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("finished before started")
	}
}

func TestRunContainsStepFailures(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()

	// Sabotage one stage: the bot purge needs view_events.
	if _, err := db.Exec(`DROP TABLE view_events`); err != nil {
		t.Fatalf("dropping table: %v", err)
	}

	report := opt.Run(context.Background())

	if len(report.Optimizations) != 5 {
		t.Fatalf("run stopped early: %d stages, want 5", len(report.Optimizations))
	}
	if report.Final == nil {
		t.Error("final benchmark not reached after step failure")
	}

	found := false
	for _, e := range report.Errors {
		if strings.HasPrefix(e.Step, "optimize_analytics.") {
			found = true
			if e.At.IsZero() {
				t.Error("error timestamp not set")
			}
		}
	}
	if !found {
		t.Errorf("analytics step failure not recorded: %v", report.Errors)
	}
}

func TestRunSurvivesClosedDatabase(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()

	_ = db.Close()

	report := opt.Run(context.Background())
	if report == nil {
		t.Fatal("no report produced")
	}
	if len(report.Errors) == 0 {
		t.Error("closed database produced no recorded errors")
	}
	if len(report.Optimizations) != 5 {
		t.Errorf("run stopped early: %d stages, want 5", len(report.Optimizations))
	}
}

func TestFragmentationPct(t *testing.T) {
	if got := FragmentationPct(80, 100); got != 20 {
		t.Errorf("FragmentationPct(80, 100) = %v, want 20", got)
	}
	if got := FragmentationPct(100, 100); got != 0 {
		t.Errorf("FragmentationPct(100, 100) = %v, want 0", got)
	}
	if got := FragmentationPct(0, 0); got != 0 {
		t.Errorf("FragmentationPct(0, 0) = %v, want 0", got)
	}
}

func TestTuneCacheConfigGrowsHotCache(t *testing.T) {
	cfg := cache.Config{MaxSize: 1000, DefaultTTL: time.Hour}

	tuned, change := TuneCacheConfig(cfg, 95, 900, 2000, time.Minute)
	if change == "" {
		t.Fatal("expected a config change")
	}
	if tuned.MaxSize <= 1000 {
		t.Errorf("MaxSize = %d, want growth above 1000", tuned.MaxSize)
	}
	if tuned.MaxSize > 2000 {
		t.Errorf("MaxSize = %d, exceeds cap 2000", tuned.MaxSize)
	}
	if tuned.DefaultTTL != time.Hour {
		t.Errorf("DefaultTTL changed to %s on the grow path", tuned.DefaultTTL)
	}
}

func TestTuneCacheConfigRespectsCap(t *testing.T) {
	cfg := cache.Config{MaxSize: 1800, DefaultTTL: time.Hour}

	tuned, _ := TuneCacheConfig(cfg, 95, 1700, 2000, time.Minute)
	if tuned.MaxSize != 2000 {
		t.Errorf("MaxSize = %d, want capped at 2000", tuned.MaxSize)
	}

	// Already at the cap: no change to report.
	tuned, change := TuneCacheConfig(tuned, 95, 1700, 2000, time.Minute)
	if change != "" {
		t.Errorf("unexpected change at cap: %q", change)
	}
}

func TestTuneCacheConfigShrinksColdTTL(t *testing.T) {
	cfg := cache.Config{MaxSize: 1000, DefaultTTL: time.Hour}

	tuned, change := TuneCacheConfig(cfg, 30, 100, 2000, time.Minute)
	if change == "" {
		t.Fatal("expected a config change")
	}
	if tuned.DefaultTTL != 30*time.Minute {
		t.Errorf("DefaultTTL = %s, want 30m", tuned.DefaultTTL)
	}

	// Halving never goes under the floor.
	cfg.DefaultTTL = 90 * time.Second
	tuned, _ = TuneCacheConfig(cfg, 30, 100, 2000, time.Minute)
	if tuned.DefaultTTL != time.Minute {
		t.Errorf("DefaultTTL = %s, want floor 1m", tuned.DefaultTTL)
	}
}

func TestTuneCacheConfigNoChangeInMiddleBand(t *testing.T) {
	cfg := cache.Config{MaxSize: 1000, DefaultTTL: time.Hour}
	tuned, change := TuneCacheConfig(cfg, 70, 500, 2000, time.Minute)
	if change != "" || tuned != cfg {
		t.Errorf("config changed in the no-op band: %q %+v", change, tuned)
	}
}

func TestPurgeBotEventsRetention(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()
	ctx := context.Background()

	newsID := testutil.CreatePublishedNews(t, db, "Archives", "archives")

	sevenMonthsAgo := time.Now().UTC().AddDate(0, -7, 0)
	insert := func(isBot bool, at time.Time, session string) {
		t.Helper()
		_, err := db.Exec(`
			INSERT INTO view_events (news_id, session_id, is_bot, created_at)
			VALUES (?, ?, ?, ?)
		`, newsID, session, isBot, at)
		if err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}
	insert(true, sevenMonthsAgo, "old-bot")
	insert(false, sevenMonthsAgo, "old-human")
	insert(true, time.Now().UTC(), "fresh-bot")

	cutoff := time.Now().UTC().AddDate(0, -6, 0)
	if _, err := opt.purgeBotEventsBefore(ctx, cutoff); err != nil {
		t.Fatalf("purgeBotEventsBefore: %v", err)
	}

	remaining := map[string]bool{}
	rows, err := db.Query(`SELECT session_id FROM view_events WHERE news_id = ?`, newsID)
	if err != nil {
		t.Fatalf("querying events: %v", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("scan: %v", err)
		}
		remaining[s] = true
	}

	if remaining["old-bot"] {
		t.Error("stale bot event survived the purge")
	}
	if !remaining["old-human"] {
		t.Error("old human event was deleted")
	}
	if !remaining["fresh-bot"] {
		t.Error("recent bot event was deleted")
	}
}

func TestRecomputeIncompleteFixesStaleRollups(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()
	ctx := context.Background()

	newsID := testutil.CreatePublishedNews(t, db, "Statistiques", "statistiques")

	twoDaysAgo := time.Now().UTC().AddDate(0, 0, -2)
	day := twoDaysAgo.Format("2006-01-02")

	// Raw truth: three human views.
	for _, session := range []string{"a", "b", "c"} {
		_, err := db.Exec(`
			INSERT INTO view_events (news_id, session_id, created_at)
			VALUES (?, ?, ?)
		`, newsID, session, twoDaysAgo.Format("2006-01-02 15:04:05"))
		if err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}
	// Stale rollup: wrong count, still open.
	_, err := db.Exec(`
		INSERT INTO daily_news_stats (news_id, date, total_views, is_complete)
		VALUES (?, ?, 1, 0)
	`, newsID, day)
	if err != nil {
		t.Fatalf("inserting stale rollup: %v", err)
	}

	if _, err := opt.recomputeIncomplete(ctx); err != nil {
		t.Fatalf("recomputeIncomplete: %v", err)
	}

	var views int64
	var complete bool
	err = db.QueryRow(`
		SELECT total_views, is_complete FROM daily_news_stats WHERE news_id = ? AND date = ?
	`, newsID, day).Scan(&views, &complete)
	if err != nil {
		t.Fatalf("reading rollup: %v", err)
	}
	if views != 3 {
		t.Errorf("total_views = %d after recompute, want 3", views)
	}
	if !complete {
		t.Error("past-day rollup not finalized")
	}
}

func TestRefreshRollupAggregatesLifetimeTotals(t *testing.T) {
	opt, db, _, cleanup := newTestOptimizer(t)
	defer cleanup()
	ctx := context.Background()

	newsID := testutil.CreatePublishedNews(t, db, "Bilan annuel", "bilan-annuel")
	for i, views := range []int64{10, 20, 30} {
		date := time.Now().UTC().AddDate(0, 0, -i-1).Format("2006-01-02")
		_, err := db.Exec(`
			INSERT INTO daily_news_stats (news_id, date, total_views, unique_views, total_shares, avg_reading_time, is_complete)
			VALUES (?, ?, ?, ?, 1, 60, 1)
		`, newsID, date, views, views)
		if err != nil {
			t.Fatalf("inserting daily stats: %v", err)
		}
	}

	if _, err := opt.refreshRollup(ctx); err != nil {
		t.Fatalf("refreshRollup: %v", err)
	}

	var total, shares int64
	err := db.QueryRow(`
		SELECT total_views, total_shares FROM news_stats_rollup WHERE news_id = ?
	`, newsID).Scan(&total, &shares)
	if err != nil {
		t.Fatalf("reading rollup: %v", err)
	}
	if total != 60 {
		t.Errorf("rollup total_views = %d, want 60", total)
	}
	if shares != 3 {
		t.Errorf("rollup total_shares = %d, want 3", shares)
	}
}

func TestPrewarmPopulatesCache(t *testing.T) {
	opt, db, c, cleanup := newTestOptimizer(t)
	defer cleanup()
	ctx := context.Background()

	testutil.CreatePublishedNews(t, db, "À la une", "a-la-une")

	if _, err := opt.prewarmTopNews(ctx); err != nil {
		t.Fatalf("prewarmTopNews: %v", err)
	}
	if _, ok := c.Get(cache.TopNewsKey(DefaultConfig().PrewarmTopNews)); !ok {
		t.Error("top news list not pre-warmed")
	}

	if _, err := opt.prewarmGlobalStats(ctx); err != nil {
		t.Fatalf("prewarmGlobalStats: %v", err)
	}
	if _, ok := c.Get(cache.GlobalStatsKey(30)); !ok {
		t.Error("global stats snapshot not pre-warmed")
	}
}
