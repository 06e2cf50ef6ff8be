// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/geoip"
	"github.com/mesrs/portal-go/internal/maintenance"
	"github.com/mesrs/portal-go/internal/testutil"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	db := testutil.TestDB(t)
	logger := testutil.TestLogger()

	c := cache.New(cache.Config{MaxSize: 100, DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	t.Cleanup(c.Stop)

	geo := geoip.NewLookup()
	svc := analytics.NewService(db, c, geo, logger)
	opt := maintenance.NewOptimizer(db, c, svc, maintenance.DefaultConfig(), logger)

	s, err := New(svc, opt, geo, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRegistersStandardJobs(t *testing.T) {
	s := newTestScheduler(t)

	jobs := s.Jobs()
	if len(jobs) != 4 {
		t.Fatalf("registered %d jobs, want 4", len(jobs))
	}

	want := map[string]string{
		"close_out_day":        "15 0 * * *",
		"purge_bot_events":     "30 2 * * *",
		"refresh_recent_stats": "5 * * * *",
		"reload_geoip":         "0 4 * * *",
	}
	for _, j := range jobs {
		schedule, ok := want[j.Name]
		if !ok {
			t.Errorf("unexpected job %q", j.Name)
			continue
		}
		if j.Schedule != schedule {
			t.Errorf("job %q schedule = %q, want %q", j.Name, j.Schedule, schedule)
		}
		if !j.LastRun.IsZero() {
			t.Errorf("job %q has LastRun before any execution", j.Name)
		}
	}
}

func TestJobsSortedByName(t *testing.T) {
	s := newTestScheduler(t)

	jobs := s.Jobs()
	for i := 1; i < len(jobs); i++ {
		if jobs[i-1].Name > jobs[i].Name {
			t.Errorf("jobs not sorted: %q before %q", jobs[i-1].Name, jobs[i].Name)
		}
	}
}

func TestStartPopulatesNextRun(t *testing.T) {
	s := newTestScheduler(t)

	s.Start()
	defer s.Stop()

	for _, j := range s.Jobs() {
		if j.NextRun.IsZero() {
			t.Errorf("job %q has no next run after Start", j.Name)
		}
		if !j.NextRun.After(time.Now().Add(-time.Minute)) {
			t.Errorf("job %q next run %v is in the past", j.Name, j.NextRun)
		}
	}
}

func TestStopWaitsForCompletion(t *testing.T) {
	s := newTestScheduler(t)

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestRefreshRecentStatsSurfacesDatabaseErrors(t *testing.T) {
	db := testutil.TestDB(t)
	logger := testutil.TestLogger()

	c := cache.New(cache.Config{MaxSize: 100, DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	t.Cleanup(c.Stop)

	geo := geoip.NewLookup()
	svc := analytics.NewService(db, c, geo, logger)
	opt := maintenance.NewOptimizer(db, c, svc, maintenance.DefaultConfig(), logger)

	s, err := New(svc, opt, geo, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("closing database: %v", err)
	}

	if err := s.refreshRecentStats(context.Background()); err == nil {
		t.Fatal("refreshRecentStats returned nil after the database was closed")
	}
}

func TestJobFunctionsRunAgainstEmptyDatabase(t *testing.T) {
	s := newTestScheduler(t)
	ctx := context.Background()

	if err := s.refreshRecentStats(ctx); err != nil {
		t.Errorf("refreshRecentStats: %v", err)
	}
	if err := s.closeOutDay(ctx); err != nil {
		t.Errorf("closeOutDay: %v", err)
	}
	if err := s.purgeBotEvents(ctx); err != nil {
		t.Errorf("purgeBotEvents: %v", err)
	}
	// GeoIP lookup is disabled without a database; reload is a no-op.
	if err := s.reloadGeoIP(ctx); err != nil {
		t.Errorf("reloadGeoIP: %v", err)
	}
}
