// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the portal's recurring background jobs on cron
// schedules: analytics rollups, day close-out, bot event retention and
// GeoIP database reloads.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/geoip"
	"github.com/mesrs/portal-go/internal/maintenance"
)

// Job timeouts. Retention and close-out scan whole tables, so they get
// more room than the hourly rollup refresh.
const (
	refreshTimeout   = 5 * time.Minute
	closeOutTimeout  = 10 * time.Minute
	retentionTimeout = 15 * time.Minute
	reloadTimeout    = 30 * time.Second
)

// JobInfo is the public view of a scheduled job for the admin API.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"lastRun"`
	NextRun  time.Time `json:"nextRun"`
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	lastRun  time.Time
}

// Scheduler owns the cron instance and the registered portal jobs.
type Scheduler struct {
	cron      *cron.Cron
	analytics *analytics.Service
	optimizer *maintenance.Optimizer
	geo       *geoip.Lookup
	log       *slog.Logger

	mu   sync.Mutex
	jobs []*job
}

// New creates a scheduler with the standard portal job set registered
// but not yet running.
func New(svc *analytics.Service, opt *maintenance.Optimizer, geo *geoip.Lookup, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		analytics: svc,
		optimizer: opt,
		geo:       geo,
		log:       logger.With("component", "scheduler"),
	}

	// Offset past the hour so the previous hour's events have landed.
	if err := s.register("refresh_recent_stats", "5 * * * *", refreshTimeout, s.refreshRecentStats); err != nil {
		return nil, err
	}
	// Finalize yesterday's rollups shortly after midnight UTC.
	if err := s.register("close_out_day", "15 0 * * *", closeOutTimeout, s.closeOutDay); err != nil {
		return nil, err
	}
	if err := s.register("purge_bot_events", "30 2 * * *", retentionTimeout, s.purgeBotEvents); err != nil {
		return nil, err
	}
	if err := s.register("reload_geoip", "0 4 * * *", reloadTimeout, s.reloadGeoIP); err != nil {
		return nil, err
	}

	return s, nil
}

// register wraps a job function with a timeout context, duration logging
// and last-run bookkeeping, then adds it to the cron instance.
func (s *Scheduler) register(name, schedule string, timeout time.Duration, fn func(ctx context.Context) error) error {
	j := &job{name: name, schedule: schedule}

	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start)

		s.mu.Lock()
		j.lastRun = start
		s.mu.Unlock()

		if err != nil {
			s.log.Error("scheduled job failed",
				"job", name, "duration", elapsed, "error", err)
			return
		}
		s.log.Info("scheduled job completed", "job", name, "duration", elapsed)
	})
	if err != nil {
		return err
	}

	j.entryID = entryID
	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()
	return nil
}

// Start begins executing jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// Jobs returns the registered jobs with their last and next run times,
// sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			LastRun:  j.lastRun,
		}
		if entry := s.cron.Entry(j.entryID); entry.ID == j.entryID {
			info.NextRun = entry.Next
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, k int) bool { return infos[i].Name < infos[k].Name })
	return infos
}

func (s *Scheduler) refreshRecentStats(ctx context.Context) error {
	return s.analytics.RefreshRecentStats(ctx)
}

func (s *Scheduler) closeOutDay(ctx context.Context) error {
	return s.analytics.CloseOutDay(ctx)
}

func (s *Scheduler) purgeBotEvents(ctx context.Context) error {
	deleted, err := s.optimizer.PurgeBotEvents(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info("purged stale bot events", "deleted", deleted)
	}
	return nil
}

func (s *Scheduler) reloadGeoIP(_ context.Context) error {
	if !s.geo.IsEnabled() {
		return nil
	}
	return s.geo.Reload()
}
