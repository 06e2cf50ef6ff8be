// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package maintenance implements the operator-triggered optimization run:
// benchmark, apply a fixed sequence of maintenance actions, re-benchmark,
// report. Every step is independent; a failing step is recorded and the
// run continues, so the report is always produced.
package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/store"
)

// Config tunes the optimization run.
type Config struct {
	// RetentionDays is the age beyond which bot-flagged events are purged.
	RetentionDays int
	// IncompleteWindowDays bounds how far back incomplete daily rollups
	// are recomputed.
	IncompleteWindowDays int
	// RecomputeBatchSize caps the number of rollup rows recomputed per run.
	RecomputeBatchSize int
	// PrewarmTopNews is how many top articles get pre-cached.
	PrewarmTopNews int
	// MaxCacheSize is the hard ceiling the tuner will never raise
	// the cache above.
	MaxCacheSize int
	// MinDefaultTTL is the floor the tuner will never shrink the
	// cache default TTL below.
	MinDefaultTTL time.Duration
}

// DefaultConfig returns the production run parameters.
func DefaultConfig() Config {
	return Config{
		RetentionDays:        180,
		IncompleteWindowDays: 7,
		RecomputeBatchSize:   100,
		PrewarmTopNews:       10,
		MaxCacheSize:         2000,
		MinDefaultTTL:        time.Minute,
	}
}

// StepError records one failed step with enough context for the report.
type StepError struct {
	Step    string    `json:"step"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Optimization summarizes one completed stage for the report.
type Optimization struct {
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
	Impact  string   `json:"impact"`
}

// Report is the structured result of a full run.
type Report struct {
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Baseline       *Benchmark     `json:"baseline,omitempty"`
	Final          *Benchmark     `json:"final,omitempty"`
	ImprovementPct float64        `json:"improvement_pct"`
	Optimizations  []Optimization `json:"optimizations"`
	Errors         []StepError    `json:"errors"`
}

// step is one named unit of work. The detail string becomes an action
// line in the report; an error is recorded and never aborts the run.
type step struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Optimizer executes the maintenance run against the shared database
// and cache.
type Optimizer struct {
	db        *sql.DB
	queries   *store.Queries
	cache     *cache.Cache
	analytics *analytics.Service
	cfg       Config
	catalogue CatalogueFn
	log       *slog.Logger
}

// SetCatalogue replaces the static query-shape catalogue, e.g. with one
// derived from live telemetry.
func (o *Optimizer) SetCatalogue(fn CatalogueFn) {
	o.catalogue = fn
}

// NewOptimizer wires an optimizer. Dependencies are injected so runs
// can be tested against throwaway databases and caches.
func NewOptimizer(db *sql.DB, c *cache.Cache, svc *analytics.Service, cfg Config, logger *slog.Logger) *Optimizer {
	if cfg.RetentionDays <= 0 {
		cfg = DefaultConfig()
	}
	return &Optimizer{
		db:        db,
		queries:   store.New(db),
		cache:     c,
		analytics: svc,
		cfg:       cfg,
		log:       logger.With("component", "optimizer"),
	}
}

// Run executes the full linear sequence: baseline benchmark, the five
// optimization stages, final benchmark, report. It never returns early;
// whatever happened, the report carries the accumulated errors.
func (o *Optimizer) Run(ctx context.Context) *Report {
	report := &Report{StartedAt: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			report.Errors = append(report.Errors, StepError{
				Step:    "run",
				Message: fmt.Sprintf("panic: %v", r),
				At:      time.Now(),
			})
		}
		report.FinishedAt = time.Now()
	}()

	o.log.Info("optimization run started")

	report.Baseline = o.measure(ctx, "measure_baseline", report)

	stages := []struct {
		name  string
		steps []step
	}{
		{"optimize_database", o.databaseSteps()},
		{"optimize_cache", o.cacheSteps()},
		{"optimize_analytics", o.analyticsSteps()},
		{"optimize_memory", o.memorySteps()},
		{"optimize_queries", o.querySteps()},
	}
	for _, stage := range stages {
		o.runStage(ctx, stage.name, stage.steps, report)
	}

	report.Final = o.measure(ctx, "measure_final", report)

	if report.Baseline != nil && report.Final != nil && report.Baseline.AverageMs > 0 {
		report.ImprovementPct = (report.Baseline.AverageMs - report.Final.AverageMs) / report.Baseline.AverageMs * 100
	}

	o.log.Info("optimization run finished",
		"stages", len(report.Optimizations),
		"errors", len(report.Errors),
		"improvement_pct", report.ImprovementPct)
	return report
}

// runStage executes each step of a stage in order, collecting action
// details and recording failures without stopping.
func (o *Optimizer) runStage(ctx context.Context, stage string, steps []step, report *Report) {
	opt := Optimization{Type: stage}
	failed := 0

	for _, st := range steps {
		detail, err := o.runStep(ctx, stage, st)
		if err != nil {
			failed++
			report.Errors = append(report.Errors, StepError{
				Step:    stage + "." + st.name,
				Message: err.Error(),
				At:      time.Now(),
			})
			continue
		}
		if detail != "" {
			opt.Actions = append(opt.Actions, detail)
		}
	}

	switch {
	case failed == 0:
		opt.Impact = "completed"
	case failed < len(steps):
		opt.Impact = "partial"
	default:
		opt.Impact = "failed"
	}
	report.Optimizations = append(report.Optimizations, opt)
}

// runStep isolates a single step, converting panics into errors so one
// misbehaving action cannot take down the run.
func (o *Optimizer) runStep(ctx context.Context, stage string, st step) (detail string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	detail, err = st.run(ctx)
	if err != nil {
		o.log.Warn("optimization step failed", "stage", stage, "step", st.name, "error", err)
		return "", err
	}
	o.log.Debug("optimization step done", "stage", stage, "step", st.name, "elapsed", time.Since(start))
	return detail, nil
}

// measure runs the benchmark basket, folding a failure into the error
// list like any other step.
func (o *Optimizer) measure(ctx context.Context, name string, report *Report) *Benchmark {
	b, err := o.benchmark(ctx)
	if err != nil {
		report.Errors = append(report.Errors, StepError{
			Step:    name,
			Message: err.Error(),
			At:      time.Now(),
		})
		return nil
	}
	return b
}
