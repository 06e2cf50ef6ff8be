// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maintainedTables are the write-heavy tables that get re-indexed and
// considered for compaction on every run.
var maintainedTables = []string{
	"news",
	"view_events",
	"share_events",
	"daily_news_stats",
	"system_logs",
}

// slowOpThreshold marks a sampled operation as slow.
const slowOpThreshold = 100 * time.Millisecond

func (o *Optimizer) databaseSteps() []step {
	return []step{
		{"sample_slow_operations", o.sampleSlowOperations},
		{"refresh_statistics", o.refreshStatistics},
		{"rebuild_indexes", o.rebuildIndexes},
		{"flag_unused_indexes", o.flagUnusedIndexes},
		{"compact_storage", o.compactStorage},
	}
}

// sampleSlowOperations times the benchmark basket once more and reports
// which operations exceed the slow threshold. SQLite has no query
// profiler to toggle, so a fixed sample set stands in for one.
func (o *Optimizer) sampleSlowOperations(ctx context.Context) (string, error) {
	b, err := o.benchmark(ctx)
	if err != nil {
		return "", err
	}

	var slow []string
	for name, ms := range b.Operations {
		if time.Duration(ms*float64(time.Millisecond)) >= slowOpThreshold {
			slow = append(slow, fmt.Sprintf("%s (%.1fms)", name, ms))
		}
	}
	if len(slow) == 0 {
		return fmt.Sprintf("sampled %d operations, none slow", len(b.Operations)), nil
	}
	return "slow operations: " + strings.Join(slow, ", "), nil
}

// refreshStatistics updates the query planner statistics.
func (o *Optimizer) refreshStatistics(ctx context.Context) (string, error) {
	if _, err := o.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	return "planner statistics refreshed (ANALYZE)", nil
}

// rebuildIndexes re-sorts the indexes of the maintained tables.
func (o *Optimizer) rebuildIndexes(ctx context.Context) (string, error) {
	rebuilt := 0
	for _, table := range maintainedTables {
		if _, err := o.db.ExecContext(ctx, "REINDEX "+table); err != nil {
			return "", fmt.Errorf("reindex %s: %w", table, err)
		}
		rebuilt++
	}
	return fmt.Sprintf("rebuilt indexes on %d tables", rebuilt), nil
}

// flagUnusedIndexes reports indexes the planner has no statistics for,
// a sign they were never chosen for a query. They are flagged, never
// dropped automatically.
func (o *Optimizer) flagUnusedIndexes(ctx context.Context) (string, error) {
	var hasStats int
	err := o.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_stat1'
	`).Scan(&hasStats)
	if err != nil {
		return "", err
	}
	if hasStats == 0 {
		return "planner statistics unavailable, skipped", nil
	}

	rows, err := o.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'index'
			AND name NOT LIKE 'sqlite_%'
			AND name NOT IN (SELECT idx FROM sqlite_stat1 WHERE idx IS NOT NULL)
		ORDER BY name
	`)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	var unused []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		unused = append(unused, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if len(unused) == 0 {
		return "no unused indexes found", nil
	}
	o.log.Info("indexes with no recorded use", "indexes", unused)
	return fmt.Sprintf("flagged %d unused indexes: %s", len(unused), strings.Join(unused, ", ")), nil
}

// compactStorage reclaims free pages and truncates the WAL, then
// reports the remaining fragmentation.
func (o *Optimizer) compactStorage(ctx context.Context) (string, error) {
	if _, err := o.db.ExecContext(ctx, "PRAGMA incremental_vacuum"); err != nil {
		return "", fmt.Errorf("incremental_vacuum: %w", err)
	}
	if _, err := o.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("wal_checkpoint: %w", err)
	}

	frag, err := o.fragmentation(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("storage compacted, fragmentation %.1f%%", frag), nil
}

// fragmentation reports the share of allocated pages not holding live
// data, in percent.
func (o *Optimizer) fragmentation(ctx context.Context) (float64, error) {
	var pageCount, freeCount int64
	if err := o.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, err
	}
	if err := o.db.QueryRowContext(ctx, "PRAGMA freelist_count").Scan(&freeCount); err != nil {
		return 0, err
	}

	pageSize := int64(4096)
	if err := o.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, err
	}

	storageSize := pageCount * pageSize
	dataSize := (pageCount - freeCount) * pageSize
	return FragmentationPct(dataSize, storageSize), nil
}

// FragmentationPct computes (storageSize - dataSize) / storageSize * 100.
// A zero storage size yields 0.
func FragmentationPct(dataSize, storageSize int64) float64 {
	if storageSize == 0 {
		return 0
	}
	return float64(storageSize-dataSize) / float64(storageSize) * 100
}
