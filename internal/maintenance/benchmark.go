// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/model"
)

// Benchmark holds elapsed milliseconds per representative operation.
type Benchmark struct {
	Operations map[string]float64 `json:"operations"`
	AverageMs  float64            `json:"average_ms"`
	MeasuredAt time.Time          `json:"measured_at"`
}

// benchmark times a fixed basket of representative operations: a
// filtered read, an aggregation, an insert+delete round trip, and the
// three cache primitives the hot path leans on.
func (o *Optimizer) benchmark(ctx context.Context) (*Benchmark, error) {
	b := &Benchmark{
		Operations: make(map[string]float64),
		MeasuredAt: time.Now(),
	}

	ops := []struct {
		name string
		run  func(context.Context) error
	}{
		{"filtered_read", o.benchFilteredRead},
		{"aggregation", o.benchAggregation},
		{"insert_delete", o.benchInsertDelete},
		{"cache_set_get", o.benchCacheSetGet},
		{"cache_wrap", o.benchCacheWrap},
		{"cache_invalidate", o.benchCacheInvalidate},
	}

	var total float64
	for _, op := range ops {
		start := time.Now()
		if err := op.run(ctx); err != nil {
			return nil, fmt.Errorf("benchmark %s: %w", op.name, err)
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		b.Operations[op.name] = ms
		total += ms
	}
	b.AverageMs = total / float64(len(ops))
	return b, nil
}

func (o *Optimizer) benchFilteredRead(ctx context.Context) error {
	_, err := o.queries.ListPublishedNews(ctx, model.NewsCategoryActualites, 20, 0)
	return err
}

func (o *Optimizer) benchAggregation(ctx context.Context) error {
	var views, shares int64
	return o.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_views), 0), COALESCE(SUM(total_shares), 0)
		FROM daily_news_stats
		WHERE date >= ?
	`, time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")).Scan(&views, &shares)
}

func (o *Optimizer) benchInsertDelete(ctx context.Context) error {
	res, err := o.db.ExecContext(ctx, `
		INSERT INTO system_logs (level, category, message)
		VALUES (?, ?, 'benchmark probe')
	`, model.LogLevelDebug, model.LogCategoryMaintenance)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = o.db.ExecContext(ctx, `DELETE FROM system_logs WHERE id = ?`, id)
	return err
}

func (o *Optimizer) benchCacheSetGet(context.Context) error {
	key := "bench:set-get"
	o.cache.Set(key, "probe", cache.WithTTL(time.Second))
	if _, ok := o.cache.Get(key); !ok {
		return fmt.Errorf("benchmark entry missing after set")
	}
	return nil
}

func (o *Optimizer) benchCacheWrap(context.Context) error {
	_, err := o.cache.Wrap("bench:wrap", func() (any, error) {
		return 42, nil
	}, cache.WithTTL(time.Second), cache.WithTags("bench"))
	return err
}

func (o *Optimizer) benchCacheInvalidate(context.Context) error {
	o.cache.Set("bench:tagged", "probe", cache.WithTTL(time.Second), cache.WithTags("bench"))
	o.cache.InvalidateByTags([]string{"bench"})
	return nil
}
