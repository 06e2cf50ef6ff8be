// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/mesrs/portal-go/internal/cache"
)

// Cache tuning thresholds. The two rules are independent: a hot,
// well-filled cache grows; a cold one keeps entries for less time.
const (
	growHitRate   = 90
	growMinSize   = 800
	shrinkHitRate = 50
	sizeGrowth    = 1.5
)

const prewarmTTL = 10 * time.Minute

func (o *Optimizer) cacheSteps() []step {
	return []step{
		{"sweep_expired", o.sweepExpired},
		{"tune_config", o.tuneConfig},
		{"prewarm_top_news", o.prewarmTopNews},
		{"prewarm_global_stats", o.prewarmGlobalStats},
	}
}

func (o *Optimizer) sweepExpired(context.Context) (string, error) {
	removed := o.cache.Cleanup()
	return fmt.Sprintf("swept %d expired entries", removed), nil
}

// tuneConfig applies the tuning rules to the live cache config.
func (o *Optimizer) tuneConfig(context.Context) (string, error) {
	stats := o.cache.Stats()
	cfg := o.cache.Config()

	tuned, change := TuneCacheConfig(cfg, stats.HitRate, stats.Size, o.cfg.MaxCacheSize, o.cfg.MinDefaultTTL)
	if change == "" {
		return fmt.Sprintf("config unchanged (hit rate %.1f%%, size %d)", stats.HitRate, stats.Size), nil
	}

	o.cache.SetConfig(tuned)
	o.log.Info("cache config tuned", "change", change, "hit_rate", stats.HitRate, "size", stats.Size)
	return change, nil
}

// TuneCacheConfig returns an adjusted config and a description of the
// change, or the input config and "" when neither rule fires. hitRate
// is a percentage, size the current entry count.
func TuneCacheConfig(cfg cache.Config, hitRate float64, size, maxSize int, minTTL time.Duration) (cache.Config, string) {
	switch {
	case hitRate > growHitRate && size > growMinSize:
		grown := int(float64(cfg.MaxSize) * sizeGrowth)
		if grown > maxSize {
			grown = maxSize
		}
		if grown <= cfg.MaxSize {
			return cfg, ""
		}
		change := fmt.Sprintf("raised max size %d -> %d", cfg.MaxSize, grown)
		cfg.MaxSize = grown
		return cfg, change

	case hitRate < shrinkHitRate:
		halved := cfg.DefaultTTL / 2
		if halved < minTTL {
			halved = minTTL
		}
		if halved >= cfg.DefaultTTL {
			return cfg, ""
		}
		change := fmt.Sprintf("lowered default TTL %s -> %s", cfg.DefaultTTL, halved)
		cfg.DefaultTTL = halved
		return cfg, change
	}
	return cfg, ""
}

// prewarmTopNews pre-caches the most viewed published articles so the
// first dashboard hit after maintenance is already warm.
func (o *Optimizer) prewarmTopNews(ctx context.Context) (string, error) {
	top, err := o.queries.TopPublishedNewsByViews(ctx, 30, o.cfg.PrewarmTopNews)
	if err != nil {
		return "", err
	}

	o.cache.Set(cache.TopNewsKey(o.cfg.PrewarmTopNews), top,
		cache.WithTTL(prewarmTTL),
		cache.WithTags(cache.TagNews, cache.TagPrewarm))

	for _, item := range top {
		o.cache.Set(cache.NewsItemKey(item.News.ID), item.News,
			cache.WithTTL(prewarmTTL),
			cache.WithTags(cache.TagNews, cache.TagPrewarm))
	}
	return fmt.Sprintf("pre-warmed %d top articles", len(top)), nil
}

// prewarmGlobalStats forces a fresh global snapshot into the cache.
func (o *Optimizer) prewarmGlobalStats(ctx context.Context) (string, error) {
	o.cache.InvalidateByTags([]string{cache.TagStats})
	if _, err := o.analytics.GetGlobalStats(ctx, 30); err != nil {
		return "", err
	}
	return "pre-warmed 30-day global stats snapshot", nil
}
