// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

// CacheStats returns hit/miss counters and current sizing.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.cache.Stats()
	cfg := h.cache.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"hits":             stats.Hits,
		"misses":           stats.Misses,
		"sets":             stats.Sets,
		"size":             stats.Size,
		"hit_rate":         stats.HitRate,
		"reset_at":         stats.ResetAt,
		"max_size":         cfg.MaxSize,
		"default_ttl":      cfg.DefaultTTL.String(),
		"cleanup_interval": cfg.CleanupInterval.String(),
	})
}

// CacheDebug returns every live entry with its tags and expiry.
func (h *Handler) CacheDebug(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.DebugInfo())
}

// InvalidateCache drops all entries carrying any of the given tags.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if len(req.Tags) == 0 {
		writeValidationError(w, "At least one tag is required")
		return
	}

	invalidated := h.cache.InvalidateByTags(req.Tags)
	h.log.Info("cache invalidated", "category", "cache", "tags", req.Tags, "entries", invalidated)
	writeSuccess(w, http.StatusOK, "Cache invalidated", map[string]any{"invalidated": invalidated})
}
