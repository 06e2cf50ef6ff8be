// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"
)

// GlobalStats returns the sitewide analytics snapshot for the requested
// period (7, 30, 90 or 365 days; anything else falls back to 30).
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.GetGlobalStats(r.Context(), queryInt(r, "period", 30))
	if err != nil {
		h.writeInternalError(w, "failed to compute global stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// NewsStats returns the per-day rollups for one article over a date
// range (default: trailing 30 days).
func (h *Handler) NewsStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid article id")
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeValidationError(w, "start must be YYYY-MM-DD")
			return
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeValidationError(w, "end must be YYYY-MM-DD")
			return
		}
		end = t
	}
	if end.Before(start) {
		writeValidationError(w, "end must not precede start")
		return
	}

	if _, err := h.queries.GetNewsByID(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}

	stats, err := h.analytics.GetNewsStats(r.Context(), id, start, end)
	if err != nil {
		h.writeInternalError(w, "failed to load article stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
