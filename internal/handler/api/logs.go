// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/mesrs/portal-go/internal/store"
)

const maxLogPage = 500

// ListLogs returns persisted log entries, newest first, filtered by
// level and category.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > maxLogPage {
		limit = 100
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.queries.ListLogs(r.Context(), store.LogFilter{
		Level:    r.URL.Query().Get("level"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.writeInternalError(w, "failed to list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// LogStats returns per-level counts and the covered time range.
func (h *Handler) LogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.GetLogStats(r.Context())
	if err != nil {
		h.writeInternalError(w, "failed to load log stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportLogs streams the filtered log entries as a CSV download.
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListLogs(r.Context(), store.LogFilter{
		Level:    r.URL.Query().Get("level"),
		Category: r.URL.Query().Get("category"),
		Limit:    10000,
	})
	if err != nil {
		h.writeInternalError(w, "failed to export logs", err)
		return
	}

	filename := fmt.Sprintf("system-logs-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "created_at", "level", "category", "message", "metadata"})
	for _, entry := range items {
		_ = cw.Write([]string{
			fmt.Sprintf("%d", entry.ID),
			entry.CreatedAt.Format(time.RFC3339),
			entry.Level,
			entry.Category,
			entry.Message,
			entry.Metadata,
		})
	}
	cw.Flush()
}

// ClearLogs deletes all persisted log entries.
func (h *Handler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.queries.ClearLogs(r.Context())
	if err != nil {
		h.writeInternalError(w, "failed to clear logs", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Logs cleared", map[string]any{"deleted": deleted})
}
