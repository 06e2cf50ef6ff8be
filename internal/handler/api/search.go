// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/mesrs/portal-go/internal/util"
)

const (
	minSearchLength  = 2
	maxSearchResults = 50
)

// Search runs the cross-content search. The query is matched both as
// typed and with diacritics stripped, so "federation" finds
// "Fédération" and the reverse.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(term)) < minSearchLength {
		writeValidationError(w, "Search query must be at least 2 characters")
		return
	}

	limit := queryInt(r, "limit", maxSearchResults)
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	results, err := h.queries.Search(r.Context(), term, util.Fold(term), limit)
	if err != nil {
		h.writeInternalError(w, "search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
