// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

// RunOptimize runs the full maintenance routine and returns its report.
// Individual step failures are contained in the report; the endpoint
// itself only fails if the request is aborted.
func (h *Handler) RunOptimize(w http.ResponseWriter, r *http.Request) {
	h.log.Info("maintenance run requested", "category", "maintenance")

	report := h.optimizer.Run(r.Context())
	writeJSON(w, http.StatusOK, report)
}
