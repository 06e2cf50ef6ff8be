// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/model"
)

// statsTTL bounds how stale the public figures may be. The underlying
// rows change a few times a year; five minutes is plenty.
const statsTTL = 5 * time.Minute

var statKinds = map[string]bool{
	model.StatKindStudents:     true,
	model.StatKindTeachers:     true,
	model.StatKindInstitutions: true,
}

// GetStats serves the public ministry figures. Responses are cached as
// rendered JSON in the response store so the hot homepage widgets never
// hit SQLite.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != "homepage" && !statKinds[kind] {
		writeNotFound(w, "Unknown stats kind: "+kind)
		return
	}

	key := "stats:" + kind
	if body, err := h.resp.Get(r.Context(), key); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(body)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.log.Warn("response cache read failed", "key", key, "error", err)
	}

	var payload any
	var err error
	if kind == "homepage" {
		payload, err = h.queries.GetHomepageCounts(r.Context())
	} else {
		payload, err = h.queries.ListStatsByKind(r.Context(), kind)
	}
	if err != nil {
		h.writeInternalError(w, "failed to load stats", err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.writeInternalError(w, "failed to encode stats", err)
		return
	}

	if err := h.resp.Set(r.Context(), key, body, statsTTL); err != nil {
		h.log.Warn("response cache write failed", "key", key, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(body)
}
