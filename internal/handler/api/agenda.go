// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/mesrs/portal-go/internal/model"
	"github.com/mesrs/portal-go/internal/store"
)

const defaultEventLimit = 20

// ListEvents returns upcoming agenda events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultEventLimit)
	if limit <= 0 || limit > 100 {
		limit = defaultEventLimit
	}

	items, err := h.queries.ListUpcomingEvents(r.Context(), time.Now(), limit)
	if err != nil {
		h.writeInternalError(w, "failed to list events", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListAlerts returns the alerts currently active.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListActiveAlerts(r.Context(), time.Now())
	if err != nil {
		h.writeInternalError(w, "failed to list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartsAt    string `json:"starts_at"`          // RFC 3339
	EndsAt      string `json:"ends_at,omitempty"`  // RFC 3339
}

// CreateEvent creates an agenda event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Title == "" {
		writeValidationError(w, "title is required")
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeValidationError(w, "starts_at must be an RFC 3339 timestamp")
		return
	}

	var endsAt sql.NullTime
	if req.EndsAt != "" {
		t, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			writeValidationError(w, "ends_at must be an RFC 3339 timestamp")
			return
		}
		if t.Before(startsAt) {
			writeValidationError(w, "ends_at must not precede starts_at")
			return
		}
		endsAt = sql.NullTime{Time: t, Valid: true}
	}

	id, err := h.queries.CreateAgendaEvent(r.Context(), store.AgendaEventParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	})
	if err != nil {
		h.writeInternalError(w, "failed to create event", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Event created", map[string]any{"id": id})
}

// DeleteEvent deletes an agenda event.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid event id")
		return
	}
	if err := h.queries.DeleteAgendaEvent(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Event")
		return
	}
	writeSuccess(w, http.StatusOK, "Event deleted", nil)
}

type alertRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Level    string `json:"level"`
	StartsAt string `json:"starts_at,omitempty"` // RFC 3339
	EndsAt   string `json:"ends_at,omitempty"`   // RFC 3339
}

// CreateAlert creates an active banner alert.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Title == "" || req.Message == "" {
		writeValidationError(w, "title and message are required")
		return
	}
	switch req.Level {
	case model.AlertLevelInfo, model.AlertLevelWarning, model.AlertLevelUrgent:
	default:
		writeValidationError(w, "level must be info, warning or urgent")
		return
	}

	parseOptional := func(raw string) (sql.NullTime, bool) {
		if raw == "" {
			return sql.NullTime{}, true
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return sql.NullTime{}, false
		}
		return sql.NullTime{Time: t, Valid: true}, true
	}

	startsAt, ok := parseOptional(req.StartsAt)
	if !ok {
		writeValidationError(w, "starts_at must be an RFC 3339 timestamp")
		return
	}
	endsAt, ok := parseOptional(req.EndsAt)
	if !ok {
		writeValidationError(w, "ends_at must be an RFC 3339 timestamp")
		return
	}

	id, err := h.queries.CreateAlert(r.Context(), store.AlertParams{
		Title:    req.Title,
		Message:  req.Message,
		Level:    req.Level,
		Active:   true,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	})
	if err != nil {
		h.writeInternalError(w, "failed to create alert", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Alert created", map[string]any{"id": id})
}

// DeactivateAlert turns an alert off.
func (h *Handler) DeactivateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid alert id")
		return
	}
	if err := h.queries.DeactivateAlert(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Alert")
		return
	}
	writeSuccess(w, http.StatusOK, "Alert deactivated", nil)
}
