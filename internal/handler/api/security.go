// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesrs/portal-go/internal/middleware"
)

var secretNameRe = regexp.MustCompile(`^[a-z0-9_.-]{1,64}$`)

// ListSecrets returns the tracked secrets without their values.
func (h *Handler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListSecrets(r.Context())
	if err != nil {
		h.writeInternalError(w, "failed to list secrets", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// RotateSecret generates a fresh value for the named secret, stores only
// its bcrypt hash and returns the plaintext once. Rotating an existing
// name replaces the previous value.
func (h *Handler) RotateSecret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if !secretNameRe.MatchString(req.Name) {
		writeValidationError(w, "Secret name must be 1-64 lowercase letters, digits, dots, dashes or underscores")
		return
	}

	plaintext := uuid.NewString() + uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		h.writeInternalError(w, "failed to hash secret", err)
		return
	}

	if err := h.queries.UpsertSecret(r.Context(), req.Name, string(hash)); err != nil {
		h.writeInternalError(w, "failed to store secret", err)
		return
	}

	h.log.Info("secret rotated", "category", "security", "name", req.Name)
	writeSuccess(w, http.StatusCreated, "Secret rotated; the value is shown only once", map[string]any{
		"name":  req.Name,
		"value": plaintext,
	})
}

// DeleteSecret removes a tracked secret.
func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !secretNameRe.MatchString(name) {
		writeValidationError(w, "Invalid secret name")
		return
	}
	if err := h.queries.DeleteSecret(r.Context(), name); err != nil {
		h.notFoundOrInternal(w, err, "Secret")
		return
	}
	writeSuccess(w, http.StatusOK, "Secret deleted", nil)
}

// GetRateLimits returns the live public rate limiter settings.
func (h *Handler) GetRateLimits(w http.ResponseWriter, _ *http.Request) {
	limits := h.limiter.Limits()
	writeJSON(w, http.StatusOK, map[string]any{
		"per_minute": limits.PerMinute,
		"burst":      limits.Burst,
	})
}

// UpdateRateLimits retunes the public rate limiter. Existing client
// buckets are reset so the new limits apply immediately.
func (h *Handler) UpdateRateLimits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PerMinute int `json:"per_minute"`
		Burst     int `json:"burst"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.PerMinute <= 0 || req.Burst <= 0 {
		writeValidationError(w, "per_minute and burst must be positive")
		return
	}

	h.limiter.SetLimits(middleware.Limits{PerMinute: req.PerMinute, Burst: req.Burst})
	h.log.Info("rate limits updated", "category", "security",
		"per_minute", req.PerMinute, "burst", req.Burst)
	writeSuccess(w, http.StatusOK, "Rate limits updated", nil)
}
