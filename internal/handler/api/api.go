// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the portal: public
// content endpoints and the admin back office.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/maintenance"
	"github.com/mesrs/portal-go/internal/middleware"
	"github.com/mesrs/portal-go/internal/store"
)

// maxBodyBytes caps JSON request bodies. Article bodies are the largest
// legitimate payload; 1 MiB leaves generous headroom.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	cache     *cache.Cache
	resp      cache.Store
	analytics *analytics.Service
	optimizer *maintenance.Optimizer
	limiter   *middleware.RateLimiter
	log       *slog.Logger
}

// NewHandler creates the API handler with its dependencies.
func NewHandler(db *sql.DB, c *cache.Cache, resp cache.Store, svc *analytics.Service,
	opt *maintenance.Optimizer, limiter *middleware.RateLimiter, logger *slog.Logger) *Handler {
	return &Handler{
		db:        db,
		queries:   store.New(db),
		cache:     c,
		resp:      resp,
		analytics: svc,
		optimizer: opt,
		limiter:   limiter,
		log:       logger.With("component", "api"),
	}
}

// Routes mounts the public and admin API routes. The admin subtree is
// guarded by the bearer token; the public subtree by the rate limiter.
func (h *Handler) Routes(adminToken string) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.limiter.Middleware())

		r.Get("/news", h.ListNews)
		r.Get("/news/{id}", h.GetNews)
		r.Post("/news/{id}/share", h.ShareNews)
		r.Get("/documents", h.ListDocuments)
		r.Post("/documents/{id}/download", h.DownloadDocument)
		r.Get("/establishments", h.ListEstablishments)
		r.Get("/directors", h.ListDirectors)
		r.Get("/services", h.ListServices)
		r.Get("/events", h.ListEvents)
		r.Get("/alerts", h.ListAlerts)
		r.Get("/search", h.Search)
		r.Get("/stats/{kind}", h.GetStats)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(adminToken))

		r.Get("/news", h.AdminListNews)
		r.Post("/news", h.CreateNews)
		r.Put("/news/{id}", h.UpdateNews)
		r.Delete("/news/{id}", h.DeleteNews)

		r.Get("/directors", h.AdminListDirectors)
		r.Post("/directors", h.CreateDirector)
		r.Put("/directors/{id}", h.UpdateDirector)
		r.Delete("/directors/{id}", h.DeleteDirector)

		r.Post("/establishments", h.CreateEstablishment)
		r.Put("/establishments/{id}", h.UpdateEstablishment)
		r.Delete("/establishments/{id}", h.DeleteEstablishment)

		r.Post("/documents", h.CreateDocument)
		r.Put("/documents/{id}", h.UpdateDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)

		r.Get("/services", h.AdminListServices)
		r.Post("/services", h.CreateService)
		r.Put("/services/{id}", h.UpdateService)
		r.Delete("/services/{id}", h.DeleteService)

		r.Post("/events", h.CreateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Post("/alerts", h.CreateAlert)
		r.Post("/alerts/{id}/deactivate", h.DeactivateAlert)

		r.Get("/logs", h.ListLogs)
		r.Get("/logs/stats", h.LogStats)
		r.Get("/logs/export", h.ExportLogs)
		r.Post("/logs/clear", h.ClearLogs)

		r.Get("/security/secrets", h.ListSecrets)
		r.Post("/security/secrets", h.RotateSecret)
		r.Delete("/security/secrets/{name}", h.DeleteSecret)
		r.Get("/security/rate-limits", h.GetRateLimits)
		r.Put("/security/rate-limits", h.UpdateRateLimits)

		r.Get("/cache/stats", h.CacheStats)
		r.Get("/cache/debug", h.CacheDebug)
		r.Post("/cache/invalidate", h.InvalidateCache)

		r.Get("/analytics/global", h.GlobalStats)
		r.Get("/analytics/news/{id}", h.NewsStats)

		r.Post("/maintenance/optimize", h.RunOptimize)
	})

	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess writes the standard mutation response.
func writeSuccess(w http.ResponseWriter, statusCode int, message string, extra map[string]any) {
	data := map[string]any{"success": true, "message": message}
	for k, v := range extra {
		data[k] = v
	}
	writeJSON(w, statusCode, data)
}

// writeError writes the standard error response with a machine code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "validation_error", message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, "conflict", message)
}

func (h *Handler) writeInternalError(w http.ResponseWriter, logMsg string, err error) {
	h.log.Error(logMsg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseID parses the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// notFoundOrInternal maps sql.ErrNoRows to a 404 and everything else to
// a 500, keeping the two failure modes distinct in the API.
func (h *Handler) notFoundOrInternal(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, entity+" not found")
		return
	}
	h.writeInternalError(w, "database error", err)
}
