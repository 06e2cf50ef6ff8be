// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesrs/portal-go/internal/analytics"
	"github.com/mesrs/portal-go/internal/cache"
	"github.com/mesrs/portal-go/internal/middleware"
	"github.com/mesrs/portal-go/internal/model"
	"github.com/mesrs/portal-go/internal/render"
	"github.com/mesrs/portal-go/internal/store"
	"github.com/mesrs/portal-go/internal/util"
)

const (
	defaultNewsLimit = 20
	maxNewsLimit     = 100
)

var newsCategories = map[string]bool{
	model.NewsCategoryActualites:   true,
	model.NewsCategoryCommuniques:  true,
	model.NewsCategoryRecherche:    true,
	model.NewsCategoryEnseignement: true,
}

// ListNews returns published articles, newest first, optionally filtered
// by category.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !newsCategories[category] {
		writeValidationError(w, "Unknown news category: "+category)
		return
	}

	limit := queryInt(r, "limit", defaultNewsLimit)
	if limit <= 0 || limit > maxNewsLimit {
		limit = defaultNewsLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.queries.ListPublishedNews(r.Context(), category, limit, offset)
	if err != nil {
		h.writeInternalError(w, "failed to list news", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// newsDetail is the public article payload: the stored fields plus the
// rendered body.
type newsDetail struct {
	model.News
	BodyHTML string `json:"body_html"`
}

// GetNews returns one published article and records the view. The id
// parameter accepts a numeric id or a slug.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	item, err := h.lookupNews(r)
	if err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}
	if !item.IsPublished() {
		writeNotFound(w, "Article not found")
		return
	}

	html, err := render.Markdown(item.Body)
	if err != nil {
		h.writeInternalError(w, "failed to render article body", err)
		return
	}

	h.analytics.TrackView(r.Context(), item.ID, h.visitorContext(r))

	writeJSON(w, http.StatusOK, newsDetail{News: item, BodyHTML: html})
}

// ShareNews records a share event for a published article.
func (h *Handler) ShareNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid article id")
		return
	}

	var req struct {
		Network string `json:"network"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Network == "" {
		writeValidationError(w, "Share network is required")
		return
	}

	item, err := h.queries.GetNewsByID(r.Context(), id)
	if err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}
	if !item.IsPublished() {
		writeNotFound(w, "Article not found")
		return
	}

	h.analytics.TrackShare(r.Context(), item.ID, req.Network, h.visitorContext(r))
	writeSuccess(w, http.StatusOK, "Share recorded", nil)
}

func (h *Handler) lookupNews(r *http.Request) (model.News, error) {
	if id, err := parseID(r); err == nil {
		return h.queries.GetNewsByID(r.Context(), id)
	}
	slug := chi.URLParam(r, "id")
	if !util.IsValidSlug(slug) {
		return model.News{}, sql.ErrNoRows
	}
	return h.queries.GetNewsBySlug(r.Context(), slug)
}

// AdminListNews returns all articles including drafts.
func (h *Handler) AdminListNews(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListAllNews(r.Context())
	if err != nil {
		h.writeInternalError(w, "failed to list news", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type newsRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (req *newsRequest) validate() error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if !newsCategories[req.Category] {
		return errors.New("unknown news category: " + req.Category)
	}
	if req.Status != model.NewsStatusDraft && req.Status != model.NewsStatusPublished {
		return errors.New("status must be draft or published")
	}
	if req.Slug != "" && !util.IsValidSlug(req.Slug) {
		return errors.New("slug may contain only lowercase letters, digits and hyphens")
	}
	return nil
}

// CreateNews creates an article. A missing slug is derived from the
// title; publishing sets published_at.
func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}

	var publishedAt sql.NullTime
	if req.Status == model.NewsStatusPublished {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	id, err := h.queries.CreateNews(r.Context(), store.CreateNewsParams{
		Title:       req.Title,
		Slug:        slug,
		Summary:     req.Summary,
		Body:        req.Body,
		Category:    req.Category,
		Status:      req.Status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		h.writeInternalError(w, "failed to create news", err)
		return
	}

	h.cache.InvalidateByTags([]string{cache.TagNews})
	writeSuccess(w, http.StatusCreated, "Article created", map[string]any{"id": id, "slug": slug})
}

// UpdateNews updates an article. Moving a draft to published stamps
// published_at; an already-published article keeps its original date.
func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid article id")
		return
	}

	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	existing, err := h.queries.GetNewsByID(r.Context(), id)
	if err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = existing.Slug
	}

	publishedAt := existing.PublishedAt
	if req.Status == model.NewsStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	err = h.queries.UpdateNews(r.Context(), store.UpdateNewsParams{
		ID:          id,
		Title:       req.Title,
		Slug:        slug,
		Summary:     req.Summary,
		Body:        req.Body,
		Category:    req.Category,
		Status:      req.Status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}

	h.cache.InvalidateByTags([]string{cache.TagNews})
	writeSuccess(w, http.StatusOK, "Article updated", nil)
}

// DeleteNews deletes an article and its analytics rows.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid article id")
		return
	}

	if err := h.queries.DeleteNews(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Article")
		return
	}

	h.cache.InvalidateByTags([]string{cache.TagNews, cache.TagAnalytics})
	writeSuccess(w, http.StatusOK, "Article deleted", nil)
}

func (h *Handler) visitorContext(r *http.Request) analytics.ViewContext {
	return analytics.ViewContext{
		SessionID:       r.Header.Get("X-Session-ID"),
		IP:              middleware.ClientIP(r),
		UserAgent:       r.UserAgent(),
		ReadingTimeSecs: queryInt(r, "rt", 0),
		ScrollDepthPct:  queryInt(r, "sd", 0),
	}
}
