// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/mesrs/portal-go/internal/store"
	"github.com/mesrs/portal-go/internal/util"
)

// ListServices returns active service directory entries in sort order.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListServices(r.Context(), true)
	if err != nil {
		h.writeInternalError(w, "failed to list services", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AdminListServices returns all services including inactive ones.
func (h *Handler) AdminListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListServices(r.Context(), false)
	if err != nil {
		h.writeInternalError(w, "failed to list services", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type serviceRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ContactEmail string `json:"contact_email"`
	URL          string `json:"url"`
	Active       bool   `json:"active"`
	SortOrder    int    `json:"sort_order"`
}

func (req *serviceRequest) params() (store.ServiceParams, error) {
	if req.Name == "" {
		return store.ServiceParams{}, errors.New("name is required")
	}
	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Name)
	} else if !util.IsValidSlug(slug) {
		return store.ServiceParams{}, errors.New("slug may contain only lowercase letters, digits and hyphens")
	}

	return store.ServiceParams{
		Name:         req.Name,
		Slug:         slug,
		Description:  req.Description,
		Category:     req.Category,
		ContactEmail: req.ContactEmail,
		URL:          req.URL,
		Active:       req.Active,
		SortOrder:    req.SortOrder,
	}, nil
}

// CreateService creates a service directory entry.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	id, err := h.queries.CreateService(r.Context(), params)
	if err != nil {
		h.writeInternalError(w, "failed to create service", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Service created", map[string]any{"id": id, "slug": params.Slug})
}

// UpdateService updates a service directory entry.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid service id")
		return
	}

	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := h.queries.UpdateService(r.Context(), id, params); err != nil {
		h.notFoundOrInternal(w, err, "Service")
		return
	}
	writeSuccess(w, http.StatusOK, "Service updated", nil)
}

// DeleteService deletes a service directory entry.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid service id")
		return
	}
	if err := h.queries.DeleteService(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Service")
		return
	}
	writeSuccess(w, http.StatusOK, "Service deleted", nil)
}
