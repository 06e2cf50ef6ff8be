// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/mesrs/portal-go/internal/model"
	"github.com/mesrs/portal-go/internal/store"
)

var establishmentTypes = map[string]bool{
	model.EstablishmentUniversite: true,
	model.EstablishmentInstitut:   true,
	model.EstablishmentEcole:      true,
	model.EstablishmentCentre:     true,
}

// ListEstablishments returns institutions filtered by region and type.
func (h *Handler) ListEstablishments(w http.ResponseWriter, r *http.Request) {
	f := store.EstablishmentFilter{
		Region: r.URL.Query().Get("region"),
		Type:   r.URL.Query().Get("type"),
	}
	if f.Type != "" && !establishmentTypes[f.Type] {
		writeValidationError(w, "Unknown establishment type: "+f.Type)
		return
	}

	items, err := h.queries.ListEstablishments(r.Context(), f)
	if err != nil {
		h.writeInternalError(w, "failed to list establishments", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type establishmentRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Region       string   `json:"region"`
	City         string   `json:"city"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Website      string   `json:"website"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	StudentCount int64    `json:"student_count"`
}

func (req *establishmentRequest) params() (store.EstablishmentParams, error) {
	if req.Name == "" {
		return store.EstablishmentParams{}, errors.New("name is required")
	}
	if !establishmentTypes[req.Type] {
		return store.EstablishmentParams{}, errors.New("unknown establishment type: " + req.Type)
	}
	// Coordinates come in pairs or not at all.
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return store.EstablishmentParams{}, errors.New("latitude and longitude must be set together")
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return store.EstablishmentParams{}, errors.New("latitude must be between -90 and 90")
		}
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return store.EstablishmentParams{}, errors.New("longitude must be between -180 and 180")
		}
	}
	if req.Website != "" {
		u, err := url.Parse(req.Website)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return store.EstablishmentParams{}, errors.New("website must be a valid absolute URL")
		}
	}

	return store.EstablishmentParams{
		Name:         req.Name,
		Type:         req.Type,
		Region:       req.Region,
		City:         req.City,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Website:      req.Website,
		Email:        req.Email,
		Phone:        req.Phone,
		StudentCount: req.StudentCount,
	}, nil
}

// CreateEstablishment creates an institution record.
func (h *Handler) CreateEstablishment(w http.ResponseWriter, r *http.Request) {
	var req establishmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	id, err := h.queries.CreateEstablishment(r.Context(), params)
	if err != nil {
		h.writeInternalError(w, "failed to create establishment", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Establishment created", map[string]any{"id": id})
}

// UpdateEstablishment updates an institution record.
func (h *Handler) UpdateEstablishment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid establishment id")
		return
	}

	var req establishmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := h.queries.UpdateEstablishment(r.Context(), id, params); err != nil {
		h.notFoundOrInternal(w, err, "Establishment")
		return
	}
	writeSuccess(w, http.StatusOK, "Establishment updated", nil)
}

// DeleteEstablishment deletes an institution record.
func (h *Handler) DeleteEstablishment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid establishment id")
		return
	}
	if err := h.queries.DeleteEstablishment(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Establishment")
		return
	}
	writeSuccess(w, http.StatusOK, "Establishment deleted", nil)
}
