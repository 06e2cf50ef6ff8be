// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/mesrs/portal-go/internal/store"
)

// ListDirectors returns the active directorate holders.
func (h *Handler) ListDirectors(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListDirectors(r.Context(), true)
	if err != nil {
		h.writeInternalError(w, "failed to list directors", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AdminListDirectors returns all directors including inactive ones.
func (h *Handler) AdminListDirectors(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListDirectors(r.Context(), false)
	if err != nil {
		h.writeInternalError(w, "failed to list directors", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type directorRequest struct {
	Name      string `json:"name"`
	Titre     string `json:"titre"`
	Direction string `json:"direction"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
}

func (req *directorRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Titre == "" {
		return errors.New("titre is required")
	}
	return nil
}

// checkTitreConflict enforces the single-active-holder rule: at most one
// active director per titre. Returns the conflict message naming the
// current holder, or "" when the titre is free.
func (h *Handler) checkTitreConflict(r *http.Request, titre string, excludeID int64) (string, error) {
	holder, err := h.queries.GetActiveDirectorByTitre(r.Context(), titre)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if holder.ID == excludeID {
		return "", nil
	}
	return fmt.Sprintf("Le titre %q est déjà porté par %s", titre, holder.Name), nil
}

// CreateDirector creates a director, rejecting a second active holder of
// the same titre with a conflict naming the current one.
func (h *Handler) CreateDirector(w http.ResponseWriter, r *http.Request) {
	var req directorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if req.Active {
		conflict, err := h.checkTitreConflict(r, req.Titre, 0)
		if err != nil {
			h.writeInternalError(w, "failed to check titre", err)
			return
		}
		if conflict != "" {
			writeConflict(w, conflict)
			return
		}
	}

	id, err := h.queries.CreateDirector(r.Context(), store.DirectorParams{
		Name:      req.Name,
		Titre:     req.Titre,
		Direction: req.Direction,
		Email:     req.Email,
		Phone:     req.Phone,
		Active:    req.Active,
	})
	if err != nil {
		h.writeInternalError(w, "failed to create director", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Director created", map[string]any{"id": id})
}

// UpdateDirector updates a director under the same titre invariant.
func (h *Handler) UpdateDirector(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid director id")
		return
	}

	var req directorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if req.Active {
		conflict, err := h.checkTitreConflict(r, req.Titre, id)
		if err != nil {
			h.writeInternalError(w, "failed to check titre", err)
			return
		}
		if conflict != "" {
			writeConflict(w, conflict)
			return
		}
	}

	err = h.queries.UpdateDirector(r.Context(), id, store.DirectorParams{
		Name:      req.Name,
		Titre:     req.Titre,
		Direction: req.Direction,
		Email:     req.Email,
		Phone:     req.Phone,
		Active:    req.Active,
	})
	if err != nil {
		h.notFoundOrInternal(w, err, "Director")
		return
	}
	writeSuccess(w, http.StatusOK, "Director updated", nil)
}

// DeleteDirector deletes a director.
func (h *Handler) DeleteDirector(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid director id")
		return
	}
	if err := h.queries.DeleteDirector(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Director")
		return
	}
	writeSuccess(w, http.StatusOK, "Director deleted", nil)
}
