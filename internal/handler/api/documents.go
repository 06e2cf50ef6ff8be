// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/mesrs/portal-go/internal/store"
)

// ListDocuments returns downloadable documents, optionally by category.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListDocuments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeInternalError(w, "failed to list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// DownloadDocument increments the download counter and returns the file
// URL. The file itself is served by external storage.
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid document id")
		return
	}

	doc, err := h.queries.GetDocumentByID(r.Context(), id)
	if err != nil {
		h.notFoundOrInternal(w, err, "Document")
		return
	}

	if err := h.queries.IncrementDownloadCount(r.Context(), id); err != nil {
		h.log.Warn("failed to count download", "document_id", id, "error", err)
	}

	writeSuccess(w, http.StatusOK, "Download recorded", map[string]any{"file_url": doc.FileURL})
}

type documentRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	FileURL     string `json:"file_url"`
	FileSize    int64  `json:"file_size"`
	PublishedAt string `json:"published_at,omitempty"` // YYYY-MM-DD
}

func (req *documentRequest) params() (store.DocumentParams, error) {
	if req.Title == "" {
		return store.DocumentParams{}, errors.New("title is required")
	}
	if req.FileURL == "" {
		return store.DocumentParams{}, errors.New("file_url is required")
	}

	var publishedAt sql.NullTime
	if req.PublishedAt != "" {
		t, err := time.Parse("2006-01-02", req.PublishedAt)
		if err != nil {
			return store.DocumentParams{}, errors.New("published_at must be YYYY-MM-DD")
		}
		publishedAt = sql.NullTime{Time: t, Valid: true}
	}

	return store.DocumentParams{
		Title:       req.Title,
		Category:    req.Category,
		FileURL:     req.FileURL,
		FileSize:    req.FileSize,
		PublishedAt: publishedAt,
	}, nil
}

// CreateDocument creates a document record.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	id, err := h.queries.CreateDocument(r.Context(), params)
	if err != nil {
		h.writeInternalError(w, "failed to create document", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Document created", map[string]any{"id": id})
}

// UpdateDocument updates a document record.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid document id")
		return
	}

	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := h.queries.UpdateDocument(r.Context(), id, params); err != nil {
		h.notFoundOrInternal(w, err, "Document")
		return
	}
	writeSuccess(w, http.StatusOK, "Document updated", nil)
}

// DeleteDocument deletes a document record.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, "Invalid document id")
		return
	}
	if err := h.queries.DeleteDocument(r.Context(), id); err != nil {
		h.notFoundOrInternal(w, err, "Document")
		return
	}
	writeSuccess(w, http.StatusOK, "Document deleted", nil)
}
