// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Document represents a downloadable official document. File storage is
// external; only the URL and metadata live here.
type Document struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Category      string       `json:"category"`
	FileURL       string       `json:"file_url"`
	FileSize      int64        `json:"file_size"`
	DownloadCount int64        `json:"download_count"`
	PublishedAt   sql.NullTime `json:"published_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Service represents an entry of the public service directory.
type Service struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ContactEmail string    `json:"contact_email"`
	URL          string    `json:"url"`
	Active       bool      `json:"active"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
