// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// News statuses
const (
	NewsStatusDraft     = "draft"
	NewsStatusPublished = "published"
)

// News categories
const (
	NewsCategoryActualites   = "actualites"
	NewsCategoryCommuniques  = "communiques"
	NewsCategoryRecherche    = "recherche"
	NewsCategoryEnseignement = "enseignement"
)

// News represents a news article. The body is authored in Markdown and
// rendered to sanitized HTML on the public endpoint.
type News struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Summary     string       `json:"summary"`
	Body        string       `json:"body"`
	Category    string       `json:"category"`
	Status      string       `json:"status"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsPublished returns true if the article is published.
func (n *News) IsPublished() bool {
	return n.Status == NewsStatusPublished
}
