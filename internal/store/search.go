// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

// SearchResult is a single cross-content search hit.
type SearchResult struct {
	Type    string `json:"type"` // news | service | document | establishment
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search runs a cross-content substring search. The raw term is tried
// as typed, and the folded term against fold()-stripped columns, so
// accented French titles match unaccented queries and vice versa.
func (q *Queries) Search(ctx context.Context, term, folded string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	raw := "%" + term + "%"
	fold := "%" + folded + "%"

	rows, err := q.db.QueryContext(ctx, `
		SELECT 'news', id, title, summary FROM news
		WHERE status = 'published' AND (title LIKE ?1 OR fold(title) LIKE ?2 OR summary LIKE ?1 OR fold(summary) LIKE ?2)
		UNION ALL
		SELECT 'service', id, name, description FROM services
		WHERE active = 1 AND (name LIKE ?1 OR fold(name) LIKE ?2 OR description LIKE ?1 OR fold(description) LIKE ?2)
		UNION ALL
		SELECT 'document', id, title, category FROM documents
		WHERE title LIKE ?1 OR fold(title) LIKE ?2
		UNION ALL
		SELECT 'establishment', id, name, city FROM establishments
		WHERE name LIKE ?1 OR fold(name) LIKE ?2 OR city LIKE ?1 OR fold(city) LIKE ?2
		LIMIT ?3
	`, raw, fold, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Type, &r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
