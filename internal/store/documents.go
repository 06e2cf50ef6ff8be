// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

const documentColumns = `id, title, category, file_url, file_size, download_count, published_at, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (model.Document, error) {
	var d model.Document
	err := row.Scan(&d.ID, &d.Title, &d.Category, &d.FileURL, &d.FileSize,
		&d.DownloadCount, &d.PublishedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// ListDocuments returns documents, optionally filtered by category, newest first.
func (q *Queries) ListDocuments(ctx context.Context, category string) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// GetDocumentByID returns a single document. sql.ErrNoRows if absent.
func (q *Queries) GetDocumentByID(ctx context.Context, id int64) (model.Document, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// DocumentParams holds fields for creating or updating a document.
type DocumentParams struct {
	Title       string
	Category    string
	FileURL     string
	FileSize    int64
	PublishedAt sql.NullTime
}

// CreateDocument inserts a document and returns its id.
func (q *Queries) CreateDocument(ctx context.Context, p DocumentParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO documents (title, category, file_url, file_size, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Category, p.FileURL, p.FileSize, p.PublishedAt, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateDocument updates a document. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateDocument(ctx context.Context, id int64, p DocumentParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE documents SET title = ?, category = ?, file_url = ?, file_size = ?,
			published_at = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Category, p.FileURL, p.FileSize, p.PublishedAt, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteDocument removes a document.
func (q *Queries) DeleteDocument(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// IncrementDownloadCount bumps a document's download counter.
func (q *Queries) IncrementDownloadCount(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE documents SET download_count = download_count + 1 WHERE id = ?`, id)
	return err
}
