// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

const newsColumns = `id, title, slug, summary, body, category, status, published_at, created_at, updated_at`

func scanNews(row interface{ Scan(...any) error }) (model.News, error) {
	var n model.News
	err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.Summary, &n.Body, &n.Category,
		&n.Status, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// ListPublishedNews returns published articles, newest first.
func (q *Queries) ListPublishedNews(ctx context.Context, category string, limit, offset int) ([]model.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE status = ?`
	args := []any{model.NewsStatusPublished}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// ListAllNews returns all articles for the admin screen, newest first.
func (q *Queries) ListAllNews(ctx context.Context) ([]model.News, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// GetNewsByID returns a single article. sql.ErrNoRows if absent.
func (q *Queries) GetNewsByID(ctx context.Context, id int64) (model.News, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
	return scanNews(row)
}

// GetNewsBySlug returns a single article by its slug.
func (q *Queries) GetNewsBySlug(ctx context.Context, slug string) (model.News, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE slug = ?`, slug)
	return scanNews(row)
}

// CreateNewsParams holds fields for creating an article.
type CreateNewsParams struct {
	Title       string
	Slug        string
	Summary     string
	Body        string
	Category    string
	Status      string
	PublishedAt sql.NullTime
}

// CreateNews inserts an article and returns its id.
func (q *Queries) CreateNews(ctx context.Context, p CreateNewsParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO news (title, slug, summary, body, category, status, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Slug, p.Summary, p.Body, p.Category, p.Status, p.PublishedAt, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateNewsParams holds fields for updating an article.
type UpdateNewsParams struct {
	ID          int64
	Title       string
	Slug        string
	Summary     string
	Body        string
	Category    string
	Status      string
	PublishedAt sql.NullTime
}

// UpdateNews updates an article. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateNews(ctx context.Context, p UpdateNewsParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE news SET title = ?, slug = ?, summary = ?, body = ?, category = ?,
			status = ?, published_at = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Slug, p.Summary, p.Body, p.Category, p.Status, p.PublishedAt, time.Now(), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteNews removes an article and, via foreign keys, its events and stats.
func (q *Queries) DeleteNews(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// NewsViewCount pairs an article with its accumulated view total.
type NewsViewCount struct {
	News       model.News `json:"news"`
	TotalViews int64      `json:"total_views"`
}

// TopPublishedNewsByViews returns the most viewed published articles over
// the trailing days window, ordered by views descending. Ties keep
// storage order.
func (q *Queries) TopPublishedNewsByViews(ctx context.Context, days, limit int) ([]NewsViewCount, error) {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := q.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.slug, n.summary, n.body, n.category, n.status,
			n.published_at, n.created_at, n.updated_at,
			COALESCE(SUM(s.total_views), 0) AS total_views
		FROM news n
		LEFT JOIN daily_news_stats s ON s.news_id = n.id AND s.date >= ?
		WHERE n.status = ?
		GROUP BY n.id
		ORDER BY total_views DESC
		LIMIT ?
	`, since, model.NewsStatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []NewsViewCount
	for rows.Next() {
		var it NewsViewCount
		if err := rows.Scan(&it.News.ID, &it.News.Title, &it.News.Slug, &it.News.Summary,
			&it.News.Body, &it.News.Category, &it.News.Status, &it.News.PublishedAt,
			&it.News.CreatedAt, &it.News.UpdatedAt, &it.TotalViews); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// requireRow converts a zero-rows-affected result into sql.ErrNoRows so
// handlers can distinguish not-found from other failures.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
