// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

const serviceColumns = `id, name, slug, description, category, contact_email, url, active, sort_order, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Category,
		&s.ContactEmail, &s.URL, &s.Active, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListServices returns services ordered by sort order then name.
// When activeOnly is set, inactive entries are excluded (public directory).
func (q *Queries) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// GetServiceByID returns a single service. sql.ErrNoRows if absent.
func (q *Queries) GetServiceByID(ctx context.Context, id int64) (model.Service, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	return scanService(row)
}

// ServiceParams holds fields for creating or updating a service.
type ServiceParams struct {
	Name         string
	Slug         string
	Description  string
	Category     string
	ContactEmail string
	URL          string
	Active       bool
	SortOrder    int
}

// CreateService inserts a service and returns its id.
func (q *Queries) CreateService(ctx context.Context, p ServiceParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO services (name, slug, description, category, contact_email, url, active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Slug, p.Description, p.Category, p.ContactEmail, p.URL, p.Active, p.SortOrder, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateService updates a service. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateService(ctx context.Context, id int64, p ServiceParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE services SET name = ?, slug = ?, description = ?, category = ?,
			contact_email = ?, url = ?, active = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Slug, p.Description, p.Category, p.ContactEmail, p.URL, p.Active, p.SortOrder, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteService removes a service.
func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
