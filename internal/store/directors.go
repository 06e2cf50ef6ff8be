// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

const directorColumns = `id, name, titre, direction, email, phone, active, created_at, updated_at`

func scanDirector(row interface{ Scan(...any) error }) (model.Director, error) {
	var d model.Director
	err := row.Scan(&d.ID, &d.Name, &d.Titre, &d.Direction, &d.Email, &d.Phone,
		&d.Active, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// ListDirectors returns all directors, active first, then by titre.
func (q *Queries) ListDirectors(ctx context.Context, activeOnly bool) ([]model.Director, error) {
	query := `SELECT ` + directorColumns + ` FROM directors`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY active DESC, titre`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Director
	for rows.Next() {
		d, err := scanDirector(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// GetDirectorByID returns a single director. sql.ErrNoRows if absent.
func (q *Queries) GetDirectorByID(ctx context.Context, id int64) (model.Director, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+directorColumns+` FROM directors WHERE id = ?`, id)
	return scanDirector(row)
}

// GetActiveDirectorByTitre returns the active holder of a titre, if any.
// Used for the one-active-holder-per-titre conflict check before writes.
func (q *Queries) GetActiveDirectorByTitre(ctx context.Context, titre string) (model.Director, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+directorColumns+` FROM directors WHERE titre = ? AND active = 1`, titre)
	return scanDirector(row)
}

// DirectorParams holds fields for creating or updating a director.
type DirectorParams struct {
	Name      string
	Titre     string
	Direction string
	Email     string
	Phone     string
	Active    bool
}

// CreateDirector inserts a director and returns its id.
func (q *Queries) CreateDirector(ctx context.Context, p DirectorParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO directors (name, titre, direction, email, phone, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Titre, p.Direction, p.Email, p.Phone, p.Active, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateDirector updates a director. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateDirector(ctx context.Context, id int64, p DirectorParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE directors SET name = ?, titre = ?, direction = ?, email = ?,
			phone = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Titre, p.Direction, p.Email, p.Phone, p.Active, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteDirector removes a director.
func (q *Queries) DeleteDirector(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM directors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
