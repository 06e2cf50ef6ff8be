// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

const establishmentColumns = `id, name, type, region, city, address, latitude, longitude,
	website, email, phone, student_count, created_at, updated_at`

func scanEstablishment(row interface{ Scan(...any) error }) (model.Establishment, error) {
	var e model.Establishment
	err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Region, &e.City, &e.Address,
		&e.Latitude, &e.Longitude, &e.Website, &e.Email, &e.Phone,
		&e.StudentCount, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// EstablishmentFilter narrows ListEstablishments. Empty fields match all.
type EstablishmentFilter struct {
	Region string
	Type   string
}

// ListEstablishments returns establishments matching the filter, by name.
func (q *Queries) ListEstablishments(ctx context.Context, f EstablishmentFilter) ([]model.Establishment, error) {
	query := `SELECT ` + establishmentColumns + ` FROM establishments WHERE 1=1`
	var args []any
	if f.Region != "" {
		query += ` AND region = ?`
		args = append(args, f.Region)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY name`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Establishment
	for rows.Next() {
		e, err := scanEstablishment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// GetEstablishmentByID returns a single establishment. sql.ErrNoRows if absent.
func (q *Queries) GetEstablishmentByID(ctx context.Context, id int64) (model.Establishment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+establishmentColumns+` FROM establishments WHERE id = ?`, id)
	return scanEstablishment(row)
}

// EstablishmentParams holds fields for creating or updating an establishment.
type EstablishmentParams struct {
	Name         string
	Type         string
	Region       string
	City         string
	Address      string
	Latitude     *float64
	Longitude    *float64
	Website      string
	Email        string
	Phone        string
	StudentCount int64
}

// CreateEstablishment inserts an establishment and returns its id.
func (q *Queries) CreateEstablishment(ctx context.Context, p EstablishmentParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO establishments (name, type, region, city, address, latitude, longitude,
			website, email, phone, student_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Type, p.Region, p.City, p.Address, p.Latitude, p.Longitude,
		p.Website, p.Email, p.Phone, p.StudentCount, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateEstablishment updates an establishment. Returns sql.ErrNoRows if absent.
func (q *Queries) UpdateEstablishment(ctx context.Context, id int64, p EstablishmentParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE establishments SET name = ?, type = ?, region = ?, city = ?, address = ?,
			latitude = ?, longitude = ?, website = ?, email = ?, phone = ?,
			student_count = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Type, p.Region, p.City, p.Address, p.Latitude, p.Longitude,
		p.Website, p.Email, p.Phone, p.StudentCount, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteEstablishment removes an establishment.
func (q *Queries) DeleteEstablishment(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM establishments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
