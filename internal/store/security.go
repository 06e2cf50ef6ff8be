// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

// ListSecrets returns all tracked secrets (names and rotation times, never
// values).
func (q *Queries) ListSecrets(ctx context.Context) ([]model.SecuritySecret, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, rotated_at, created_at FROM security_secrets ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.SecuritySecret
	for rows.Next() {
		var s model.SecuritySecret
		if err := rows.Scan(&s.ID, &s.Name, &s.RotatedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// GetSecretHash returns the stored hash for a named secret.
func (q *Queries) GetSecretHash(ctx context.Context, name string) (string, error) {
	var hash string
	err := q.db.QueryRowContext(ctx,
		`SELECT value_hash FROM security_secrets WHERE name = ?`, name).Scan(&hash)
	return hash, err
}

// UpsertSecret stores (or rotates) a named secret hash.
func (q *Queries) UpsertSecret(ctx context.Context, name, valueHash string) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO security_secrets (name, value_hash, rotated_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value_hash = excluded.value_hash, rotated_at = excluded.rotated_at
	`, name, valueHash, now, now)
	return err
}

// DeleteSecret removes a named secret.
func (q *Queries) DeleteSecret(ctx context.Context, name string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM security_secrets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireRow(res)
}
