// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// AgendaEvent represents an entry of the public agenda.
type AgendaEvent struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      sql.NullTime `json:"ends_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Alert levels
const (
	AlertLevelInfo    = "info"
	AlertLevelWarning = "warning"
	AlertLevelUrgent  = "urgent"
)

// Alert represents a site-wide banner alert.
type Alert struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Level     string       `json:"level"`
	Active    bool         `json:"active"`
	StartsAt  sql.NullTime `json:"starts_at,omitempty"`
	EndsAt    sql.NullTime `json:"ends_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
