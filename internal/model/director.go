// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Director represents a ministry directorate holder. At most one active
// director may hold a given titre at a time.
type Director struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Titre     string    `json:"titre"`
	Direction string    `json:"direction"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
