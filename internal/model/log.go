// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Log levels
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log categories
const (
	LogCategorySystem      = "system"
	LogCategoryContent     = "content"
	LogCategoryAnalytics   = "analytics"
	LogCategoryCache       = "cache"
	LogCategoryMaintenance = "maintenance"
	LogCategorySecurity    = "security"
)

// SystemLog represents a persisted log entry, shown and exported in the
// admin back office.
type SystemLog struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}

// SecuritySecret is a named secret tracked by the admin security screen.
// Only the bcrypt hash is stored; the plaintext is shown once at rotation.
type SecuritySecret struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RotatedAt time.Time `json:"rotated_at"`
	CreatedAt time.Time `json:"created_at"`
}
