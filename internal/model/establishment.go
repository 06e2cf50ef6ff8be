// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Establishment types
const (
	EstablishmentUniversite = "universite"
	EstablishmentInstitut   = "institut"
	EstablishmentEcole      = "ecole"
	EstablishmentCentre     = "centre"
)

// Establishment represents a higher-education or research institution.
type Establishment struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Region       string    `json:"region"`
	City         string    `json:"city"`
	Address      string    `json:"address"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Website      string    `json:"website"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	StudentCount int64     `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasCoordinates returns true when both latitude and longitude are set.
func (e *Establishment) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}
