// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"
)

func establishmentPayload() map[string]any {
	return map[string]any{
		"name":    "Université de Tunis El Manar",
		"type":    "universite",
		"region":  "Tunis",
		"city":    "Tunis",
		"website": "https://utm.rnu.tn",
	}
}

func TestCreateEstablishmentValidCoordinates(t *testing.T) {
	a := newTestAPI(t)

	payload := establishmentPayload()
	payload["latitude"] = 36.8065
	payload["longitude"] = 10.1815

	w := a.admin(t, http.MethodPost, "/api/admin/establishments", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestCreateEstablishmentRejectsOutOfRangeCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude too large", 999, 10.18},
		{"latitude too small", -90.5, 10.18},
		{"longitude too large", 36.8, 180.5},
		{"longitude too small", 36.8, -181},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)

			payload := establishmentPayload()
			payload["latitude"] = tt.lat
			payload["longitude"] = tt.lng

			w := a.admin(t, http.MethodPost, "/api/admin/establishments", payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp struct {
				Code string `json:"code"`
			}
			decodeBody(t, w, &resp)
			if resp.Code != "validation_error" {
				t.Errorf("code = %q, want %q", resp.Code, "validation_error")
			}

			var count int
			if err := a.db.QueryRow(`SELECT COUNT(*) FROM establishments`).Scan(&count); err != nil {
				t.Fatalf("count establishments: %v", err)
			}
			if count != 0 {
				t.Errorf("establishment written despite invalid coordinates")
			}
		})
	}
}

func TestCreateEstablishmentRejectsMalformedWebsite(t *testing.T) {
	a := newTestAPI(t)

	payload := establishmentPayload()
	payload["website"] = "not a url"

	w := a.admin(t, http.MethodPost, "/api/admin/establishments", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateEstablishmentRejectsUnpairedCoordinates(t *testing.T) {
	a := newTestAPI(t)

	payload := establishmentPayload()
	payload["latitude"] = 36.8065

	w := a.admin(t, http.MethodPost, "/api/admin/establishments", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
