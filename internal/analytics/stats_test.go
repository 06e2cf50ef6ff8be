// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"tripled", 300, 100, 200},
		{"zero previous yields zero", 500, 0, 0},
		{"both zero", 0, 0, 0},
		{"dropped to zero", 0, 200, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, percentChange(tt.current, tt.previous), 0.0001)
		})
	}
}

func TestSafeRate(t *testing.T) {
	tests := []struct {
		name        string
		numerator   int64
		denominator int64
		want        float64
	}{
		{"half", 1, 2, 0.5},
		{"whole", 5, 5, 1},
		{"zero denominator yields zero", 7, 0, 0},
		{"zero numerator", 0, 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, safeRate(tt.numerator, tt.denominator), 0.0001)
		})
	}
}
