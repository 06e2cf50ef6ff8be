// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdownConvertsBasicFormatting(t *testing.T) {
	html, err := Markdown("# Titre\n\nUn **communiqué** du ministère.")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(html, "<h1") {
		t.Errorf("heading not converted: %q", html)
	}
	if !strings.Contains(html, "<strong>communiqué</strong>") {
		t.Errorf("bold not converted: %q", html)
	}
}

func TestMarkdownStripsScripts(t *testing.T) {
	html, err := Markdown("Avant\n\n<script>alert(1)</script>\n\nAprès")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(html, "<script") || strings.Contains(html, "alert(1)") {
		t.Errorf("script survived sanitization: %q", html)
	}
	if !strings.Contains(html, "Avant") || !strings.Contains(html, "Après") {
		t.Errorf("surrounding content lost: %q", html)
	}
}

func TestMarkdownStripsEventHandlers(t *testing.T) {
	html, err := Markdown(`<img src="x.png" onerror="alert(1)">`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(html, "onerror") {
		t.Errorf("event handler survived sanitization: %q", html)
	}
}
