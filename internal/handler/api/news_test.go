// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/mesrs/portal-go/internal/model"
	"github.com/mesrs/portal-go/internal/testutil"
)

func TestListNewsReturnsOnlyPublished(t *testing.T) {
	a := newTestAPI(t)
	testutil.CreatePublishedNews(t, a.db, "Rentrée universitaire", "rentree-universitaire")

	draft := map[string]any{
		"title":    "Brouillon interne",
		"summary":  "",
		"body":     "",
		"category": model.NewsCategoryActualites,
		"status":   model.NewsStatusDraft,
	}
	if w := a.admin(t, http.MethodPost, "/api/admin/news", draft); w.Code != http.StatusCreated {
		t.Fatalf("create draft: status = %d: %s", w.Code, w.Body.String())
	}

	w := a.request(t, http.MethodGet, "/api/news", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var items []model.News
	decodeBody(t, w, &items)
	if len(items) != 1 {
		t.Fatalf("got %d articles, want 1", len(items))
	}
	if items[0].Slug != "rentree-universitaire" {
		t.Errorf("slug = %q", items[0].Slug)
	}
}

func TestListNewsRejectsUnknownCategory(t *testing.T) {
	a := newTestAPI(t)

	w := a.request(t, http.MethodGet, "/api/news?category=sport", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetNewsRendersBodyAndRecordsView(t *testing.T) {
	a := newTestAPI(t)
	id := testutil.CreatePublishedNews(t, a.db, "Un **grand** programme", "grand-programme")

	w := a.request(t, http.MethodGet, fmt.Sprintf("/api/news/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var detail struct {
		ID       int64  `json:"id"`
		BodyHTML string `json:"body_html"`
	}
	decodeBody(t, w, &detail)
	if detail.ID != id {
		t.Errorf("id = %d, want %d", detail.ID, id)
	}
	if detail.BodyHTML == "" {
		t.Error("body_html is empty")
	}

	var views int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM view_events WHERE news_id = ?`, id).Scan(&views); err != nil {
		t.Fatalf("counting views: %v", err)
	}
	if views != 1 {
		t.Errorf("view events = %d, want 1", views)
	}
}

func TestGetNewsBySlug(t *testing.T) {
	a := newTestAPI(t)
	testutil.CreatePublishedNews(t, a.db, "Appel à projets", "appel-a-projets")

	w := a.request(t, http.MethodGet, "/api/news/appel-a-projets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestGetNewsHidesDrafts(t *testing.T) {
	a := newTestAPI(t)

	draft := map[string]any{
		"title":    "Pas encore publié",
		"summary":  "",
		"body":     "",
		"category": model.NewsCategoryCommuniques,
		"status":   model.NewsStatusDraft,
	}
	w := a.admin(t, http.MethodPost, "/api/admin/news", draft)
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft: status = %d", w.Code)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, w, &created)

	if w := a.request(t, http.MethodGet, fmt.Sprintf("/api/news/%d", created.ID), nil); w.Code != http.StatusNotFound {
		t.Errorf("draft served publicly: status = %d", w.Code)
	}
}

func TestShareNewsRecordsEvent(t *testing.T) {
	a := newTestAPI(t)
	id := testutil.CreatePublishedNews(t, a.db, "Communiqué de presse", "communique-presse")

	w := a.request(t, http.MethodPost, fmt.Sprintf("/api/news/%d/share", id),
		map[string]any{"network": "facebook"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var network string
	if err := a.db.QueryRow(`SELECT network FROM share_events WHERE news_id = ?`, id).Scan(&network); err != nil {
		t.Fatalf("reading share event: %v", err)
	}
	if network != "facebook" {
		t.Errorf("network = %q", network)
	}
}

func TestShareNewsRequiresNetwork(t *testing.T) {
	a := newTestAPI(t)
	id := testutil.CreatePublishedNews(t, a.db, "Sans réseau", "sans-reseau")

	w := a.request(t, http.MethodPost, fmt.Sprintf("/api/news/%d/share", id), map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateNewsDerivesSlugFromTitle(t *testing.T) {
	a := newTestAPI(t)

	w := a.admin(t, http.MethodPost, "/api/admin/news", map[string]any{
		"title":    "Résultats du Baccalauréat 2026",
		"summary":  "Les résultats sont en ligne.",
		"body":     "Texte complet.",
		"category": model.NewsCategoryActualites,
		"status":   model.NewsStatusPublished,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Slug string `json:"slug"`
	}
	decodeBody(t, w, &resp)
	if resp.Slug != "resultats-du-baccalaureat-2026" {
		t.Errorf("slug = %q", resp.Slug)
	}
}

func TestCreateNewsValidatesBeforeWrite(t *testing.T) {
	a := newTestAPI(t)

	w := a.admin(t, http.MethodPost, "/api/admin/news", map[string]any{
		"title":    "",
		"category": model.NewsCategoryActualites,
		"status":   model.NewsStatusDraft,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var count int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM news`).Scan(&count); err != nil {
		t.Fatalf("counting news: %v", err)
	}
	if count != 0 {
		t.Errorf("invalid payload wrote %d rows", count)
	}
}

func TestUpdateNewsKeepsOriginalPublishDate(t *testing.T) {
	a := newTestAPI(t)
	id := testutil.CreatePublishedNews(t, a.db, "Article stable", "article-stable")

	var before string
	if err := a.db.QueryRow(`SELECT published_at FROM news WHERE id = ?`, id).Scan(&before); err != nil {
		t.Fatalf("reading published_at: %v", err)
	}

	w := a.admin(t, http.MethodPut, fmt.Sprintf("/api/admin/news/%d", id), map[string]any{
		"title":    "Article stable (mis à jour)",
		"summary":  "",
		"body":     "",
		"category": model.NewsCategoryActualites,
		"status":   model.NewsStatusPublished,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var after string
	if err := a.db.QueryRow(`SELECT published_at FROM news WHERE id = ?`, id).Scan(&after); err != nil {
		t.Fatalf("reading published_at: %v", err)
	}
	if before != after {
		t.Errorf("published_at changed on update: %q -> %q", before, after)
	}
}

func TestDeleteNewsReturns404ForMissing(t *testing.T) {
	a := newTestAPI(t)

	w := a.admin(t, http.MethodDelete, "/api/admin/news/424242", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearchFindsAccentInsensitive(t *testing.T) {
	a := newTestAPI(t)
	testutil.CreatePublishedNews(t, a.db, "Fédération des universités", "federation-universites")

	w := a.request(t, http.MethodGet, "/api/search?q=federation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Fédération") {
		t.Errorf("accented title not found: %s", w.Body.String())
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	a := newTestAPI(t)

	w := a.request(t, http.MethodGet, "/api/search?q=a", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
