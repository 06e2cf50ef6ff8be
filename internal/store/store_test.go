// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

func testQueries(t *testing.T) *Queries {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return New(db)
}

func createPublished(t *testing.T, q *Queries, title, slug string) int64 {
	t.Helper()

	id, err := q.CreateNews(context.Background(), CreateNewsParams{
		Title:       title,
		Slug:        slug,
		Summary:     "Résumé de " + title,
		Body:        "Corps de l'article.",
		Category:    model.NewsCategoryActualites,
		Status:      model.NewsStatusPublished,
		PublishedAt: sql.NullTime{Time: time.Now(), Valid: true},
	})
	if err != nil {
		t.Fatalf("creating news: %v", err)
	}
	return id
}

func TestGetNewsBySlug(t *testing.T) {
	q := testQueries(t)
	id := createPublished(t, q, "Plan national de la recherche", "plan-national-recherche")

	item, err := q.GetNewsBySlug(context.Background(), "plan-national-recherche")
	if err != nil {
		t.Fatalf("GetNewsBySlug: %v", err)
	}
	if item.ID != id {
		t.Errorf("id = %d, want %d", item.ID, id)
	}

	if _, err := q.GetNewsBySlug(context.Background(), "absent"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing slug: err = %v, want sql.ErrNoRows", err)
	}
}

func TestListPublishedNewsFiltersAndPaginates(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	for i, slug := range []string{"premier", "deuxieme", "troisieme"} {
		createPublished(t, q, "Article "+slug, slug)
		// Distinct published_at so ordering is deterministic.
		if _, err := q.db.Exec(`UPDATE news SET published_at = ? WHERE slug = ?`,
			time.Now().Add(time.Duration(i)*time.Minute), slug); err != nil {
			t.Fatalf("staggering dates: %v", err)
		}
	}
	if _, err := q.CreateNews(ctx, CreateNewsParams{
		Title: "Brouillon", Slug: "brouillon",
		Category: model.NewsCategoryRecherche, Status: model.NewsStatusDraft,
	}); err != nil {
		t.Fatalf("creating draft: %v", err)
	}

	items, err := q.ListPublishedNews(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListPublishedNews: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (draft excluded)", len(items))
	}
	if items[0].Slug != "troisieme" {
		t.Errorf("first item = %q, want newest first", items[0].Slug)
	}

	page, err := q.ListPublishedNews(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("paginated list: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("offset page returned %d items, want 1", len(page))
	}
}

func TestGetActiveDirectorByTitre(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	if _, err := q.CreateDirector(ctx, DirectorParams{
		Name: "Amine Trabelsi", Titre: "DGRS", Active: true,
	}); err != nil {
		t.Fatalf("creating director: %v", err)
	}
	if _, err := q.CreateDirector(ctx, DirectorParams{
		Name: "Ancien Titulaire", Titre: "DGESR", Active: false,
	}); err != nil {
		t.Fatalf("creating inactive director: %v", err)
	}

	holder, err := q.GetActiveDirectorByTitre(ctx, "DGRS")
	if err != nil {
		t.Fatalf("GetActiveDirectorByTitre: %v", err)
	}
	if holder.Name != "Amine Trabelsi" {
		t.Errorf("holder = %q", holder.Name)
	}

	// Inactive holders do not occupy the titre.
	if _, err := q.GetActiveDirectorByTitre(ctx, "DGESR"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("inactive titre: err = %v, want sql.ErrNoRows", err)
	}
}

func TestSearchMatchesFoldedText(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()
	createPublished(t, q, "Fédération des universités", "federation-universites")

	results, err := q.Search(ctx, "federation", "federation", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("unaccented query did not match accented title")
	}
	if results[0].Title != "Fédération des universités" {
		t.Errorf("title = %q", results[0].Title)
	}

	// The accented form matches directly.
	results, err = q.Search(ctx, "Fédération", "federation", 10)
	if err != nil {
		t.Fatalf("Search accented: %v", err)
	}
	if len(results) == 0 {
		t.Error("accented query did not match")
	}
}

func TestSearchSpansContentTypes(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	createPublished(t, q, "Bourses nationales", "bourses-nationales")
	if _, err := q.CreateService(ctx, ServiceParams{
		Name: "Guichet des bourses", Slug: "guichet-bourses", Active: true,
	}); err != nil {
		t.Fatalf("creating service: %v", err)
	}
	if _, err := q.CreateDocument(ctx, DocumentParams{
		Title: "Formulaire de bourse", FileURL: "https://files.example.tn/bourse.pdf",
	}); err != nil {
		t.Fatalf("creating document: %v", err)
	}

	results, err := q.Search(ctx, "bourse", "bourse", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	types := map[string]bool{}
	for _, r := range results {
		types[r.Type] = true
	}
	for _, want := range []string{"news", "service", "document"} {
		if !types[want] {
			t.Errorf("no %s hit in results: %+v", want, results)
		}
	}
}

func TestIncrementDownloadCount(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	id, err := q.CreateDocument(ctx, DocumentParams{
		Title: "Rapport annuel", FileURL: "https://files.example.tn/rapport.pdf",
	})
	if err != nil {
		t.Fatalf("creating document: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := q.IncrementDownloadCount(ctx, id); err != nil {
			t.Fatalf("IncrementDownloadCount: %v", err)
		}
	}

	doc, err := q.GetDocumentByID(ctx, id)
	if err != nil {
		t.Fatalf("GetDocumentByID: %v", err)
	}
	if doc.DownloadCount != 3 {
		t.Errorf("download_count = %d, want 3", doc.DownloadCount)
	}
}

func TestLogFilterAndClear(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	entries := []CreateLogParams{
		{Level: model.LogLevelError, Category: model.LogCategorySystem, Message: "disk full"},
		{Level: model.LogLevelWarning, Category: model.LogCategoryCache, Message: "sweep slow"},
		{Level: model.LogLevelError, Category: model.LogCategoryCache, Message: "backend down"},
	}
	for _, p := range entries {
		p.CreatedAt = time.Now()
		if _, err := q.CreateLog(ctx, p); err != nil {
			t.Fatalf("CreateLog: %v", err)
		}
	}

	errorsOnly, err := q.ListLogs(ctx, LogFilter{Level: model.LogLevelError})
	if err != nil {
		t.Fatalf("ListLogs by level: %v", err)
	}
	if len(errorsOnly) != 2 {
		t.Errorf("error entries = %d, want 2", len(errorsOnly))
	}

	cacheErrors, err := q.ListLogs(ctx, LogFilter{Level: model.LogLevelError, Category: model.LogCategoryCache})
	if err != nil {
		t.Fatalf("ListLogs by level+category: %v", err)
	}
	if len(cacheErrors) != 1 || cacheErrors[0].Message != "backend down" {
		t.Errorf("cache errors = %+v", cacheErrors)
	}

	stats, err := q.GetLogStats(ctx)
	if err != nil {
		t.Fatalf("GetLogStats: %v", err)
	}
	if stats.Total != 3 || stats.ByLevel[model.LogLevelError] != 2 {
		t.Errorf("stats = %+v", stats)
	}

	deleted, err := q.ClearLogs(ctx)
	if err != nil {
		t.Fatalf("ClearLogs: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
}

func TestGetHomepageCounts(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	createPublished(t, q, "Une actualité", "une-actualite")
	if _, err := q.CreateEstablishment(ctx, EstablishmentParams{
		Name: "Université de Tunis El Manar", Type: model.EstablishmentUniversite,
	}); err != nil {
		t.Fatalf("creating establishment: %v", err)
	}
	if _, err := q.CreateService(ctx, ServiceParams{
		Name: "Inscription en ligne", Slug: "inscription-en-ligne", Active: true,
	}); err != nil {
		t.Fatalf("creating service: %v", err)
	}
	if _, err := q.CreateAgendaEvent(ctx, AgendaEventParams{
		Title: "Salon de l'étudiant", StartsAt: time.Now().Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("creating event: %v", err)
	}

	counts, err := q.GetHomepageCounts(ctx)
	if err != nil {
		t.Fatalf("GetHomepageCounts: %v", err)
	}
	if counts.PublishedNews != 1 || counts.Establishments != 1 ||
		counts.Services != 1 || counts.UpcomingEvents != 1 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestTopPublishedNewsByViews(t *testing.T) {
	q := testQueries(t)
	ctx := context.Background()

	first := createPublished(t, q, "Peu lu", "peu-lu")
	second := createPublished(t, q, "Très lu", "tres-lu")

	today := time.Now().UTC().Format("2006-01-02")
	for _, row := range []struct {
		id    int64
		views int
	}{{first, 5}, {second, 50}} {
		if _, err := q.db.Exec(`
			INSERT INTO daily_news_stats (news_id, date, total_views, unique_views, total_shares,
				avg_reading_time, avg_scroll_depth, is_complete)
			VALUES (?, ?, ?, ?, 0, 0, 0, 0)
		`, row.id, today, row.views, row.views); err != nil {
			t.Fatalf("seeding stats: %v", err)
		}
	}

	top, err := q.TopPublishedNewsByViews(ctx, 30, 10)
	if err != nil {
		t.Fatalf("TopPublishedNewsByViews: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2", len(top))
	}
	if top[0].News.ID != second || top[0].TotalViews != 50 {
		t.Errorf("top entry = %+v, want the most viewed article first", top[0])
	}
}
