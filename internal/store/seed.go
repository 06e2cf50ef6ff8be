// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesrs/portal-go/internal/model"
)

// Seed populates an empty database with starter content when enabled.
// It is idempotent: nothing happens if any news row already exists.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&count); err != nil {
		return fmt.Errorf("checking existing content: %w", err)
	}
	if count > 0 {
		return nil
	}

	slog.Info("seeding starter content")
	q := New(db)

	newsID, err := q.CreateNews(ctx, CreateNewsParams{
		Title:       "Ouverture du portail du ministère",
		Slug:        "ouverture-du-portail-du-ministere",
		Summary:     "Le nouveau portail d'information du ministère est en ligne.",
		Body:        "Le ministère met en ligne son nouveau portail public.\n\nVous y trouverez les actualités, l'annuaire des services et l'agenda officiel.",
		Category:    model.NewsCategoryActualites,
		Status:      model.NewsStatusPublished,
		PublishedAt: sql.NullTime{Time: time.Now(), Valid: true},
	})
	if err != nil {
		return fmt.Errorf("seeding news: %w", err)
	}

	if _, err := q.CreateService(ctx, ServiceParams{
		Name:        "Bourses et aides aux étudiants",
		Slug:        "bourses-et-aides-aux-etudiants",
		Description: "Demandes de bourses, allocations et aides sociales.",
		Category:    "etudiants",
		Active:      true,
	}); err != nil {
		return fmt.Errorf("seeding services: %w", err)
	}

	year := time.Now().Year()
	for _, s := range []model.MinistryStat{
		{Kind: model.StatKindStudents, Label: "Étudiants inscrits", Value: 0, Year: year},
		{Kind: model.StatKindTeachers, Label: "Enseignants-chercheurs", Value: 0, Year: year},
		{Kind: model.StatKindInstitutions, Label: "Établissements", Value: 0, Year: year},
	} {
		if _, err := q.CreateStat(ctx, s); err != nil {
			return fmt.Errorf("seeding stats: %w", err)
		}
	}

	slog.Info("starter content seeded", "news_id", newsID)
	return nil
}
