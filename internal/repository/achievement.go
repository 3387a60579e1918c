package repository

import (
	"context"
	"fmt"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type achievement struct {
	AchievementID string `db:"achievement_id"`
	Title         string `db:"title"`
	Description   string `db:"description"`
	Category      string `db:"category"`
	Metric        string `db:"metric"`
	Target        int    `db:"target"`
}

func (r *Repository) ListAchievements(ctx context.Context) ([]*model.Achievement, error) {
	query, args, err := squirrel.
		Select("achievement_id", "title", "description", "category", "metric", "target").
		From("achievements").
		OrderBy("category", "target", "achievement_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build achievements query: %w", err)
	}

	var rows []achievement
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	achievements := make([]*model.Achievement, len(rows))
	for i, a := range rows {
		achievements[i] = &model.Achievement{
			ID:          a.AchievementID,
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Metric:      model.AchievementMetric(a.Metric),
			Target:      a.Target,
		}
	}

	return achievements, nil
}

func (r *Repository) UpsertAchievement(ctx context.Context, a *model.Achievement) error {
	query, args, err := squirrel.
		Insert("achievements").
		SetMap(map[string]interface{}{
			"achievement_id": a.ID,
			"title":          a.Title,
			"description":    a.Description,
			"category":       a.Category,
			"metric":         string(a.Metric),
			"target":         a.Target,
		}).
		Suffix(`ON CONFLICT (achievement_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			metric = EXCLUDED.metric,
			target = EXCLUDED.target`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build achievement upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert achievement: %w", err)
	}

	return nil
}
