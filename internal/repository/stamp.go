package repository

import (
	"context"
	"fmt"
	"time"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type stamp struct {
	StampID   int64     `db:"stamp_id"`
	UserID    int64     `db:"user_id"`
	QuestID   string    `db:"quest_id"`
	Location  string    `db:"location"`
	AwardedAt time.Time `db:"awarded_at"`
}

// ListStamps returns the user's passport, oldest stamp first.
func (r *Repository) ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error) {
	query, args, err := squirrel.
		Select("stamp_id", "user_id", "quest_id", "location", "awarded_at").
		From("stamps").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("awarded_at", "stamp_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stamps query: %w", err)
	}

	var rows []stamp
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list stamps: %w", err)
	}

	stamps := make([]*model.Stamp, len(rows))
	for i, s := range rows {
		stamps[i] = &model.Stamp{
			ID:        s.StampID,
			UserID:    s.UserID,
			QuestID:   s.QuestID,
			Location:  s.Location,
			AwardedAt: s.AwardedAt,
		}
	}

	return stamps, nil
}
