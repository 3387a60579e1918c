package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userQuest struct {
	UserID      int64      `db:"user_id"`
	QuestID     string     `db:"quest_id"`
	Status      string     `db:"status"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

type completionCount struct {
	QuestID string `db:"quest_id"`
	Count   int    `db:"completed"`
}

func (u *userQuest) toModel() *model.QuestProgress {
	return &model.QuestProgress{
		UserID:      u.UserID,
		QuestID:     u.QuestID,
		Status:      model.QuestStatus(u.Status),
		StartedAt:   u.StartedAt,
		CompletedAt: u.CompletedAt,
	}
}

func (r *Repository) GetQuestProgress(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error) {
	query, args, err := squirrel.
		Select("user_id", "quest_id", "status", "started_at", "completed_at").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	var row userQuest
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	return row.toModel(), nil
}

// ListQuestProgress returns the user's progress keyed by quest id.
func (r *Repository) ListQuestProgress(ctx context.Context, userID int64) (map[string]*model.QuestProgress, error) {
	query, args, err := squirrel.
		Select("user_id", "quest_id", "status", "started_at", "completed_at").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	var rows []userQuest
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quest progress: %w", err)
	}

	progress := make(map[string]*model.QuestProgress, len(rows))
	for i := range rows {
		progress[rows[i].QuestID] = rows[i].toModel()
	}

	return progress, nil
}

// CountCompletedTasks returns the number of completed tasks per quest for a user.
func (r *Repository) CountCompletedTasks(ctx context.Context, userID int64) (map[string]int, error) {
	query, args, err := squirrel.
		Select("c.quest_id", "count(*) AS completed").
		From("user_task_completions c").
		Join("quest_tasks t ON t.quest_id = c.quest_id AND t.task_id = c.task_id").
		Where(squirrel.Eq{"c.user_id": userID}).
		GroupBy("c.quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completion count query: %w", err)
	}

	var rows []completionCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.QuestID] = row.Count
	}

	return counts, nil
}

// StartQuest records the quest as active for the user. Starting an already
// started or completed quest is a no-op.
func (r *Repository) StartQuest(ctx context.Context, userID int64, questID string, at time.Time) error {
	query, args, err := squirrel.
		Insert("user_quests").
		SetMap(map[string]interface{}{
			"user_id":    userID,
			"quest_id":   questID,
			"status":     string(model.QuestStatusActive),
			"started_at": at,
		}).
		Suffix("ON CONFLICT (user_id, quest_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build start quest query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to start quest: %w", err)
	}

	return nil
}

func (r *Repository) GetCompletedTaskIDs(ctx context.Context, userID int64, questID string) (map[string]struct{}, error) {
	query, args, err := squirrel.
		Select("task_id").
		From("user_task_completions").
		Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completed tasks query: %w", err)
	}

	var taskIDs []string
	if err := r.db.SelectContext(ctx, &taskIDs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	completed := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		completed[id] = struct{}{}
	}

	return completed, nil
}

// MarkTaskCompleted stores a completion. It reports false when the task had
// already been completed.
func (r *Repository) MarkTaskCompleted(ctx context.Context, c model.TaskCompletion) (bool, error) {
	query, args, err := squirrel.
		Insert("user_task_completions").
		SetMap(map[string]interface{}{
			"user_id":      c.UserID,
			"quest_id":     c.QuestID,
			"task_id":      c.TaskID,
			"completed_at": c.CompletedAt,
		}).
		Suffix("ON CONFLICT (user_id, quest_id, task_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build completion insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark task completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// FinalizeQuest marks the quest completed, credits the reward and awards the
// stamp in one transaction. ErrQuestAlreadyCompleted is returned when another
// call already finalized it.
func (r *Repository) FinalizeQuest(ctx context.Context, userID int64, questID string, points int, stamp model.Stamp) (*model.Stamp, error) {
	var awarded *model.Stamp

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		updateQuery, updateArgs, err := squirrel.
			Update("user_quests").
			Set("status", string(model.QuestStatusCompleted)).
			Set("completed_at", stamp.AwardedAt).
			Where(squirrel.And{
				squirrel.Eq{"user_id": userID, "quest_id": questID},
				squirrel.NotEq{"status": string(model.QuestStatusCompleted)},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build finalize query: %w", err)
		}

		result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to finalize quest: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrQuestAlreadyCompleted
		}

		if err := r.updateUserPointsWithTx(ctx, tx, userID, points); err != nil {
			return err
		}

		stampQuery, stampArgs, err := squirrel.
			Insert("stamps").
			SetMap(map[string]interface{}{
				"user_id":    userID,
				"quest_id":   questID,
				"location":   stamp.Location,
				"awarded_at": stamp.AwardedAt,
			}).
			Suffix("ON CONFLICT (user_id, quest_id) DO NOTHING RETURNING stamp_id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build stamp insert query: %w", err)
		}

		var stampID int64
		err = tx.GetContext(ctx, &stampID, stampQuery, stampArgs...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to award stamp: %w", err)
		}

		awarded = &model.Stamp{
			ID:        stampID,
			UserID:    userID,
			QuestID:   questID,
			Location:  stamp.Location,
			AwardedAt: stamp.AwardedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return awarded, nil
}
