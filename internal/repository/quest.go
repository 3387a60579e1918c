package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type quest struct {
	QuestID         string         `db:"quest_id"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	Location        string         `db:"location"`
	Thumbnail       string         `db:"thumbnail"`
	RewardPoints    int            `db:"reward_points"`
	RewardNFT       *string        `db:"reward_nft"`
	Difficulty      string         `db:"difficulty"`
	Duration        string         `db:"duration"`
	Status          string         `db:"status"`
	Tags            pq.StringArray `db:"tags"`
	IsGroupActivity bool           `db:"is_group_activity"`
	CreatedAt       time.Time      `db:"created_at"`
	TaskCount       int            `db:"task_count"`
}

type questTask struct {
	QuestID     string `db:"quest_id"`
	TaskID      string `db:"task_id"`
	Position    int    `db:"position"`
	TaskType    string `db:"task_type"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Payload     []byte `db:"payload"`
}

var questColumns = []string{
	"q.quest_id",
	"q.title",
	"q.description",
	"q.location",
	"q.thumbnail",
	"q.reward_points",
	"q.reward_nft",
	"q.difficulty",
	"q.duration",
	"q.status",
	"q.tags",
	"q.is_group_activity",
	"q.created_at",
	"(SELECT count(*) FROM quest_tasks t WHERE t.quest_id = q.quest_id) AS task_count",
}

func (q *quest) toModel() *model.Quest {
	return &model.Quest{
		ID:          q.QuestID,
		Title:       q.Title,
		Description: q.Description,
		Location:    q.Location,
		Thumbnail:   q.Thumbnail,
		Rewards: model.QuestRewards{
			Points: q.RewardPoints,
			NFT:    q.RewardNFT,
		},
		Difficulty:      model.Difficulty(q.Difficulty),
		Duration:        q.Duration,
		Tasks:           model.TaskSummary{Total: q.TaskCount},
		Status:          model.QuestStatus(q.Status),
		Tags:            []string(q.Tags),
		IsGroupActivity: q.IsGroupActivity,
		CreatedAt:       q.CreatedAt,
	}
}

func (t *questTask) toModel() (*model.Task, error) {
	var payload model.TaskPayload
	if len(t.Payload) > 0 {
		if err := json.Unmarshal(t.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of task %s/%s: %w", t.QuestID, t.TaskID, err)
		}
	}

	return &model.Task{
		ID:          t.TaskID,
		QuestID:     t.QuestID,
		Position:    t.Position,
		Type:        model.TaskType(t.TaskType),
		Title:       t.Title,
		Description: t.Description,
		Payload:     payload,
	}, nil
}

// ListQuests returns the quest catalog in creation order.
func (r *Repository) ListQuests(ctx context.Context) ([]*model.Quest, error) {
	query, args, err := squirrel.
		Select(questColumns...).
		From("quests q").
		OrderBy("q.created_at", "q.quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quests query: %w", err)
	}

	var rows []quest
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	quests := make([]*model.Quest, len(rows))
	for i := range rows {
		quests[i] = rows[i].toModel()
	}

	return quests, nil
}

// GetQuestDetails returns a quest with its ordered tasks. Results are served
// from the catalog cache when present.
func (r *Repository) GetQuestDetails(ctx context.Context, questID string) (*model.QuestDetails, error) {
	if cached, ok := r.catalog.Get(questID); ok {
		return cloneDetails(cached.(*model.QuestDetails)), nil
	}

	query, args, err := squirrel.
		Select(questColumns...).
		From("quests q").
		Where(squirrel.Eq{"q.quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quest query: %w", err)
	}

	var row quest
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}

	tasks, err := r.getQuestTasks(ctx, r.db, questID)
	if err != nil {
		return nil, err
	}

	details := &model.QuestDetails{
		Quest: row.toModel(),
		Tasks: tasks,
	}
	r.catalog.Add(questID, details)

	return cloneDetails(details), nil
}

func (r *Repository) getQuestTasks(ctx context.Context, q sqlx.QueryerContext, questID string) ([]*model.Task, error) {
	query, args, err := squirrel.
		Select("quest_id", "task_id", "position", "task_type", "title", "description", "payload").
		From("quest_tasks").
		Where(squirrel.Eq{"quest_id": questID}).
		OrderBy("position", "task_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tasks query: %w", err)
	}

	var rows []questTask
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quest tasks: %w", err)
	}

	tasks := make([]*model.Task, 0, len(rows))
	for i := range rows {
		task, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (r *Repository) CreateQuest(ctx context.Context, details *model.QuestDetails) error {
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		q := details.Quest
		query, args, err := squirrel.
			Insert("quests").
			SetMap(questValues(q)).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quest insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to insert quest: %w", err)
		}

		return insertTasks(ctx, tx, q.ID, details.Tasks)
	})
	if err != nil {
		return err
	}

	r.catalog.Remove(details.Quest.ID)
	return nil
}

// UpdateQuest replaces the quest row and its task list.
func (r *Repository) UpdateQuest(ctx context.Context, details *model.QuestDetails) error {
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		q := details.Quest
		values := questValues(q)
		delete(values, "quest_id")
		delete(values, "created_at")

		query, args, err := squirrel.
			Update("quests").
			SetMap(values).
			Where(squirrel.Eq{"quest_id": q.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quest update query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update quest: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrQuestNotFound
		}

		deleteQuery, deleteArgs, err := squirrel.
			Delete("quest_tasks").
			Where(squirrel.Eq{"quest_id": q.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build task delete query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("failed to delete quest tasks: %w", err)
		}

		return insertTasks(ctx, tx, q.ID, details.Tasks)
	})
	if err != nil {
		return err
	}

	r.catalog.Remove(details.Quest.ID)
	return nil
}

func (r *Repository) DeleteQuest(ctx context.Context, questID string) error {
	query, args, err := squirrel.
		Delete("quests").
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQuestNotFound
	}

	r.catalog.Remove(questID)
	return nil
}

func questValues(q *model.Quest) map[string]interface{} {
	status := q.Status
	if status == "" {
		status = model.QuestStatusAvailable
	}
	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return map[string]interface{}{
		"quest_id":          q.ID,
		"title":             q.Title,
		"description":       q.Description,
		"location":          q.Location,
		"thumbnail":         q.Thumbnail,
		"reward_points":     q.Rewards.Points,
		"reward_nft":        q.Rewards.NFT,
		"difficulty":        string(q.Difficulty),
		"duration":          q.Duration,
		"status":            string(status),
		"tags":              pq.StringArray(q.Tags),
		"is_group_activity": q.IsGroupActivity,
		"created_at":        createdAt,
	}
}

func insertTasks(ctx context.Context, tx *sqlx.Tx, questID string, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	builder := squirrel.
		Insert("quest_tasks").
		Columns("quest_id", "task_id", "position", "task_type", "title", "description", "payload").
		PlaceholderFormat(squirrel.Dollar)

	for i, task := range tasks {
		payload, err := json.Marshal(task.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload of task %s: %w", task.ID, err)
		}
		position := task.Position
		if position == 0 {
			position = i + 1
		}
		builder = builder.Values(questID, task.ID, position, string(task.Type), task.Title, task.Description, string(payload))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert quest tasks: %w", err)
	}

	return nil
}

func cloneDetails(d *model.QuestDetails) *model.QuestDetails {
	q := *d.Quest
	q.Tags = append([]string(nil), d.Quest.Tags...)

	tasks := make([]*model.Task, len(d.Tasks))
	for i, t := range d.Tasks {
		task := *t
		task.Payload.Options = append([]string(nil), t.Payload.Options...)
		tasks[i] = &task
	}

	return &model.QuestDetails{Quest: &q, Tasks: tasks}
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
