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

type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	Points           int       `db:"points"`
	Premium          bool      `db:"premium"`
	AuthProvider     string    `db:"auth_provider"`
	Language         string    `db:"language"`
	IsAdmin          bool      `db:"is_admin"`
	RegistrationDate time.Time `db:"registration_date"`
	AuthDate         time.Time `db:"last_auth_date"`
}

type userStats struct {
	QuestsCompleted int `db:"quests_completed"`
	TasksCompleted  int `db:"tasks_completed"`
	StampsCollected int `db:"stamps_collected"`
	PointsEarned    int `db:"points_earned"`
}

var userColumns = []string{
	"id",
	"username",
	"points",
	"premium",
	"auth_provider",
	"language",
	"is_admin",
	"registration_date",
	"last_auth_date",
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:               u.ID,
		Username:         u.Username,
		Points:           u.Points,
		Premium:          u.Premium,
		AuthProvider:     u.AuthProvider,
		Language:         u.Language,
		IsAdmin:          u.IsAdmin,
		RegistrationDate: u.RegistrationDate,
		AuthDate:         u.AuthDate,
	}
}

// CreateUser registers the user, or refreshes username and auth date when the
// user already exists.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"id":                user.ID,
			"username":          user.Username,
			"points":            user.Points,
			"premium":           user.Premium,
			"auth_provider":     user.AuthProvider,
			"language":          user.Language,
			"registration_date": user.RegistrationDate,
			"last_auth_date":    user.AuthDate,
		}).
		Suffix("ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, last_auth_date = EXCLUDED.last_auth_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.getUser(ctx, r.db, userID)
}

func (r *Repository) getUser(ctx context.Context, q sqlx.QueryerContext, userID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = sqlx.GetContext(ctx, q, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) UpdateUserPoints(ctx context.Context, userID int64, points int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return r.updateUserPointsWithTx(ctx, tx, userID, points)
	})
}

func (r *Repository) updateUserPointsWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, points int) error {
	updateQuery, updateArgs, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", points)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) UpdateUserLanguage(ctx context.Context, userID int64, language string) error {
	query, args, err := squirrel.
		Update("users").
		Set("language", language).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	query, args, err := squirrel.
		Select("id", "username", "points", "premium").
		From("users").
		OrderBy("points DESC", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	userList := make([]*model.User, len(users))
	for i, user := range users {
		userList[i] = &model.User{
			ID:       user.ID,
			Username: user.Username,
			Points:   user.Points,
			Premium:  user.Premium,
		}
	}

	return userList, nil
}

// GetUserStats aggregates the counters achievements are evaluated against.
// Points earned counts quest rewards, not the current spendable balance.
// Completions of tasks removed from the catalog are not counted.
func (r *Repository) GetUserStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	query, args, err := squirrel.
		Select(
			"(SELECT count(*) FROM user_quests uq WHERE uq.user_id = u.id AND uq.status = 'completed') AS quests_completed",
			"(SELECT count(*) FROM user_task_completions c JOIN quest_tasks t ON t.quest_id = c.quest_id AND t.task_id = c.task_id WHERE c.user_id = u.id) AS tasks_completed",
			"(SELECT count(*) FROM stamps s WHERE s.user_id = u.id) AS stamps_collected",
			"(SELECT coalesce(sum(q.reward_points), 0) FROM user_quests uq JOIN quests q ON q.quest_id = uq.quest_id WHERE uq.user_id = u.id AND uq.status = 'completed') AS points_earned",
		).
		From("users u").
		Where(squirrel.Eq{"u.id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	var stats userStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &model.UserStats{
		QuestsCompleted: stats.QuestsCompleted,
		TasksCompleted:  stats.TasksCompleted,
		StampsCollected: stats.StampsCollected,
		PointsEarned:    stats.PointsEarned,
	}, nil
}

func (r *Repository) SetUserAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	query, args, err := squirrel.
		Update("users").
		Set("is_admin", isAdmin).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execExpectingRow(ctx, query, args)
}
