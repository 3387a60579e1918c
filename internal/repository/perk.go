package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type perk struct {
	PerkID      string `db:"perk_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	PointsCost  int    `db:"points_cost"`
	Category    string `db:"category"`
	IsAvailable bool   `db:"is_available"`
}

type perkExchange struct {
	ExchangeID     uuid.UUID  `db:"exchange_id"`
	UserID         int64      `db:"user_id"`
	PerkID         string     `db:"perk_id"`
	PointsCost     int        `db:"points_cost"`
	IdempotencyKey string     `db:"idempotency_key"`
	State          string     `db:"state"`
	FailureReason  string     `db:"failure_reason"`
	BalanceAfter   int        `db:"balance_after"`
	CreatedAt      time.Time  `db:"created_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}

var exchangeColumns = []string{
	"exchange_id",
	"user_id",
	"perk_id",
	"points_cost",
	"idempotency_key",
	"state",
	"failure_reason",
	"balance_after",
	"created_at",
	"finished_at",
}

func (p *perk) toModel() *model.Perk {
	return &model.Perk{
		ID:          p.PerkID,
		Title:       p.Title,
		Description: p.Description,
		PointsCost:  p.PointsCost,
		Category:    p.Category,
		IsAvailable: p.IsAvailable,
	}
}

func (e *perkExchange) toModel() *model.PerkExchange {
	return &model.PerkExchange{
		ID:             e.ExchangeID,
		UserID:         e.UserID,
		PerkID:         e.PerkID,
		PointsCost:     e.PointsCost,
		IdempotencyKey: e.IdempotencyKey,
		State:          model.ExchangeState(e.State),
		FailureReason:  e.FailureReason,
		BalanceAfter:   e.BalanceAfter,
		CreatedAt:      e.CreatedAt,
		FinishedAt:     e.FinishedAt,
	}
}

func (r *Repository) ListPerks(ctx context.Context) ([]*model.Perk, error) {
	query, args, err := squirrel.
		Select("perk_id", "title", "description", "points_cost", "category", "is_available").
		From("perks").
		OrderBy("points_cost", "perk_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build perks query: %w", err)
	}

	var rows []perk
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list perks: %w", err)
	}

	perks := make([]*model.Perk, len(rows))
	for i := range rows {
		perks[i] = rows[i].toModel()
	}

	return perks, nil
}

func (r *Repository) GetPerk(ctx context.Context, perkID string) (*model.Perk, error) {
	query, args, err := squirrel.
		Select("perk_id", "title", "description", "points_cost", "category", "is_available").
		From("perks").
		Where(squirrel.Eq{"perk_id": perkID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build perk query: %w", err)
	}

	var row perk
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerkNotFound
		}
		return nil, fmt.Errorf("failed to get perk: %w", err)
	}

	return row.toModel(), nil
}

// UpsertPerk creates the perk or replaces its catalog entry.
func (r *Repository) UpsertPerk(ctx context.Context, p *model.Perk) error {
	query, args, err := squirrel.
		Insert("perks").
		SetMap(map[string]interface{}{
			"perk_id":      p.ID,
			"title":        p.Title,
			"description":  p.Description,
			"points_cost":  p.PointsCost,
			"category":     p.Category,
			"is_available": p.IsAvailable,
		}).
		Suffix(`ON CONFLICT (perk_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			points_cost = EXCLUDED.points_cost,
			category = EXCLUDED.category,
			is_available = EXCLUDED.is_available`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build perk upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert perk: %w", err)
	}

	return nil
}

func (r *Repository) GetExchangeByKey(ctx context.Context, userID int64, idempotencyKey string) (*model.PerkExchange, error) {
	query, args, err := squirrel.
		Select(exchangeColumns...).
		From("perk_exchanges").
		Where(squirrel.Eq{"user_id": userID, "idempotency_key": idempotencyKey}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exchange query: %w", err)
	}

	var row perkExchange
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error) {
	query, args, err := squirrel.
		Select(exchangeColumns...).
		From("perk_exchanges").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exchanges query: %w", err)
	}

	var rows []perkExchange
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}

	exchanges := make([]*model.PerkExchange, len(rows))
	for i := range rows {
		exchanges[i] = rows[i].toModel()
	}

	return exchanges, nil
}

// ExecuteExchange debits the perk cost and records the exchange as succeeded
// in one transaction. ErrNotEnoughPoints leaves the balance untouched;
// ErrDuplicateExchange means the idempotency key was already used.
func (r *Repository) ExecuteExchange(ctx context.Context, ex *model.PerkExchange) (*model.PerkExchange, error) {
	var done *model.PerkExchange

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		debitQuery, debitArgs, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points - ?", ex.PointsCost)).
			Where(squirrel.And{
				squirrel.Eq{"id": ex.UserID},
				squirrel.GtOrEq{"points": ex.PointsCost},
			}).
			Suffix("RETURNING points").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build debit query: %w", err)
		}

		var balance int
		if err := tx.GetContext(ctx, &balance, debitQuery, debitArgs...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotEnoughPoints
			}
			return fmt.Errorf("failed to debit points: %w", err)
		}

		finished := time.Now().UTC()
		record := *ex
		record.State = model.ExchangeSuccess
		record.BalanceAfter = balance
		record.FinishedAt = &finished

		if err := insertExchange(ctx, tx, &record); err != nil {
			return err
		}

		done = &record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return done, nil
}

// RecordFailedExchange stores an exchange that ended in the error state.
func (r *Repository) RecordFailedExchange(ctx context.Context, ex *model.PerkExchange) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return insertExchange(ctx, tx, ex)
	})
}

func insertExchange(ctx context.Context, tx *sqlx.Tx, ex *model.PerkExchange) error {
	query, args, err := squirrel.
		Insert("perk_exchanges").
		SetMap(map[string]interface{}{
			"exchange_id":     ex.ID,
			"user_id":         ex.UserID,
			"perk_id":         ex.PerkID,
			"points_cost":     ex.PointsCost,
			"idempotency_key": ex.IdempotencyKey,
			"state":           string(ex.State),
			"failure_reason":  ex.FailureReason,
			"balance_after":   ex.BalanceAfter,
			"created_at":      ex.CreatedAt,
			"finished_at":     ex.FinishedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build exchange insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateExchange
		}
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	return nil
}
