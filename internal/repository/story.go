package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type story struct {
	StoryID          string         `db:"story_id"`
	Title            string         `db:"title"`
	Description      string         `db:"description"`
	Thumbnail        string         `db:"thumbnail"`
	IsUnlocked       bool           `db:"is_unlocked"`
	ChaptersTotal    int            `db:"chapters_total"`
	ChaptersUnlocked int            `db:"chapters_unlocked"`
	RelatedRouteID   *string        `db:"related_route_id"`
	Tags             pq.StringArray `db:"tags"`
	CreatedAt        time.Time      `db:"created_at"`
}

type route struct {
	RouteID     string         `db:"route_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Region      string         `db:"region"`
	QuestIDs    pq.StringArray `db:"quest_ids"`
	CreatedAt   time.Time      `db:"created_at"`
}

var storyColumns = []string{
	"story_id",
	"title",
	"description",
	"thumbnail",
	"is_unlocked",
	"chapters_total",
	"chapters_unlocked",
	"related_route_id",
	"tags",
	"created_at",
}

func (s *story) toModel() *model.Story {
	return &model.Story{
		ID:          s.StoryID,
		Title:       s.Title,
		Description: s.Description,
		Thumbnail:   s.Thumbnail,
		IsUnlocked:  s.IsUnlocked,
		Chapters: model.ChapterSummary{
			Total:    s.ChaptersTotal,
			Unlocked: s.ChaptersUnlocked,
		},
		RelatedRouteID: s.RelatedRouteID,
		Tags:           []string(s.Tags),
		CreatedAt:      s.CreatedAt,
	}
}

func (r *route) toModel() *model.Route {
	return &model.Route{
		ID:          r.RouteID,
		Name:        r.Name,
		Description: r.Description,
		Region:      r.Region,
		QuestIDs:    []string(r.QuestIDs),
		CreatedAt:   r.CreatedAt,
	}
}

// ListStories returns stories, optionally only those carrying tag.
func (r *Repository) ListStories(ctx context.Context, tag string) ([]*model.Story, error) {
	builder := squirrel.
		Select(storyColumns...).
		From("stories").
		OrderBy("created_at", "story_id").
		PlaceholderFormat(squirrel.Dollar)
	if tag != "" {
		builder = builder.Where(squirrel.Expr("? = ANY(tags)", tag))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stories query: %w", err)
	}

	var rows []story
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	stories := make([]*model.Story, len(rows))
	for i := range rows {
		stories[i] = rows[i].toModel()
	}

	return stories, nil
}

func (r *Repository) GetStory(ctx context.Context, storyID string) (*model.Story, error) {
	query, args, err := squirrel.
		Select(storyColumns...).
		From("stories").
		Where(squirrel.Eq{"story_id": storyID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build story query: %w", err)
	}

	var row story
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) CreateStory(ctx context.Context, s *model.Story) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	values := storyValues(s)
	values["story_id"] = s.ID
	values["created_at"] = createdAt

	query, args, err := squirrel.
		Insert("stories").
		SetMap(values).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build story insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert story: %w", err)
	}

	return nil
}

func (r *Repository) UpdateStory(ctx context.Context, s *model.Story) error {
	query, args, err := squirrel.
		Update("stories").
		SetMap(storyValues(s)).
		Where(squirrel.Eq{"story_id": s.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build story update query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args)
}

func (r *Repository) DeleteStory(ctx context.Context, storyID string) error {
	query, args, err := squirrel.
		Delete("stories").
		Where(squirrel.Eq{"story_id": storyID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execExpectingRow(ctx, query, args)
}

func storyValues(s *model.Story) map[string]interface{} {
	return map[string]interface{}{
		"title":             s.Title,
		"description":       s.Description,
		"thumbnail":         s.Thumbnail,
		"is_unlocked":       s.IsUnlocked,
		"chapters_total":    s.Chapters.Total,
		"chapters_unlocked": s.Chapters.Unlocked,
		"related_route_id":  s.RelatedRouteID,
		"tags":              pq.StringArray(s.Tags),
	}
}

func (r *Repository) ListRoutes(ctx context.Context) ([]*model.Route, error) {
	query, args, err := squirrel.
		Select("route_id", "name", "description", "region", "quest_ids", "created_at").
		From("routes").
		OrderBy("created_at", "route_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build routes query: %w", err)
	}

	var rows []route
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	routes := make([]*model.Route, len(rows))
	for i := range rows {
		routes[i] = rows[i].toModel()
	}

	return routes, nil
}

func (r *Repository) GetRoute(ctx context.Context, routeID string) (*model.Route, error) {
	query, args, err := squirrel.
		Select("route_id", "name", "description", "region", "quest_ids", "created_at").
		From("routes").
		Where(squirrel.Eq{"route_id": routeID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build route query: %w", err)
	}

	var row route
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) CreateRoute(ctx context.Context, rt *model.Route) error {
	createdAt := rt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := squirrel.
		Insert("routes").
		SetMap(map[string]interface{}{
			"route_id":    rt.ID,
			"name":        rt.Name,
			"description": rt.Description,
			"region":      rt.Region,
			"quest_ids":   pq.StringArray(rt.QuestIDs),
			"created_at":  createdAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build route insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert route: %w", err)
	}

	return nil
}

func (r *Repository) UpdateRoute(ctx context.Context, rt *model.Route) error {
	query, args, err := squirrel.
		Update("routes").
		SetMap(map[string]interface{}{
			"name":        rt.Name,
			"description": rt.Description,
			"region":      rt.Region,
			"quest_ids":   pq.StringArray(rt.QuestIDs),
		}).
		Where(squirrel.Eq{"route_id": rt.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build route update query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args)
}

func (r *Repository) DeleteRoute(ctx context.Context, routeID string) error {
	query, args, err := squirrel.
		Delete("routes").
		Where(squirrel.Eq{"route_id": routeID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return r.execExpectingRow(ctx, query, args)
}

func (r *Repository) execExpectingRow(ctx context.Context, query string, args []interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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
