// Package seed loads the demo content catalog shipped with the backend.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

//go:embed catalog.json
var catalogJSON []byte

type Store interface {
	CreateQuest(ctx context.Context, details *model.QuestDetails) error
	UpdateQuest(ctx context.Context, details *model.QuestDetails) error
	CreateRoute(ctx context.Context, route *model.Route) error
	UpdateRoute(ctx context.Context, route *model.Route) error
	CreateStory(ctx context.Context, story *model.Story) error
	UpdateStory(ctx context.Context, story *model.Story) error
	UpsertPerk(ctx context.Context, perk *model.Perk) error
	UpsertAchievement(ctx context.Context, a *model.Achievement) error

	CreateUser(ctx context.Context, user *model.User) error
	StartQuest(ctx context.Context, userID int64, questID string, at time.Time) error
	MarkTaskCompleted(ctx context.Context, c model.TaskCompletion) (bool, error)
	FinalizeQuest(ctx context.Context, userID int64, questID string, points int, stamp model.Stamp) (*model.Stamp, error)
}

type Catalog struct {
	Routes       []routeEntry       `json:"routes"`
	Stories      []storyEntry       `json:"stories"`
	Quests       []questEntry       `json:"quests"`
	Perks        []perkEntry        `json:"perks"`
	Achievements []achievementEntry `json:"achievements"`
	DemoUser     *demoUser          `json:"demo_user"`
}

type routeEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	QuestIDs    []string `json:"quest_ids"`
}

type storyEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	IsUnlocked  bool   `json:"is_unlocked"`
	Chapters    struct {
		Total    int `json:"total"`
		Unlocked int `json:"unlocked"`
	} `json:"chapters"`
	RelatedRouteID *string  `json:"related_route_id"`
	Tags           []string `json:"tags"`
}

type questEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Thumbnail   string `json:"thumbnail"`
	Rewards     struct {
		Points int     `json:"points"`
		NFT    *string `json:"nft"`
	} `json:"rewards"`
	Difficulty      string      `json:"difficulty"`
	Duration        string      `json:"duration"`
	Tags            []string    `json:"tags"`
	IsGroupActivity bool        `json:"is_group_activity"`
	Tasks           []taskEntry `json:"tasks"`
}

type taskEntry struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Payload     model.TaskPayload `json:"payload"`
}

type perkEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Category    string `json:"category"`
	IsAvailable bool   `json:"is_available"`
}

type achievementEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Metric      string `json:"metric"`
	Target      int    `json:"target"`
}

type demoUser struct {
	ID              int64    `json:"id"`
	Username        string   `json:"username"`
	BonusPoints     int      `json:"bonus_points"`
	ActiveQuests    []string `json:"active_quests"`
	CompletedQuests []string `json:"completed_quests"`
}

// Load parses the embedded demo catalog.
func Load() (*Catalog, error) {
	return Parse(catalogJSON)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

func (e questEntry) toModel(now time.Time) *model.QuestDetails {
	q := &model.Quest{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Thumbnail:   e.Thumbnail,
		Rewards: model.QuestRewards{
			Points: e.Rewards.Points,
			NFT:    e.Rewards.NFT,
		},
		Difficulty:      model.Difficulty(e.Difficulty),
		Duration:        e.Duration,
		Status:          model.QuestStatusAvailable,
		Tags:            e.Tags,
		IsGroupActivity: e.IsGroupActivity,
		CreatedAt:       now,
	}

	tasks := make([]*model.Task, len(e.Tasks))
	for i, t := range e.Tasks {
		tasks[i] = &model.Task{
			ID:          t.ID,
			QuestID:     e.ID,
			Position:    i + 1,
			Type:        model.TaskType(t.Type),
			Title:       t.Title,
			Description: t.Description,
			Payload:     t.Payload,
		}
	}
	q.Tasks = model.TaskSummary{Total: len(tasks)}

	return &model.QuestDetails{Quest: q, Tasks: tasks}
}

// Validate checks the catalog for broken references before anything is written.
func (c *Catalog) Validate() error {
	var errs []error

	routes := make(map[string]struct{}, len(c.Routes))
	for _, r := range c.Routes {
		routes[r.ID] = struct{}{}
	}

	quests := make(map[string]questEntry, len(c.Quests))
	for _, q := range c.Quests {
		if !model.Difficulty(q.Difficulty).Valid() {
			errs = append(errs, fmt.Errorf("quest %s: unknown difficulty %q", q.ID, q.Difficulty))
		}
		if len(q.Tasks) == 0 {
			errs = append(errs, fmt.Errorf("quest %s: no tasks", q.ID))
		}
		for _, t := range q.Tasks {
			typ := model.TaskType(t.Type)
			if !typ.Valid() {
				errs = append(errs, fmt.Errorf("quest %s task %s: unknown type %q", q.ID, t.ID, t.Type))
				continue
			}
			if err := t.Payload.Validate(typ); err != nil {
				errs = append(errs, fmt.Errorf("quest %s task %s: %w", q.ID, t.ID, err))
			}
		}
		quests[q.ID] = q
	}

	for _, r := range c.Routes {
		for _, id := range r.QuestIDs {
			if _, ok := quests[id]; !ok {
				errs = append(errs, fmt.Errorf("route %s: unknown quest %s", r.ID, id))
			}
		}
	}

	for _, s := range c.Stories {
		if s.Chapters.Unlocked > s.Chapters.Total {
			errs = append(errs, fmt.Errorf("story %s: %d of %d chapters unlocked", s.ID, s.Chapters.Unlocked, s.Chapters.Total))
		}
		if s.RelatedRouteID != nil {
			if _, ok := routes[*s.RelatedRouteID]; !ok {
				errs = append(errs, fmt.Errorf("story %s: unknown route %s", s.ID, *s.RelatedRouteID))
			}
		}
	}

	if u := c.DemoUser; u != nil {
		for _, id := range append(append([]string{}, u.ActiveQuests...), u.CompletedQuests...) {
			if _, ok := quests[id]; !ok {
				errs = append(errs, fmt.Errorf("demo user: unknown quest %s", id))
			}
		}
	}

	return errors.Join(errs...)
}

// Apply writes the catalog. Content rows are created or refreshed, so the
// command can be run repeatedly.
func Apply(ctx context.Context, store Store, c *Catalog) error {
	log := logger.Named("seed")

	if err := c.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	for _, e := range c.Quests {
		details := e.toModel(now)
		err := store.CreateQuest(ctx, details)
		if errors.Is(err, repository.ErrAlreadyExists) {
			err = store.UpdateQuest(ctx, details)
		}
		if err != nil {
			return fmt.Errorf("quest %s: %w", e.ID, err)
		}
	}

	for _, e := range c.Routes {
		route := &model.Route{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Region:      e.Region,
			QuestIDs:    e.QuestIDs,
			CreatedAt:   now,
		}
		err := store.CreateRoute(ctx, route)
		if errors.Is(err, repository.ErrAlreadyExists) {
			err = store.UpdateRoute(ctx, route)
		}
		if err != nil {
			return fmt.Errorf("route %s: %w", e.ID, err)
		}
	}

	for _, e := range c.Stories {
		story := &model.Story{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Thumbnail:   e.Thumbnail,
			IsUnlocked:  e.IsUnlocked,
			Chapters: model.ChapterSummary{
				Total:    e.Chapters.Total,
				Unlocked: e.Chapters.Unlocked,
			},
			RelatedRouteID: e.RelatedRouteID,
			Tags:           e.Tags,
			CreatedAt:      now,
		}
		err := store.CreateStory(ctx, story)
		if errors.Is(err, repository.ErrAlreadyExists) {
			err = store.UpdateStory(ctx, story)
		}
		if err != nil {
			return fmt.Errorf("story %s: %w", e.ID, err)
		}
	}

	for _, e := range c.Perks {
		err := store.UpsertPerk(ctx, &model.Perk{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			PointsCost:  e.PointsCost,
			Category:    e.Category,
			IsAvailable: e.IsAvailable,
		})
		if err != nil {
			return fmt.Errorf("perk %s: %w", e.ID, err)
		}
	}

	for _, e := range c.Achievements {
		err := store.UpsertAchievement(ctx, &model.Achievement{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Category:    e.Category,
			Metric:      model.AchievementMetric(e.Metric),
			Target:      e.Target,
		})
		if err != nil {
			return fmt.Errorf("achievement %s: %w", e.ID, err)
		}
	}

	log.Info("catalog applied",
		zap.Int("quests", len(c.Quests)),
		zap.Int("routes", len(c.Routes)),
		zap.Int("stories", len(c.Stories)),
		zap.Int("perks", len(c.Perks)),
		zap.Int("achievements", len(c.Achievements)))

	if c.DemoUser == nil {
		return nil
	}
	return applyDemoUser(ctx, store, c, now)
}

// applyDemoUser sets up the demo account. Every step is idempotent, so a run
// that failed halfway is completed by the next one. The bonus is the initial
// balance of the insert, which a returning user's upsert leaves untouched.
func applyDemoUser(ctx context.Context, store Store, c *Catalog, now time.Time) error {
	log := logger.Named("seed")
	u := c.DemoUser

	err := store.CreateUser(ctx, &model.User{
		ID:               u.ID,
		Username:         u.Username,
		Points:           u.BonusPoints,
		AuthProvider:     model.AuthProviderTelegram,
		Language:         model.LanguageEnglish,
		RegistrationDate: now,
		AuthDate:         now,
	})
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	for _, id := range u.ActiveQuests {
		if err := store.StartQuest(ctx, u.ID, id, now); err != nil {
			return fmt.Errorf("failed to start quest %s: %w", id, err)
		}
	}

	quests := make(map[string]questEntry, len(c.Quests))
	for _, q := range c.Quests {
		quests[q.ID] = q
	}

	for _, id := range u.CompletedQuests {
		q := quests[id]
		if err := store.StartQuest(ctx, u.ID, id, now); err != nil {
			return fmt.Errorf("failed to start quest %s: %w", id, err)
		}
		for _, t := range q.Tasks {
			_, err := store.MarkTaskCompleted(ctx, model.TaskCompletion{
				UserID:      u.ID,
				QuestID:     id,
				TaskID:      t.ID,
				CompletedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to complete task %s/%s: %w", id, t.ID, err)
			}
		}
		_, err := store.FinalizeQuest(ctx, u.ID, id, q.Rewards.Points, model.Stamp{
			UserID:    u.ID,
			QuestID:   id,
			Location:  q.Location,
			AwardedAt: now,
		})
		if err != nil && !errors.Is(err, repository.ErrQuestAlreadyCompleted) {
			return fmt.Errorf("failed to finalize quest %s: %w", id, err)
		}
	}

	log.Info("demo user ready",
		zap.Int64("user_id", u.ID),
		zap.Strings("active_quests", u.ActiveQuests),
		zap.Strings("completed_quests", u.CompletedQuests))

	return nil
}
