package service

import (
	"context"
	"errors"
	"time"

	"tourii_backend/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrInvalidQuestTab    = errors.New("unknown quest tab")
	ErrQuestNotFound      = errors.New("quest not found")
	ErrQuestNotStarted    = errors.New("quest not started")
	ErrTaskNotFound       = errors.New("task not found in quest")
	ErrSubmissionRejected = errors.New("task submission rejected")

	ErrStoryNotFound = errors.New("story not found")
	ErrRouteNotFound = errors.New("route not found")

	ErrPerkNotFound              = errors.New("perk not found")
	ErrPerkUnavailable           = errors.New("perk is not available")
	ErrNotEnoughPoints           = errors.New("not enough points")
	ErrMissingIdempotencyKey     = errors.New("idempotency key is required")
	ErrIdempotencyKeyConflict    = errors.New("idempotency key already used for another perk")
	ErrInvalidExchangeTransition = errors.New("invalid exchange state transition")
)

type Service struct {
	*UserService
	*QuestService
	*StoryService
	*PerkService
	*AchievementService
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	UpdateUserLanguage(ctx context.Context, userID int64, language string) error
	GetLeaderboard(ctx context.Context) ([]*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	UpdateUserLanguage(ctx context.Context, userID int64, language string) error
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)
}

type QuestServiceI interface {
	ListQuests(ctx context.Context, userID int64, filter QuestFilter) ([]*model.Quest, error)
	GetQuest(ctx context.Context, userID int64, questID string) (*model.QuestDetails, error)
	StartQuest(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error)
	CompleteTask(ctx context.Context, userID int64, questID, taskID string, submission model.TaskSubmission) (*model.TaskCompletionResult, error)
	ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error)

	CreateQuest(ctx context.Context, details *model.QuestDetails) error
	UpdateQuest(ctx context.Context, details *model.QuestDetails) error
	DeleteQuest(ctx context.Context, questID string) error
}

type QuestRepository interface {
	ListQuests(ctx context.Context) ([]*model.Quest, error)
	GetQuestDetails(ctx context.Context, questID string) (*model.QuestDetails, error)
	ListQuestProgress(ctx context.Context, userID int64) (map[string]*model.QuestProgress, error)
	CountCompletedTasks(ctx context.Context, userID int64) (map[string]int, error)
	GetQuestProgress(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error)
	StartQuest(ctx context.Context, userID int64, questID string, at time.Time) error
	GetCompletedTaskIDs(ctx context.Context, userID int64, questID string) (map[string]struct{}, error)
	MarkTaskCompleted(ctx context.Context, c model.TaskCompletion) (bool, error)
	FinalizeQuest(ctx context.Context, userID int64, questID string, points int, stamp model.Stamp) (*model.Stamp, error)
	ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error)

	CreateQuest(ctx context.Context, details *model.QuestDetails) error
	UpdateQuest(ctx context.Context, details *model.QuestDetails) error
	DeleteQuest(ctx context.Context, questID string) error
}

type StoryServiceI interface {
	ListStories(ctx context.Context, tag string) ([]*model.Story, error)
	GetStory(ctx context.Context, storyID string) (*model.Story, error)
	CreateStory(ctx context.Context, story *model.Story) error
	UpdateStory(ctx context.Context, story *model.Story) error
	DeleteStory(ctx context.Context, storyID string) error

	ListRoutes(ctx context.Context) ([]*model.Route, error)
	GetRoute(ctx context.Context, routeID string) (*model.Route, error)
	CreateRoute(ctx context.Context, route *model.Route) error
	UpdateRoute(ctx context.Context, route *model.Route) error
	DeleteRoute(ctx context.Context, routeID string) error
}

type StoryRepository interface {
	ListStories(ctx context.Context, tag string) ([]*model.Story, error)
	GetStory(ctx context.Context, storyID string) (*model.Story, error)
	CreateStory(ctx context.Context, story *model.Story) error
	UpdateStory(ctx context.Context, story *model.Story) error
	DeleteStory(ctx context.Context, storyID string) error

	ListRoutes(ctx context.Context) ([]*model.Route, error)
	GetRoute(ctx context.Context, routeID string) (*model.Route, error)
	CreateRoute(ctx context.Context, route *model.Route) error
	UpdateRoute(ctx context.Context, route *model.Route) error
	DeleteRoute(ctx context.Context, routeID string) error
}

type PerkServiceI interface {
	ListPerks(ctx context.Context) ([]*model.Perk, error)
	UpsertPerk(ctx context.Context, perk *model.Perk) error
	Quote(ctx context.Context, userID int64, perkID string) (*model.ExchangeQuote, error)
	Exchange(ctx context.Context, userID int64, perkID, idempotencyKey string) (*model.PerkExchange, error)
	ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error)
}

type PerkRepository interface {
	ListPerks(ctx context.Context) ([]*model.Perk, error)
	GetPerk(ctx context.Context, perkID string) (*model.Perk, error)
	UpsertPerk(ctx context.Context, perk *model.Perk) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetExchangeByKey(ctx context.Context, userID int64, idempotencyKey string) (*model.PerkExchange, error)
	ExecuteExchange(ctx context.Context, exchange *model.PerkExchange) (*model.PerkExchange, error)
	RecordFailedExchange(ctx context.Context, exchange *model.PerkExchange) error
	ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error)
}

type AchievementServiceI interface {
	ListUserAchievements(ctx context.Context, userID int64) ([]*model.AchievementProgress, error)
}

type AchievementRepository interface {
	ListAchievements(ctx context.Context) ([]*model.Achievement, error)
	GetUserStats(ctx context.Context, userID int64) (*model.UserStats, error)
}
