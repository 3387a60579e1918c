package mocks

import (
	"context"
	"time"

	"tourii_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateUserLanguage(ctx context.Context, userID int64, language string) error {
	args := m.Called(ctx, userID, language)
	return args.Error(0)
}

func (m *MockUserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	args := m.Called(ctx, limit)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

type MockQuestRepository struct {
	mock.Mock
}

func (m *MockQuestRepository) ListQuests(ctx context.Context) ([]*model.Quest, error) {
	args := m.Called(ctx)
	quests, _ := args.Get(0).([]*model.Quest)
	return quests, args.Error(1)
}

func (m *MockQuestRepository) GetQuestDetails(ctx context.Context, questID string) (*model.QuestDetails, error) {
	args := m.Called(ctx, questID)
	details, _ := args.Get(0).(*model.QuestDetails)
	return details, args.Error(1)
}

func (m *MockQuestRepository) ListQuestProgress(ctx context.Context, userID int64) (map[string]*model.QuestProgress, error) {
	args := m.Called(ctx, userID)
	progress, _ := args.Get(0).(map[string]*model.QuestProgress)
	return progress, args.Error(1)
}

func (m *MockQuestRepository) CountCompletedTasks(ctx context.Context, userID int64) (map[string]int, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func (m *MockQuestRepository) GetQuestProgress(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error) {
	args := m.Called(ctx, userID, questID)
	progress, _ := args.Get(0).(*model.QuestProgress)
	return progress, args.Error(1)
}

func (m *MockQuestRepository) StartQuest(ctx context.Context, userID int64, questID string, at time.Time) error {
	args := m.Called(ctx, userID, questID, at)
	return args.Error(0)
}

func (m *MockQuestRepository) GetCompletedTaskIDs(ctx context.Context, userID int64, questID string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID, questID)
	ids, _ := args.Get(0).(map[string]struct{})
	return ids, args.Error(1)
}

func (m *MockQuestRepository) MarkTaskCompleted(ctx context.Context, c model.TaskCompletion) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuestRepository) FinalizeQuest(ctx context.Context, userID int64, questID string, points int, stamp model.Stamp) (*model.Stamp, error) {
	args := m.Called(ctx, userID, questID, points, stamp)
	awarded, _ := args.Get(0).(*model.Stamp)
	return awarded, args.Error(1)
}

func (m *MockQuestRepository) ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error) {
	args := m.Called(ctx, userID)
	stamps, _ := args.Get(0).([]*model.Stamp)
	return stamps, args.Error(1)
}

func (m *MockQuestRepository) CreateQuest(ctx context.Context, details *model.QuestDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *MockQuestRepository) UpdateQuest(ctx context.Context, details *model.QuestDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *MockQuestRepository) DeleteQuest(ctx context.Context, questID string) error {
	args := m.Called(ctx, questID)
	return args.Error(0)
}

type MockStoryRepository struct {
	mock.Mock
}

func (m *MockStoryRepository) ListStories(ctx context.Context, tag string) ([]*model.Story, error) {
	args := m.Called(ctx, tag)
	stories, _ := args.Get(0).([]*model.Story)
	return stories, args.Error(1)
}

func (m *MockStoryRepository) GetStory(ctx context.Context, storyID string) (*model.Story, error) {
	args := m.Called(ctx, storyID)
	story, _ := args.Get(0).(*model.Story)
	return story, args.Error(1)
}

func (m *MockStoryRepository) CreateStory(ctx context.Context, story *model.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryRepository) UpdateStory(ctx context.Context, story *model.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryRepository) DeleteStory(ctx context.Context, storyID string) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}

func (m *MockStoryRepository) ListRoutes(ctx context.Context) ([]*model.Route, error) {
	args := m.Called(ctx)
	routes, _ := args.Get(0).([]*model.Route)
	return routes, args.Error(1)
}

func (m *MockStoryRepository) GetRoute(ctx context.Context, routeID string) (*model.Route, error) {
	args := m.Called(ctx, routeID)
	route, _ := args.Get(0).(*model.Route)
	return route, args.Error(1)
}

func (m *MockStoryRepository) CreateRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockStoryRepository) UpdateRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockStoryRepository) DeleteRoute(ctx context.Context, routeID string) error {
	args := m.Called(ctx, routeID)
	return args.Error(0)
}

type MockPerkRepository struct {
	mock.Mock
}

func (m *MockPerkRepository) ListPerks(ctx context.Context) ([]*model.Perk, error) {
	args := m.Called(ctx)
	perks, _ := args.Get(0).([]*model.Perk)
	return perks, args.Error(1)
}

func (m *MockPerkRepository) GetPerk(ctx context.Context, perkID string) (*model.Perk, error) {
	args := m.Called(ctx, perkID)
	perk, _ := args.Get(0).(*model.Perk)
	return perk, args.Error(1)
}

func (m *MockPerkRepository) UpsertPerk(ctx context.Context, perk *model.Perk) error {
	args := m.Called(ctx, perk)
	return args.Error(0)
}

func (m *MockPerkRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockPerkRepository) GetExchangeByKey(ctx context.Context, userID int64, idempotencyKey string) (*model.PerkExchange, error) {
	args := m.Called(ctx, userID, idempotencyKey)
	exchange, _ := args.Get(0).(*model.PerkExchange)
	return exchange, args.Error(1)
}

func (m *MockPerkRepository) ExecuteExchange(ctx context.Context, exchange *model.PerkExchange) (*model.PerkExchange, error) {
	args := m.Called(ctx, exchange)
	done, _ := args.Get(0).(*model.PerkExchange)
	return done, args.Error(1)
}

func (m *MockPerkRepository) RecordFailedExchange(ctx context.Context, exchange *model.PerkExchange) error {
	args := m.Called(ctx, exchange)
	return args.Error(0)
}

func (m *MockPerkRepository) ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error) {
	args := m.Called(ctx, userID)
	exchanges, _ := args.Get(0).([]*model.PerkExchange)
	return exchanges, args.Error(1)
}

type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) ListAchievements(ctx context.Context) ([]*model.Achievement, error) {
	args := m.Called(ctx)
	achievements, _ := args.Get(0).([]*model.Achievement)
	return achievements, args.Error(1)
}

func (m *MockAchievementRepository) GetUserStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*model.UserStats)
	return stats, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int64, n model.Notification) error {
	args := m.Called(ctx, userID, n)
	return args.Error(0)
}
