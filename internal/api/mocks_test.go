package api

import (
	"context"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) RegisterUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	stored, _ := args.Get(0).(*model.User)
	return stored, args.Error(1)
}

func (m *mockUserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserService) UpdateUserLanguage(ctx context.Context, userID int64, language string) error {
	args := m.Called(ctx, userID, language)
	return args.Error(0)
}

func (m *mockUserService) GetLeaderboard(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

type mockQuestService struct {
	mock.Mock
}

func (m *mockQuestService) ListQuests(ctx context.Context, userID int64, filter service.QuestFilter) ([]*model.Quest, error) {
	args := m.Called(ctx, userID, filter)
	quests, _ := args.Get(0).([]*model.Quest)
	return quests, args.Error(1)
}

func (m *mockQuestService) GetQuest(ctx context.Context, userID int64, questID string) (*model.QuestDetails, error) {
	args := m.Called(ctx, userID, questID)
	details, _ := args.Get(0).(*model.QuestDetails)
	return details, args.Error(1)
}

func (m *mockQuestService) StartQuest(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error) {
	args := m.Called(ctx, userID, questID)
	progress, _ := args.Get(0).(*model.QuestProgress)
	return progress, args.Error(1)
}

func (m *mockQuestService) CompleteTask(ctx context.Context, userID int64, questID, taskID string, submission model.TaskSubmission) (*model.TaskCompletionResult, error) {
	args := m.Called(ctx, userID, questID, taskID, submission)
	result, _ := args.Get(0).(*model.TaskCompletionResult)
	return result, args.Error(1)
}

func (m *mockQuestService) ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error) {
	args := m.Called(ctx, userID)
	stamps, _ := args.Get(0).([]*model.Stamp)
	return stamps, args.Error(1)
}

func (m *mockQuestService) CreateQuest(ctx context.Context, details *model.QuestDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *mockQuestService) UpdateQuest(ctx context.Context, details *model.QuestDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *mockQuestService) DeleteQuest(ctx context.Context, questID string) error {
	args := m.Called(ctx, questID)
	return args.Error(0)
}

type mockStoryService struct {
	mock.Mock
}

func (m *mockStoryService) ListStories(ctx context.Context, tag string) ([]*model.Story, error) {
	args := m.Called(ctx, tag)
	stories, _ := args.Get(0).([]*model.Story)
	return stories, args.Error(1)
}

func (m *mockStoryService) GetStory(ctx context.Context, storyID string) (*model.Story, error) {
	args := m.Called(ctx, storyID)
	story, _ := args.Get(0).(*model.Story)
	return story, args.Error(1)
}

func (m *mockStoryService) CreateStory(ctx context.Context, story *model.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *mockStoryService) UpdateStory(ctx context.Context, story *model.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *mockStoryService) DeleteStory(ctx context.Context, storyID string) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}

func (m *mockStoryService) ListRoutes(ctx context.Context) ([]*model.Route, error) {
	args := m.Called(ctx)
	routes, _ := args.Get(0).([]*model.Route)
	return routes, args.Error(1)
}

func (m *mockStoryService) GetRoute(ctx context.Context, routeID string) (*model.Route, error) {
	args := m.Called(ctx, routeID)
	route, _ := args.Get(0).(*model.Route)
	return route, args.Error(1)
}

func (m *mockStoryService) CreateRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *mockStoryService) UpdateRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *mockStoryService) DeleteRoute(ctx context.Context, routeID string) error {
	args := m.Called(ctx, routeID)
	return args.Error(0)
}

type mockPerkService struct {
	mock.Mock
}

func (m *mockPerkService) ListPerks(ctx context.Context) ([]*model.Perk, error) {
	args := m.Called(ctx)
	perks, _ := args.Get(0).([]*model.Perk)
	return perks, args.Error(1)
}

func (m *mockPerkService) UpsertPerk(ctx context.Context, perk *model.Perk) error {
	args := m.Called(ctx, perk)
	return args.Error(0)
}

func (m *mockPerkService) Quote(ctx context.Context, userID int64, perkID string) (*model.ExchangeQuote, error) {
	args := m.Called(ctx, userID, perkID)
	quote, _ := args.Get(0).(*model.ExchangeQuote)
	return quote, args.Error(1)
}

func (m *mockPerkService) Exchange(ctx context.Context, userID int64, perkID, idempotencyKey string) (*model.PerkExchange, error) {
	args := m.Called(ctx, userID, perkID, idempotencyKey)
	exchange, _ := args.Get(0).(*model.PerkExchange)
	return exchange, args.Error(1)
}

func (m *mockPerkService) ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error) {
	args := m.Called(ctx, userID)
	exchanges, _ := args.Get(0).([]*model.PerkExchange)
	return exchanges, args.Error(1)
}

type mockAchievementService struct {
	mock.Mock
}

func (m *mockAchievementService) ListUserAchievements(ctx context.Context, userID int64) ([]*model.AchievementProgress, error) {
	args := m.Called(ctx, userID)
	progress, _ := args.Get(0).([]*model.AchievementProgress)
	return progress, args.Error(1)
}
