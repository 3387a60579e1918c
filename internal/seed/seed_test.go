package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	quests       map[string]*model.QuestDetails
	routes       map[string]*model.Route
	stories      map[string]*model.Story
	perks        map[string]*model.Perk
	achievements map[string]*model.Achievement
	users        map[int64]*model.User
	progress     map[string]model.QuestStatus
	completions  map[string]struct{}
	stamps       []model.Stamp

	questWrites int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		quests:       map[string]*model.QuestDetails{},
		routes:       map[string]*model.Route{},
		stories:      map[string]*model.Story{},
		perks:        map[string]*model.Perk{},
		achievements: map[string]*model.Achievement{},
		users:        map[int64]*model.User{},
		progress:     map[string]model.QuestStatus{},
		completions:  map[string]struct{}{},
	}
}

func (m *memoryStore) CreateQuest(_ context.Context, d *model.QuestDetails) error {
	if _, ok := m.quests[d.Quest.ID]; ok {
		return repository.ErrAlreadyExists
	}
	m.quests[d.Quest.ID] = d
	m.questWrites++
	return nil
}

func (m *memoryStore) UpdateQuest(_ context.Context, d *model.QuestDetails) error {
	m.quests[d.Quest.ID] = d
	m.questWrites++
	return nil
}

func (m *memoryStore) CreateRoute(_ context.Context, r *model.Route) error {
	if _, ok := m.routes[r.ID]; ok {
		return repository.ErrAlreadyExists
	}
	m.routes[r.ID] = r
	return nil
}

func (m *memoryStore) UpdateRoute(_ context.Context, r *model.Route) error {
	m.routes[r.ID] = r
	return nil
}

func (m *memoryStore) CreateStory(_ context.Context, s *model.Story) error {
	if _, ok := m.stories[s.ID]; ok {
		return repository.ErrAlreadyExists
	}
	m.stories[s.ID] = s
	return nil
}

func (m *memoryStore) UpdateStory(_ context.Context, s *model.Story) error {
	m.stories[s.ID] = s
	return nil
}

func (m *memoryStore) UpsertPerk(_ context.Context, p *model.Perk) error {
	m.perks[p.ID] = p
	return nil
}

func (m *memoryStore) UpsertAchievement(_ context.Context, a *model.Achievement) error {
	m.achievements[a.ID] = a
	return nil
}

// CreateUser mirrors the repository upsert: a returning user only gets a
// new username and auth date.
func (m *memoryStore) CreateUser(_ context.Context, u *model.User) error {
	if existing, ok := m.users[u.ID]; ok {
		existing.Username = u.Username
		existing.AuthDate = u.AuthDate
		return nil
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *memoryStore) StartQuest(_ context.Context, _ int64, questID string, _ time.Time) error {
	if _, ok := m.progress[questID]; !ok {
		m.progress[questID] = model.QuestStatusActive
	}
	return nil
}

func (m *memoryStore) MarkTaskCompleted(_ context.Context, c model.TaskCompletion) (bool, error) {
	key := c.QuestID + "/" + c.TaskID
	_, seen := m.completions[key]
	m.completions[key] = struct{}{}
	return !seen, nil
}

func (m *memoryStore) FinalizeQuest(_ context.Context, userID int64, questID string, points int, stamp model.Stamp) (*model.Stamp, error) {
	if m.progress[questID] == model.QuestStatusCompleted {
		return nil, repository.ErrQuestAlreadyCompleted
	}
	m.progress[questID] = model.QuestStatusCompleted
	m.users[userID].Points += points
	m.stamps = append(m.stamps, stamp)
	return &stamp, nil
}

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Len(t, c.Quests, 6)
	assert.NotEmpty(t, c.Stories)
	assert.NotEmpty(t, c.Perks)
	assert.NotEmpty(t, c.Achievements)
	require.NotNil(t, c.DemoUser)
	assert.Equal(t, []string{"q2", "q5"}, c.DemoUser.ActiveQuests)
	assert.Equal(t, []string{"q3"}, c.DemoUser.CompletedQuests)
}

func TestApply(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	store := newMemoryStore()
	require.NoError(t, Apply(context.Background(), store, c))

	assert.Len(t, store.quests, 6)
	assert.Len(t, store.routes, len(c.Routes))
	assert.Len(t, store.stories, len(c.Stories))
	assert.Len(t, store.perks, len(c.Perks))
	assert.Len(t, store.achievements, len(c.Achievements))

	assert.Equal(t, model.QuestStatusActive, store.progress["q2"])
	assert.Equal(t, model.QuestStatusActive, store.progress["q5"])
	assert.Equal(t, model.QuestStatusCompleted, store.progress["q3"])
	require.Len(t, store.stamps, 1)
	assert.Equal(t, "Uji", store.stamps[0].Location)

	demo := store.users[c.DemoUser.ID]
	require.NotNil(t, demo)
	assert.Equal(t, 350, demo.Points)

	// the demo user cannot afford the onsen pass
	assert.ErrorIs(t, service.ValidateExchange(demo.Points, store.perks["p1"].PointsCost), service.ErrNotEnoughPoints)

	for _, d := range store.quests {
		assert.Equal(t, len(d.Tasks), d.Quest.Tasks.Total)
		for i, task := range d.Tasks {
			assert.Equal(t, i+1, task.Position)
			assert.Equal(t, d.Quest.ID, task.QuestID)
		}
	}
}

func TestApply_SeededQuestsMatchActiveTab(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	store := newMemoryStore()
	require.NoError(t, Apply(context.Background(), store, c))

	quests := make([]*model.Quest, 0, len(c.Quests))
	for _, e := range c.Quests {
		q := *store.quests[e.ID].Quest
		if status, ok := store.progress[q.ID]; ok {
			q.Status = status
		}
		quests = append(quests, &q)
	}

	active := service.FilterQuests(quests, service.QuestFilter{ActiveTab: service.TabActive})
	ids := make([]string, len(active))
	for i, q := range active {
		ids[i] = q.ID
	}
	assert.Equal(t, []string{"q2", "q5"}, ids)
}

func TestApply_IsRepeatable(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	store := newMemoryStore()
	require.NoError(t, Apply(context.Background(), store, c))
	require.NoError(t, Apply(context.Background(), store, c))

	assert.Equal(t, 12, store.questWrites)
	assert.Len(t, store.stamps, 1)
	assert.Equal(t, 350, store.users[c.DemoUser.ID].Points)
}

type failingStore struct {
	*memoryStore
	failQuest string
}

func (f *failingStore) StartQuest(ctx context.Context, userID int64, questID string, at time.Time) error {
	if questID == f.failQuest {
		return errors.New("connection reset")
	}
	return f.memoryStore.StartQuest(ctx, userID, questID, at)
}

func TestApply_ResumesHalfSeededDemoUser(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	store := newMemoryStore()
	err = Apply(context.Background(), &failingStore{memoryStore: store, failQuest: "q5"}, c)
	require.Error(t, err)
	require.Contains(t, store.users, c.DemoUser.ID)
	assert.NotContains(t, store.progress, "q3")

	require.NoError(t, Apply(context.Background(), store, c))

	assert.Equal(t, model.QuestStatusActive, store.progress["q5"])
	assert.Equal(t, model.QuestStatusCompleted, store.progress["q3"])
	assert.Len(t, store.stamps, 1)
	assert.Equal(t, 350, store.users[c.DemoUser.ID].Points)
}

func TestValidate(t *testing.T) {
	c, err := Parse([]byte(`{
		"routes": [{"id": "r1", "quest_ids": ["q404"]}],
		"stories": [{"id": "s1", "chapters": {"total": 1, "unlocked": 2}, "related_route_id": "r9"}],
		"quests": [{"id": "q1", "difficulty": "legendary", "tasks": [{"id": "t1", "type": "qr_scan", "payload": {}}]}]
	}`))
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown difficulty")
	assert.Contains(t, err.Error(), "task t1")
	assert.Contains(t, err.Error(), "unknown quest q404")
	assert.Contains(t, err.Error(), "2 of 1 chapters")
	assert.Contains(t, err.Error(), "unknown route r9")

	assert.Error(t, Apply(context.Background(), newMemoryStore(), c))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"quests": 3}`))
	assert.Error(t, err)
}
