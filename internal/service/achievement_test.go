package service

import (
	"context"
	"testing"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		target   int
		expected float64
	}{
		{name: "Partial", current: 3, target: 5, expected: 60},
		{name: "Nothing yet", current: 0, target: 5, expected: 0},
		{name: "Exactly reached", current: 5, target: 5, expected: 100},
		{name: "Overshoot is clamped", current: 12, target: 5, expected: 100},
		{name: "Negative current is clamped", current: -2, target: 5, expected: 0},
		{name: "Zero target", current: 0, target: 0, expected: 100},
		{name: "Negative target", current: 1, target: -3, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ProgressPercent(tt.current, tt.target), 1e-9)
		})
	}
}

func TestEvaluateAchievement(t *testing.T) {
	a := &model.Achievement{ID: "a1", Metric: model.MetricQuestsCompleted, Target: 5}

	progress := EvaluateAchievement(a, 3)
	assert.Equal(t, 3, progress.Current)
	assert.Equal(t, 5, progress.Target)
	assert.InDelta(t, 60.0, progress.Percent, 1e-9)
	assert.False(t, progress.IsUnlocked)

	progress = EvaluateAchievement(a, 7)
	assert.Equal(t, 7, progress.Current, "current is reported as-is")
	assert.InDelta(t, 100.0, progress.Percent, 1e-9)
	assert.True(t, progress.IsUnlocked)
}

func TestAchievementService_ListUserAchievements(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown user", func(t *testing.T) {
		repo := &mocks.MockAchievementRepository{}
		repo.On("GetUserStats", mock.Anything, int64(7)).Return(nil, repository.ErrNotFound)

		_, err := NewAchievementService(repo).ListUserAchievements(ctx, 7)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Evaluates every metric", func(t *testing.T) {
		repo := &mocks.MockAchievementRepository{}
		repo.On("GetUserStats", mock.Anything, int64(42)).Return(&model.UserStats{
			QuestsCompleted: 3,
			TasksCompleted:  10,
			StampsCollected: 1,
			PointsEarned:    900,
		}, nil)
		repo.On("ListAchievements", mock.Anything).Return([]*model.Achievement{
			{ID: "explorer", Metric: model.MetricQuestsCompleted, Target: 5},
			{ID: "busy", Metric: model.MetricTasksCompleted, Target: 10},
			{ID: "collector", Metric: model.MetricStampsCollected, Target: 4},
			{ID: "rich", Metric: model.MetricPointsEarned, Target: 1000},
		}, nil)

		progress, err := NewAchievementService(repo).ListUserAchievements(ctx, 42)
		require.NoError(t, err)
		require.Len(t, progress, 4)

		assert.InDelta(t, 60.0, progress[0].Percent, 1e-9)
		assert.True(t, progress[1].IsUnlocked)
		assert.InDelta(t, 25.0, progress[2].Percent, 1e-9)
		assert.Equal(t, 900, progress[3].Current)
		assert.False(t, progress[3].IsUnlocked)
	})
}
