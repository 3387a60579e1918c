package service

import (
	"context"
	"errors"
	"fmt"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
)

// ProgressPercent returns current/target as a percentage clamped to [0, 100].
// A non-positive target counts as reached.
func ProgressPercent(current, target int) float64 {
	if target <= 0 {
		return 100
	}
	pct := float64(current) / float64(target) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// EvaluateAchievement derives the progress bar and unlock state from the
// current counter value.
func EvaluateAchievement(a *model.Achievement, current int) *model.AchievementProgress {
	return &model.AchievementProgress{
		Achievement: a,
		Current:     current,
		Target:      a.Target,
		Percent:     ProgressPercent(current, a.Target),
		IsUnlocked:  current >= a.Target,
	}
}

func metricValue(stats *model.UserStats, metric model.AchievementMetric) int {
	switch metric {
	case model.MetricQuestsCompleted:
		return stats.QuestsCompleted
	case model.MetricTasksCompleted:
		return stats.TasksCompleted
	case model.MetricStampsCollected:
		return stats.StampsCollected
	case model.MetricPointsEarned:
		return stats.PointsEarned
	}
	return 0
}

type AchievementService struct {
	repo AchievementRepository
}

func NewAchievementService(repo AchievementRepository) *AchievementService {
	return &AchievementService{
		repo: repo,
	}
}

func (s *AchievementService) ListUserAchievements(ctx context.Context, userID int64) ([]*model.AchievementProgress, error) {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	out := make([]*model.AchievementProgress, len(achievements))
	for i, a := range achievements {
		out[i] = EvaluateAchievement(a, metricValue(stats, a.Metric))
	}

	return out, nil
}
