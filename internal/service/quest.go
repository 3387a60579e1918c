package service

import (
	"context"
	"errors"
	"fmt"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/pkg/logger"

	"go.uber.org/zap"
)

type QuestService struct {
	repo     QuestRepository
	notifier Notifier
}

func NewQuestService(repo QuestRepository, notifier Notifier) *QuestService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &QuestService{
		repo:     repo,
		notifier: notifier,
	}
}

// ListQuests merges the catalog with the user's progress and applies filter.
func (s *QuestService) ListQuests(ctx context.Context, userID int64, filter QuestFilter) ([]*model.Quest, error) {
	quests, err := s.repo.ListQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	progress, err := s.repo.ListQuestProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest progress: %w", err)
	}

	counts, err := s.repo.CountCompletedTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	for _, q := range quests {
		q.Tasks.Completed = min(counts[q.ID], q.Tasks.Total)
		if p, ok := progress[q.ID]; ok {
			q.Status = p.Status
		} else if q.Status == "" {
			q.Status = model.QuestStatusAvailable
		}

		if q.Status == model.QuestStatusActive && isFullyCompleted(q.Tasks) {
			if err := s.reconcile(ctx, userID, q); err != nil {
				return nil, err
			}
		}
	}

	return FilterQuests(quests, filter), nil
}

func (s *QuestService) GetQuest(ctx context.Context, userID int64, questID string) (*model.QuestDetails, error) {
	details, err := s.getQuestDetails(ctx, questID)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.GetCompletedTaskIDs(ctx, userID, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	details.Tasks = ApplyCompletions(details.Tasks, completed)
	details.Quest.Tasks = SummarizeTasks(details.Tasks)

	progress, err := s.repo.GetQuestProgress(ctx, userID, questID)
	switch {
	case err == nil:
		details.Quest.Status = progress.Status
	case errors.Is(err, repository.ErrNotFound):
		if details.Quest.Status == "" {
			details.Quest.Status = model.QuestStatusAvailable
		}
	default:
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	if details.Quest.Status == model.QuestStatusActive && isFullyCompleted(details.Quest.Tasks) {
		if err := s.reconcile(ctx, userID, details.Quest); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// reconcile finalizes a quest whose tasks are all completed but whose status
// was never moved to completed.
func (s *QuestService) reconcile(ctx context.Context, userID int64, q *model.Quest) error {
	logger.Logger().Warn("finalizing quest left active with all tasks completed",
		zap.Int64("user_id", userID),
		zap.String("quest_id", q.ID))

	if _, _, err := s.finalizeQuest(ctx, userID, q); err != nil {
		return err
	}
	q.Status = model.QuestStatusCompleted
	return nil
}

func (s *QuestService) ListStamps(ctx context.Context, userID int64) ([]*model.Stamp, error) {
	stamps, err := s.repo.ListStamps(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stamps: %w", err)
	}
	return stamps, nil
}

func (s *QuestService) CreateQuest(ctx context.Context, details *model.QuestDetails) error {
	if err := validateQuest(details); err != nil {
		return err
	}

	err := s.repo.CreateQuest(ctx, details)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create quest: %w", err)
	}

	return nil
}

func (s *QuestService) UpdateQuest(ctx context.Context, details *model.QuestDetails) error {
	if err := validateQuest(details); err != nil {
		return err
	}

	err := s.repo.UpdateQuest(ctx, details)
	if err != nil {
		if errors.Is(err, repository.ErrQuestNotFound) {
			return ErrQuestNotFound
		}
		return fmt.Errorf("failed to update quest: %w", err)
	}

	return nil
}

func (s *QuestService) DeleteQuest(ctx context.Context, questID string) error {
	err := s.repo.DeleteQuest(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestNotFound) {
			return ErrQuestNotFound
		}
		return fmt.Errorf("failed to delete quest: %w", err)
	}

	return nil
}

func (s *QuestService) getQuestDetails(ctx context.Context, questID string) (*model.QuestDetails, error) {
	details, err := s.repo.GetQuestDetails(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return details, nil
}

func (s *QuestService) notify(ctx context.Context, userID int64, n model.Notification) {
	if err := s.notifier.Notify(ctx, userID, n); err != nil {
		logger.Logger().Warn("failed to deliver notification",
			zap.Int64("user_id", userID),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

func validateQuest(details *model.QuestDetails) error {
	if details == nil || details.Quest == nil {
		return fmt.Errorf("%w: quest is required", ErrInvalidArgument)
	}

	q := details.Quest
	switch {
	case q.ID == "":
		return fmt.Errorf("%w: quest id is required", ErrInvalidArgument)
	case q.Title == "":
		return fmt.Errorf("%w: quest title is required", ErrInvalidArgument)
	case !q.Difficulty.Valid():
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, q.Difficulty)
	case q.Rewards.Points < 0:
		return fmt.Errorf("%w: reward points must not be negative", ErrInvalidArgument)
	case len(details.Tasks) == 0:
		return fmt.Errorf("%w: quest needs at least one task", ErrInvalidArgument)
	}

	seen := make(map[string]struct{}, len(details.Tasks))
	for _, t := range details.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task id is required", ErrInvalidArgument)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %q", ErrInvalidArgument, t.ID)
		}
		seen[t.ID] = struct{}{}

		if err := t.Payload.Validate(t.Type); err != nil {
			return fmt.Errorf("%w: task %s: %v", ErrInvalidArgument, t.ID, err)
		}
	}

	return nil
}
