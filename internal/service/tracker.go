package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/pkg/logger"

	"go.uber.org/zap"
)

const earthRadiusMeters = 6371000.0

// CompletedCount returns the number of tasks marked completed.
func CompletedCount(tasks []*model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.IsCompleted {
			n++
		}
	}
	return n
}

// ApplyCompletions returns copies of tasks with IsCompleted taken from the
// user's completion set.
func ApplyCompletions(tasks []*model.Task, completed map[string]struct{}) []*model.Task {
	out := make([]*model.Task, len(tasks))
	for i, t := range tasks {
		task := *t
		_, task.IsCompleted = completed[t.ID]
		out[i] = &task
	}
	return out
}

// SummarizeTasks counts total and completed tasks. Completed is bounded by Total.
func SummarizeTasks(tasks []*model.Task) model.TaskSummary {
	summary := model.TaskSummary{
		Total:     len(tasks),
		Completed: CompletedCount(tasks),
	}
	if summary.Completed > summary.Total {
		summary.Completed = summary.Total
	}
	return summary
}

// VerifySubmission checks the evidence a user sent for a task.
func VerifySubmission(task *model.Task, sub model.TaskSubmission) error {
	p := task.Payload

	switch task.Type {
	case model.TaskVisitLocation:
		if sub.Latitude == nil || sub.Longitude == nil {
			return fmt.Errorf("%w: location is required", ErrSubmissionRejected)
		}
		d := distanceMeters(p.Latitude, p.Longitude, *sub.Latitude, *sub.Longitude)
		if d > p.RadiusMeters {
			return fmt.Errorf("%w: %.0fm away from the spot", ErrSubmissionRejected, d)
		}
	case model.TaskAnswerText:
		if normalizeAnswer(sub.Answer) != normalizeAnswer(p.Answer) {
			return fmt.Errorf("%w: wrong answer", ErrSubmissionRejected)
		}
	case model.TaskSelectOption:
		if sub.OptionIndex == nil || *sub.OptionIndex != p.CorrectIndex {
			return fmt.Errorf("%w: wrong option", ErrSubmissionRejected)
		}
	case model.TaskShareSocial:
		if strings.TrimSpace(sub.ShareURL) == "" {
			return fmt.Errorf("%w: share url is required", ErrSubmissionRejected)
		}
	case model.TaskPhotoUpload:
		if strings.TrimSpace(sub.PhotoURL) == "" {
			return fmt.Errorf("%w: photo is required", ErrSubmissionRejected)
		}
	case model.TaskQRScan:
		if sub.QRCode != p.QRCode {
			return fmt.Errorf("%w: qr code does not match", ErrSubmissionRejected)
		}
	case model.TaskGroupActivity:
		if sub.Participants < p.MinMembers {
			return fmt.Errorf("%w: at least %d participants needed", ErrSubmissionRejected, p.MinMembers)
		}
	default:
		return fmt.Errorf("%w: unsupported task type %q", ErrSubmissionRejected, task.Type)
	}

	return nil
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// distanceMeters is the haversine distance between two coordinates.
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

func (s *QuestService) StartQuest(ctx context.Context, userID int64, questID string) (*model.QuestProgress, error) {
	if _, err := s.getQuestDetails(ctx, questID); err != nil {
		return nil, err
	}

	if err := s.repo.StartQuest(ctx, userID, questID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to start quest: %w", err)
	}

	progress, err := s.repo.GetQuestProgress(ctx, userID, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	return progress, nil
}

// CompleteTask records a verified task completion. Repeating a completion is
// harmless: the quest reward is paid only by the call that finalizes it.
func (s *QuestService) CompleteTask(ctx context.Context, userID int64, questID, taskID string, submission model.TaskSubmission) (*model.TaskCompletionResult, error) {
	details, err := s.getQuestDetails(ctx, questID)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.GetQuestProgress(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestNotStarted
		}
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	var task *model.Task
	for _, t := range details.Tasks {
		if t.ID == taskID {
			task = t
			break
		}
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if err := VerifySubmission(task, submission); err != nil {
		return nil, err
	}

	inserted, err := s.repo.MarkTaskCompleted(ctx, model.TaskCompletion{
		UserID:      userID,
		QuestID:     questID,
		TaskID:      taskID,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark task completed: %w", err)
	}

	completed, err := s.repo.GetCompletedTaskIDs(ctx, userID, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	result := &model.TaskCompletionResult{
		QuestID:     questID,
		TaskID:      taskID,
		Summary:     SummarizeTasks(ApplyCompletions(details.Tasks, completed)),
		AlreadyDone: !inserted,
	}

	if progress.Status == model.QuestStatusCompleted || !isFullyCompleted(result.Summary) {
		return result, nil
	}

	stamp, finalized, err := s.finalizeQuest(ctx, userID, details.Quest)
	if err != nil {
		return nil, err
	}
	if finalized {
		result.QuestCompleted = true
		result.PointsAwarded = details.Quest.Rewards.Points
		result.Stamp = stamp
	}

	return result, nil
}

func isFullyCompleted(summary model.TaskSummary) bool {
	return summary.Total > 0 && summary.Completed >= summary.Total
}

// finalizeQuest completes the quest for the user. It reports false when the
// quest had already been finalized by an earlier call.
func (s *QuestService) finalizeQuest(ctx context.Context, userID int64, q *model.Quest) (*model.Stamp, bool, error) {
	log := logger.Logger()

	stamp, err := s.repo.FinalizeQuest(ctx, userID, q.ID, q.Rewards.Points, model.Stamp{
		UserID:    userID,
		QuestID:   q.ID,
		Location:  q.Location,
		AwardedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrQuestAlreadyCompleted) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to finalize quest: %w", err)
	}

	log.Info("quest completed",
		zap.Int64("user_id", userID),
		zap.String("quest_id", q.ID),
		zap.Int("points", q.Rewards.Points))

	s.notify(ctx, userID, model.Notification{
		Type: model.NotificationQuestCompleted,
		Payload: map[string]any{
			"quest_id": q.ID,
			"title":    q.Title,
			"points":   q.Rewards.Points,
		},
	})
	if stamp != nil {
		s.notify(ctx, userID, model.Notification{
			Type: model.NotificationStampAwarded,
			Payload: map[string]any{
				"stamp_id": stamp.ID,
				"quest_id": stamp.QuestID,
				"location": stamp.Location,
			},
		})
	}

	return stamp, true, nil
}
