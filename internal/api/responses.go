package api

import (
	"errors"
	"net/http"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuestResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Thumbnail   string `json:"thumbnail"`
	Rewards     struct {
		Points int     `json:"points"`
		NFT    *string `json:"nft,omitempty"`
	} `json:"rewards"`
	Difficulty string `json:"difficulty"`
	Duration   string `json:"duration"`
	Tasks      struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
	} `json:"tasks"`
	Status          string   `json:"status"`
	Tags            []string `json:"tags"`
	IsGroupActivity bool     `json:"isGroupActivity"`
}

type TaskResponse struct {
	ID          string             `json:"id"`
	Position    int                `json:"position"`
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	IsCompleted bool               `json:"isCompleted"`
	Payload     *model.TaskPayload `json:"payload,omitempty"`
}

type QuestDetailsResponse struct {
	QuestResponse
	TaskList []TaskResponse `json:"taskList"`
}

func toQuestResponse(q *model.Quest) QuestResponse {
	var out QuestResponse
	out.ID = q.ID
	out.Title = q.Title
	out.Description = q.Description
	out.Location = q.Location
	out.Thumbnail = q.Thumbnail
	out.Rewards.Points = q.Rewards.Points
	out.Rewards.NFT = q.Rewards.NFT
	out.Difficulty = string(q.Difficulty)
	out.Duration = q.Duration
	out.Tasks.Total = q.Tasks.Total
	out.Tasks.Completed = q.Tasks.Completed
	out.Status = string(q.Status)
	out.Tags = q.Tags
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.IsGroupActivity = q.IsGroupActivity
	return out
}

// toTaskResponse strips the fields that would give away the solution.
func toTaskResponse(t *model.Task) TaskResponse {
	p := t.Payload
	p.Answer = ""
	p.CorrectIndex = 0
	p.QRCode = ""

	return TaskResponse{
		ID:          t.ID,
		Position:    t.Position,
		Type:        string(t.Type),
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		Payload:     &p,
	}
}

func toQuestDetailsResponse(d *model.QuestDetails) QuestDetailsResponse {
	out := QuestDetailsResponse{
		QuestResponse: toQuestResponse(d.Quest),
		TaskList:      make([]TaskResponse, len(d.Tasks)),
	}
	for i, t := range d.Tasks {
		out.TaskList[i] = toTaskResponse(t)
	}
	return out
}

type StoryResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	IsUnlocked  bool   `json:"isUnlocked"`
	Chapters    struct {
		Total    int `json:"total"`
		Unlocked int `json:"unlocked"`
	} `json:"chapters"`
	RelatedRouteID *string  `json:"relatedRouteId,omitempty"`
	Tags           []string `json:"tags"`
}

func toStoryResponse(s *model.Story) StoryResponse {
	var out StoryResponse
	out.ID = s.ID
	out.Title = s.Title
	out.Description = s.Description
	out.Thumbnail = s.Thumbnail
	out.IsUnlocked = s.IsUnlocked
	out.Chapters.Total = s.Chapters.Total
	out.Chapters.Unlocked = s.Chapters.Unlocked
	out.RelatedRouteID = s.RelatedRouteID
	out.Tags = s.Tags
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

type RouteResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	QuestIDs    []string `json:"questIds"`
}

func toRouteResponse(r *model.Route) RouteResponse {
	ids := r.QuestIDs
	if ids == nil {
		ids = []string{}
	}
	return RouteResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Region:      r.Region,
		QuestIDs:    ids,
	}
}

type PerkResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"pointsCost"`
	Category    string `json:"category"`
	IsAvailable bool   `json:"isAvailable"`
}

func toPerkResponse(p *model.Perk) PerkResponse {
	return PerkResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		PointsCost:  p.PointsCost,
		Category:    p.Category,
		IsAvailable: p.IsAvailable,
	}
}

type ExchangeResponse struct {
	ID            string     `json:"id"`
	PerkID        string     `json:"perkId"`
	PointsCost    int        `json:"pointsCost"`
	State         string     `json:"state"`
	FailureReason string     `json:"failureReason,omitempty"`
	BalanceAfter  int        `json:"balanceAfter"`
	CreatedAt     time.Time  `json:"createdAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

func toExchangeResponse(e *model.PerkExchange) ExchangeResponse {
	return ExchangeResponse{
		ID:            e.ID.String(),
		PerkID:        e.PerkID,
		PointsCost:    e.PointsCost,
		State:         string(e.State),
		FailureReason: e.FailureReason,
		BalanceAfter:  e.BalanceAfter,
		CreatedAt:     e.CreatedAt,
		FinishedAt:    e.FinishedAt,
	}
}

type StampResponse struct {
	ID        int64     `json:"id"`
	QuestID   string    `json:"questId"`
	Location  string    `json:"location"`
	AwardedAt time.Time `json:"awardedAt"`
}

func toStampResponse(s *model.Stamp) StampResponse {
	return StampResponse{
		ID:        s.ID,
		QuestID:   s.QuestID,
		Location:  s.Location,
		AwardedAt: s.AwardedAt,
	}
}

type AchievementResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Current     int     `json:"current"`
	Target      int     `json:"target"`
	Percent     float64 `json:"percent"`
	IsUnlocked  bool    `json:"isUnlocked"`
}

func toAchievementResponse(p *model.AchievementProgress) AchievementResponse {
	return AchievementResponse{
		ID:          p.Achievement.ID,
		Title:       p.Achievement.Title,
		Description: p.Achievement.Description,
		Category:    p.Achievement.Category,
		Current:     p.Current,
		Target:      p.Target,
		Percent:     p.Percent,
		IsUnlocked:  p.IsUnlocked,
	}
}

// errorStatus maps service errors to HTTP status codes. Anything unknown is
// an internal error.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidLanguage),
		errors.Is(err, service.ErrInvalidQuestTab),
		errors.Is(err, service.ErrMissingIdempotencyKey),
		errors.Is(err, service.ErrInvalidExchangeTransition):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrQuestNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrRouteNotFound),
		errors.Is(err, service.ErrPerkNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrQuestNotStarted),
		errors.Is(err, service.ErrPerkUnavailable),
		errors.Is(err, service.ErrIdempotencyKeyConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrSubmissionRejected),
		errors.Is(err, service.ErrNotEnoughPoints):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the mapped status. Internal errors are not
// echoed to the client.
func respondError(c *gin.Context, msg string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Logger().Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	logger.Logger().Info(msg, zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
