package api

import (
	"net/http"
	"time"

	"tourii_backend/internal/middleware"
	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"
	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminRoutes struct {
	qs service.QuestServiceI
	ss service.StoryServiceI
	ps service.PerkServiceI
}

func NewAdminRoutes(
	handler *gin.RouterGroup,
	qs service.QuestServiceI,
	ss service.StoryServiceI,
	ps service.PerkServiceI,
	a *auth.TelegramAuth,
	authz *middleware.Authorization,
) {
	r := &adminRoutes{qs: qs, ss: ss, ps: ps}

	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware(), authz.AdminOnly())
	{
		h.POST("/quests", r.CreateQuest)
		h.PUT("/quests/:quest_id", r.UpdateQuest)
		h.DELETE("/quests/:quest_id", r.DeleteQuest)

		h.POST("/stories", r.CreateStory)
		h.PUT("/stories/:story_id", r.UpdateStory)
		h.DELETE("/stories/:story_id", r.DeleteStory)

		h.POST("/routes", r.CreateRoute)
		h.PUT("/routes/:route_id", r.UpdateRoute)
		h.DELETE("/routes/:route_id", r.DeleteRoute)

		h.PUT("/perks/:perk_id", r.UpsertPerk)
	}
}

type TaskRequest struct {
	ID          string            `json:"id" binding:"required"`
	Type        string            `json:"type" binding:"required"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Payload     model.TaskPayload `json:"payload"`
}

type QuestRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Thumbnail   string `json:"thumbnail"`
	Rewards     struct {
		Points int     `json:"points"`
		NFT    *string `json:"nft"`
	} `json:"rewards"`
	Difficulty      string        `json:"difficulty"`
	Duration        string        `json:"duration"`
	Tags            []string      `json:"tags"`
	IsGroupActivity bool          `json:"isGroupActivity"`
	Tasks           []TaskRequest `json:"tasks"`
}

func (req *QuestRequest) toModel() *model.QuestDetails {
	q := &model.Quest{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Thumbnail:   req.Thumbnail,
		Rewards: model.QuestRewards{
			Points: req.Rewards.Points,
			NFT:    req.Rewards.NFT,
		},
		Difficulty:      model.Difficulty(req.Difficulty),
		Duration:        req.Duration,
		Status:          model.QuestStatusAvailable,
		Tags:            req.Tags,
		IsGroupActivity: req.IsGroupActivity,
		CreatedAt:       time.Now().UTC(),
	}

	tasks := make([]*model.Task, len(req.Tasks))
	for i, t := range req.Tasks {
		tasks[i] = &model.Task{
			ID:          t.ID,
			QuestID:     req.ID,
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

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.Logger().Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func (r *adminRoutes) CreateQuest(c *gin.Context) {
	var req QuestRequest
	if !bindJSON(c, &req) {
		return
	}

	details := req.toModel()
	if err := r.qs.CreateQuest(c.Request.Context(), details); err != nil {
		respondError(c, "failed to create quest", err)
		return
	}

	logger.Logger().Info("quest created", zap.String("quest_id", req.ID), zap.Int("tasks", len(req.Tasks)))
	c.JSON(http.StatusCreated, toQuestDetailsResponse(details))
}

func (r *adminRoutes) UpdateQuest(c *gin.Context) {
	var req QuestRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("quest_id")

	details := req.toModel()
	if err := r.qs.UpdateQuest(c.Request.Context(), details); err != nil {
		respondError(c, "failed to update quest", err)
		return
	}

	c.JSON(http.StatusOK, toQuestDetailsResponse(details))
}

func (r *adminRoutes) DeleteQuest(c *gin.Context) {
	if err := r.qs.DeleteQuest(c.Request.Context(), c.Param("quest_id")); err != nil {
		respondError(c, "failed to delete quest", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type StoryRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	IsUnlocked  bool   `json:"isUnlocked"`
	Chapters    struct {
		Total    int `json:"total"`
		Unlocked int `json:"unlocked"`
	} `json:"chapters"`
	RelatedRouteID *string  `json:"relatedRouteId"`
	Tags           []string `json:"tags"`
}

func (req *StoryRequest) toModel() *model.Story {
	return &model.Story{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		IsUnlocked:  req.IsUnlocked,
		Chapters: model.ChapterSummary{
			Total:    req.Chapters.Total,
			Unlocked: req.Chapters.Unlocked,
		},
		RelatedRouteID: req.RelatedRouteID,
		Tags:           req.Tags,
		CreatedAt:      time.Now().UTC(),
	}
}

func (r *adminRoutes) CreateStory(c *gin.Context) {
	var req StoryRequest
	if !bindJSON(c, &req) {
		return
	}

	story := req.toModel()
	if err := r.ss.CreateStory(c.Request.Context(), story); err != nil {
		respondError(c, "failed to create story", err)
		return
	}

	c.JSON(http.StatusCreated, toStoryResponse(story))
}

func (r *adminRoutes) UpdateStory(c *gin.Context) {
	var req StoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("story_id")

	story := req.toModel()
	if err := r.ss.UpdateStory(c.Request.Context(), story); err != nil {
		respondError(c, "failed to update story", err)
		return
	}

	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (r *adminRoutes) DeleteStory(c *gin.Context) {
	if err := r.ss.DeleteStory(c.Request.Context(), c.Param("story_id")); err != nil {
		respondError(c, "failed to delete story", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type RouteRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	QuestIDs    []string `json:"questIds"`
}

func (req *RouteRequest) toModel() *model.Route {
	return &model.Route{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Region:      req.Region,
		QuestIDs:    req.QuestIDs,
		CreatedAt:   time.Now().UTC(),
	}
}

func (r *adminRoutes) CreateRoute(c *gin.Context) {
	var req RouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route := req.toModel()
	if err := r.ss.CreateRoute(c.Request.Context(), route); err != nil {
		respondError(c, "failed to create route", err)
		return
	}

	c.JSON(http.StatusCreated, toRouteResponse(route))
}

func (r *adminRoutes) UpdateRoute(c *gin.Context) {
	var req RouteRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("route_id")

	route := req.toModel()
	if err := r.ss.UpdateRoute(c.Request.Context(), route); err != nil {
		respondError(c, "failed to update route", err)
		return
	}

	c.JSON(http.StatusOK, toRouteResponse(route))
}

func (r *adminRoutes) DeleteRoute(c *gin.Context) {
	if err := r.ss.DeleteRoute(c.Request.Context(), c.Param("route_id")); err != nil {
		respondError(c, "failed to delete route", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type PerkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"pointsCost"`
	Category    string `json:"category"`
	IsAvailable bool   `json:"isAvailable"`
}

func (r *adminRoutes) UpsertPerk(c *gin.Context) {
	var req PerkRequest
	if !bindJSON(c, &req) {
		return
	}

	perk := &model.Perk{
		ID:          c.Param("perk_id"),
		Title:       req.Title,
		Description: req.Description,
		PointsCost:  req.PointsCost,
		Category:    req.Category,
		IsAvailable: req.IsAvailable,
	}
	if err := r.ps.UpsertPerk(c.Request.Context(), perk); err != nil {
		respondError(c, "failed to save perk", err)
		return
	}

	c.JSON(http.StatusOK, toPerkResponse(perk))
}
