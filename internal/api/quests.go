package api

import (
	"net/http"
	"strconv"
	"strings"

	"tourii_backend/internal/middleware"
	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"
	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type questRoutes struct {
	qs service.QuestServiceI
	a  *auth.TelegramAuth
}

func NewQuestRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, a *auth.TelegramAuth) {
	r := &questRoutes{qs: qs, a: a}

	h := handler.Group("/quests")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.ListQuests)
		h.GET("/:quest_id", r.GetQuest)
		h.POST("/:quest_id/start", r.StartQuest)
		h.POST("/:quest_id/tasks/:task_id/complete", r.CompleteTask)
	}

	passport := handler.Group("/users/:user_id/stamps")
	passport.Use(a.TelegramAuthMiddleware(), middleware.SelfOnly("user_id"))
	{
		passport.GET("", r.ListStamps)
	}
}

// splitList accepts both repeated and comma separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseQuestFilter(c *gin.Context) (service.QuestFilter, error) {
	tab, err := service.ParseQuestTab(c.Query("tab"))
	if err != nil {
		return service.QuestFilter{}, err
	}

	filter := service.QuestFilter{
		ActiveTab:     tab,
		SearchQuery:   c.Query("q"),
		SelectedTypes: splitList(c.QueryArray("tags")),
	}

	for _, d := range splitList(c.QueryArray("difficulty")) {
		difficulty := model.Difficulty(strings.ToLower(d))
		if !difficulty.Valid() {
			return service.QuestFilter{}, service.ErrInvalidArgument
		}
		filter.SelectedDifficulty = append(filter.SelectedDifficulty, difficulty)
	}

	return filter, nil
}

func (r *questRoutes) ListQuests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, err := parseQuestFilter(c)
	if err != nil {
		respondError(c, "invalid quest filter", err)
		return
	}

	quests, err := r.qs.ListQuests(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, "failed to list quests", err)
		return
	}

	out := make([]QuestResponse, len(quests))
	for i, q := range quests {
		out[i] = toQuestResponse(q)
	}

	c.JSON(http.StatusOK, out)
}

func (r *questRoutes) GetQuest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	details, err := r.qs.GetQuest(c.Request.Context(), user.ID, c.Param("quest_id"))
	if err != nil {
		respondError(c, "failed to get quest", err)
		return
	}

	c.JSON(http.StatusOK, toQuestDetailsResponse(details))
}

func (r *questRoutes) StartQuest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := r.qs.StartQuest(c.Request.Context(), user.ID, c.Param("quest_id"))
	if err != nil {
		respondError(c, "failed to start quest", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questId":   progress.QuestID,
		"status":    progress.Status,
		"startedAt": progress.StartedAt,
	})
}

type CompleteTaskRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Answer       string   `json:"answer"`
	OptionIndex  *int     `json:"optionIndex"`
	ShareURL     string   `json:"shareUrl"`
	PhotoURL     string   `json:"photoUrl"`
	QRCode       string   `json:"qrCode"`
	Participants int      `json:"participants"`
}

func (r *questRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.qs.CompleteTask(c.Request.Context(), user.ID, c.Param("quest_id"), c.Param("task_id"), model.TaskSubmission{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Answer:       req.Answer,
		OptionIndex:  req.OptionIndex,
		ShareURL:     req.ShareURL,
		PhotoURL:     req.PhotoURL,
		QRCode:       req.QRCode,
		Participants: req.Participants,
	})
	if err != nil {
		respondError(c, "failed to complete task", err)
		return
	}

	out := gin.H{
		"questId":        result.QuestID,
		"taskId":         result.TaskID,
		"tasks":          gin.H{"total": result.Summary.Total, "completed": result.Summary.Completed},
		"alreadyDone":    result.AlreadyDone,
		"questCompleted": result.QuestCompleted,
		"pointsAwarded":  result.PointsAwarded,
	}
	if result.Stamp != nil {
		out["stamp"] = toStampResponse(result.Stamp)
	}

	c.JSON(http.StatusOK, out)
}

func (r *questRoutes) ListStamps(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("user_id"), 10, 64)

	stamps, err := r.qs.ListStamps(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to list stamps", err)
		return
	}

	out := make([]StampResponse, len(stamps))
	for i, s := range stamps {
		out[i] = toStampResponse(s)
	}

	c.JSON(http.StatusOK, out)
}
