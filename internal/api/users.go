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

type userRoutes struct {
	us service.UserServiceI
	as service.AchievementServiceI
	a  *auth.TelegramAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, as service.AchievementServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, as: as, a: a}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/", r.RegisterUser)
		h.GET("/leaderboard", r.GetLeaderboard)

		self := h.Group("/:user_id", middleware.SelfOnly("user_id"))
		self.GET("", r.GetUser)
		self.PATCH("/language", r.UpdateLanguage)
		self.GET("/achievements", r.ListAchievements)
	}
}

type RegisterUserRequest struct {
	Language string `json:"language"`
}

type UserResponse struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Points           int    `json:"points"`
	Premium          bool   `json:"premium"`
	AuthProvider     string `json:"authProvider"`
	Language         string `json:"language"`
	RegistrationDate string `json:"registrationDate"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Points:           u.Points,
		Premium:          u.Premium,
		AuthProvider:     u.AuthProvider,
		Language:         u.Language,
		RegistrationDate: u.RegistrationDate.Format("2006-01-02"),
	}
}

// currentUser returns the authenticated Telegram user or answers 500, since
// every route using it sits behind the auth middleware.
func currentUser(c *gin.Context) (*auth.TelegramUserData, bool) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		logger.Logger().Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return nil, false
	}
	return user, true
}

// languageFromTelegram maps the client's language code to a supported
// language.
func languageFromTelegram(code string) string {
	if strings.HasPrefix(strings.ToLower(code), "ja") {
		return model.LanguageJapanese
	}
	return model.LanguageEnglish
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Info("failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	tgUser, ok := currentUser(c)
	if !ok {
		return
	}

	language := req.Language
	if language == "" {
		language = languageFromTelegram(tgUser.LanguageCode)
	}

	u := &model.User{
		ID:               tgUser.ID,
		Username:         tgUser.Username,
		Premium:          tgUser.IsPremium,
		AuthProvider:     model.AuthProviderTelegram,
		Language:         language,
		RegistrationDate: tgUser.AuthDate,
		AuthDate:         tgUser.AuthDate,
	}

	stored, err := r.us.RegisterUser(c.Request.Context(), u)
	if err != nil {
		respondError(c, "failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(stored))
}

func (r *userRoutes) GetUser(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("user_id"), 10, 64)

	user, err := r.us.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type UpdateLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (r *userRoutes) UpdateLanguage(c *gin.Context) {
	log := logger.Logger()
	id, _ := strconv.ParseInt(c.Param("user_id"), 10, 64)

	var req UpdateLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.us.UpdateUserLanguage(c.Request.Context(), id, req.Language); err != nil {
		respondError(c, "failed to update language", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	users, err := r.us.GetLeaderboard(c.Request.Context())
	if err != nil {
		respondError(c, "failed to get leaderboard", err)
		return
	}

	response := make([]gin.H, 0, len(users))
	for i, user := range users {
		response = append(response, gin.H{
			"rank":     i + 1,
			"username": user.Username,
			"points":   user.Points,
			"premium":  user.Premium,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (r *userRoutes) ListAchievements(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("user_id"), 10, 64)

	progress, err := r.as.ListUserAchievements(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to list achievements", err)
		return
	}

	out := make([]AchievementResponse, len(progress))
	for i, p := range progress {
		out[i] = toAchievementResponse(p)
	}

	c.JSON(http.StatusOK, out)
}
