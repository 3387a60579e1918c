package api

import (
	"net/http"
	"testing"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userRouter(us *mockUserService, as *mockAchievementService) *gin.Engine {
	return newTestRouter(func(g *gin.RouterGroup, a *auth.TelegramAuth) {
		NewUserRoutes(g, us, as, a)
	})
}

func TestUserRoutes_RegisterUser(t *testing.T) {
	us := &mockUserService{}
	us.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == testUserID &&
			u.Username == "hana" &&
			u.Language == model.LanguageJapanese &&
			u.RegistrationDate.Equal(time.Unix(1700000000, 0))
	})).Return(&model.User{
		ID:               testUserID,
		Username:         "hana",
		AuthProvider:     model.AuthProviderTelegram,
		Language:         model.LanguageJapanese,
		RegistrationDate: time.Unix(1700000000, 0).UTC(),
	}, nil)

	w := doRequest(t, userRouter(us, &mockAchievementService{}), http.MethodPost, "/api/v1/users/", nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[UserResponse](t, w)
	assert.Equal(t, int64(testUserID), body.ID)
	assert.Equal(t, "jp", body.Language)
	us.AssertExpectations(t)
}

func TestUserRoutes_RegisterReturningUser(t *testing.T) {
	us := &mockUserService{}
	us.On("RegisterUser", mock.Anything, mock.AnythingOfType("*model.User")).Return(&model.User{
		ID:               testUserID,
		Username:         "hana",
		Points:           350,
		AuthProvider:     model.AuthProviderTelegram,
		Language:         model.LanguageJapanese,
		RegistrationDate: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}, nil)

	w := doRequest(t, userRouter(us, &mockAchievementService{}), http.MethodPost, "/api/v1/users/",
		map[string]string{"language": "en"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[UserResponse](t, w)
	assert.Equal(t, 350, body.Points)
	assert.Equal(t, "jp", body.Language)
	assert.Equal(t, "2026-01-05", body.RegistrationDate)
	us.AssertExpectations(t)
}

func TestUserRoutes_RegisterUserInvalidLanguage(t *testing.T) {
	us := &mockUserService{}
	us.On("RegisterUser", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidLanguage)

	w := doRequest(t, userRouter(us, &mockAchievementService{}), http.MethodPost, "/api/v1/users/",
		map[string]string{"language": "fr"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserRoutes_GetUser(t *testing.T) {
	us := &mockUserService{}
	us.On("GetUserByID", mock.Anything, int64(testUserID)).Return(&model.User{ID: testUserID, Username: "hana", Points: 350}, nil)

	router := userRouter(us, &mockAchievementService{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/users/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 350, decode[UserResponse](t, w).Points)

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/43", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserRoutes_UpdateLanguage(t *testing.T) {
	us := &mockUserService{}
	us.On("UpdateUserLanguage", mock.Anything, int64(testUserID), "jp").Return(nil)
	us.On("UpdateUserLanguage", mock.Anything, int64(testUserID), "de").Return(service.ErrInvalidLanguage)

	router := userRouter(us, &mockAchievementService{})

	w := doRequest(t, router, http.MethodPatch, "/api/v1/users/42/language", map[string]string{"language": "jp"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPatch, "/api/v1/users/42/language", map[string]string{"language": "de"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPatch, "/api/v1/users/42/language", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserRoutes_Leaderboard(t *testing.T) {
	us := &mockUserService{}
	us.On("GetLeaderboard", mock.Anything).Return([]*model.User{
		{ID: 1, Username: "kenji", Points: 900},
		{ID: 2, Username: "hana", Points: 350},
	}, nil)

	w := doRequest(t, userRouter(us, &mockAchievementService{}), http.MethodGet, "/api/v1/users/leaderboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[[]map[string]any](t, w)
	require.Len(t, body, 2)
	assert.EqualValues(t, 1, body[0]["rank"])
	assert.Equal(t, "hana", body[1]["username"])
}

func TestUserRoutes_Achievements(t *testing.T) {
	as := &mockAchievementService{}
	as.On("ListUserAchievements", mock.Anything, int64(testUserID)).Return([]*model.AchievementProgress{
		{
			Achievement: &model.Achievement{ID: "a2", Title: "Seasoned Traveller", Target: 5},
			Current:     3,
			Target:      5,
			Percent:     60,
		},
	}, nil)

	w := doRequest(t, userRouter(&mockUserService{}, as), http.MethodGet, "/api/v1/users/42/achievements", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[[]AchievementResponse](t, w)
	require.Len(t, body, 1)
	assert.InDelta(t, 60.0, body[0].Percent, 1e-9)
	assert.False(t, body[0].IsUnlocked)
}
