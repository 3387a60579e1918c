package api

import (
	"net/http"
	"testing"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func storyRouter(ss *mockStoryService) *gin.Engine {
	return newTestRouter(func(g *gin.RouterGroup, a *auth.TelegramAuth) {
		NewStoryRoutes(g, ss, a)
	})
}

func TestStoryRoutes(t *testing.T) {
	route := "r2"
	ss := &mockStoryService{}
	ss.On("ListStories", mock.Anything, "folklore").Return([]*model.Story{
		{ID: "s1", Title: "The Fox of Inari", Chapters: model.ChapterSummary{Total: 5, Unlocked: 2}, RelatedRouteID: &route},
	}, nil)
	ss.On("GetStory", mock.Anything, "s404").Return(nil, service.ErrStoryNotFound)
	ss.On("ListRoutes", mock.Anything).Return([]*model.Route{{ID: "r2", Name: "Pilgrim Paths"}}, nil)
	ss.On("GetRoute", mock.Anything, "r2").Return(&model.Route{ID: "r2", QuestIDs: []string{"q1", "q3"}}, nil)

	router := storyRouter(ss)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stories?tag=folklore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stories := decode[[]StoryResponse](t, w)
	require.Len(t, stories, 1)
	assert.Equal(t, 2, stories[0].Chapters.Unlocked)
	assert.Equal(t, "r2", *stories[0].RelatedRouteID)

	w = doRequest(t, router, http.MethodGet, "/api/v1/stories/s404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	routes := decode[[]RouteResponse](t, w)
	assert.Equal(t, []string{}, routes[0].QuestIDs)

	w = doRequest(t, router, http.MethodGet, "/api/v1/routes/r2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"q1", "q3"}, decode[RouteResponse](t, w).QuestIDs)
}
