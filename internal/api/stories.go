package api

import (
	"net/http"

	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

type storyRoutes struct {
	ss service.StoryServiceI
	a  *auth.TelegramAuth
}

func NewStoryRoutes(handler *gin.RouterGroup, ss service.StoryServiceI, a *auth.TelegramAuth) {
	r := &storyRoutes{ss: ss, a: a}

	stories := handler.Group("/stories")
	stories.Use(a.TelegramAuthMiddleware())
	{
		stories.GET("", r.ListStories)
		stories.GET("/:story_id", r.GetStory)
	}

	routes := handler.Group("/routes")
	routes.Use(a.TelegramAuthMiddleware())
	{
		routes.GET("", r.ListRoutes)
		routes.GET("/:route_id", r.GetRoute)
	}
}

func (r *storyRoutes) ListStories(c *gin.Context) {
	stories, err := r.ss.ListStories(c.Request.Context(), c.Query("tag"))
	if err != nil {
		respondError(c, "failed to list stories", err)
		return
	}

	out := make([]StoryResponse, len(stories))
	for i, s := range stories {
		out[i] = toStoryResponse(s)
	}

	c.JSON(http.StatusOK, out)
}

func (r *storyRoutes) GetStory(c *gin.Context) {
	story, err := r.ss.GetStory(c.Request.Context(), c.Param("story_id"))
	if err != nil {
		respondError(c, "failed to get story", err)
		return
	}

	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (r *storyRoutes) ListRoutes(c *gin.Context) {
	routes, err := r.ss.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list routes", err)
		return
	}

	out := make([]RouteResponse, len(routes))
	for i, rt := range routes {
		out[i] = toRouteResponse(rt)
	}

	c.JSON(http.StatusOK, out)
}

func (r *storyRoutes) GetRoute(c *gin.Context) {
	route, err := r.ss.GetRoute(c.Request.Context(), c.Param("route_id"))
	if err != nil {
		respondError(c, "failed to get route", err)
		return
	}

	c.JSON(http.StatusOK, toRouteResponse(route))
}
