package service

import (
	"context"
	"errors"
	"fmt"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
)

type StoryService struct {
	repo StoryRepository
}

func NewStoryService(repo StoryRepository) *StoryService {
	return &StoryService{
		repo: repo,
	}
}

func (s *StoryService) ListStories(ctx context.Context, tag string) ([]*model.Story, error) {
	stories, err := s.repo.ListStories(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func (s *StoryService) GetStory(ctx context.Context, storyID string) (*model.Story, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return story, nil
}

func (s *StoryService) CreateStory(ctx context.Context, story *model.Story) error {
	if err := s.validateStory(ctx, story); err != nil {
		return err
	}

	err := s.repo.CreateStory(ctx, story)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (s *StoryService) UpdateStory(ctx context.Context, story *model.Story) error {
	if err := s.validateStory(ctx, story); err != nil {
		return err
	}

	err := s.repo.UpdateStory(ctx, story)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

func (s *StoryService) DeleteStory(ctx context.Context, storyID string) error {
	err := s.repo.DeleteStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (s *StoryService) validateStory(ctx context.Context, story *model.Story) error {
	switch {
	case story.ID == "":
		return fmt.Errorf("%w: story id is required", ErrInvalidArgument)
	case story.Title == "":
		return fmt.Errorf("%w: story title is required", ErrInvalidArgument)
	case story.Chapters.Total < 0 || story.Chapters.Unlocked < 0:
		return fmt.Errorf("%w: chapter counts must not be negative", ErrInvalidArgument)
	case story.Chapters.Unlocked > story.Chapters.Total:
		return fmt.Errorf("%w: unlocked chapters exceed total", ErrInvalidArgument)
	}

	if story.RelatedRouteID != nil {
		if _, err := s.GetRoute(ctx, *story.RelatedRouteID); err != nil {
			return err
		}
	}

	return nil
}

func (s *StoryService) ListRoutes(ctx context.Context) ([]*model.Route, error) {
	routes, err := s.repo.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

func (s *StoryService) GetRoute(ctx context.Context, routeID string) (*model.Route, error) {
	route, err := s.repo.GetRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return route, nil
}

func (s *StoryService) CreateRoute(ctx context.Context, route *model.Route) error {
	if route.ID == "" || route.Name == "" {
		return fmt.Errorf("%w: route id and name are required", ErrInvalidArgument)
	}

	err := s.repo.CreateRoute(ctx, route)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

func (s *StoryService) UpdateRoute(ctx context.Context, route *model.Route) error {
	if route.ID == "" || route.Name == "" {
		return fmt.Errorf("%w: route id and name are required", ErrInvalidArgument)
	}

	err := s.repo.UpdateRoute(ctx, route)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRouteNotFound
		}
		return fmt.Errorf("failed to update route: %w", err)
	}
	return nil
}

func (s *StoryService) DeleteRoute(ctx context.Context, routeID string) error {
	err := s.repo.DeleteRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRouteNotFound
		}
		return fmt.Errorf("failed to delete route: %w", err)
	}
	return nil
}
