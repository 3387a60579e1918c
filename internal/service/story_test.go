package service

import (
	"context"
	"testing"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStoryService_CreateStory(t *testing.T) {
	mockRepo := &mocks.MockStoryRepository{}
	service := NewStoryService(mockRepo)

	tests := []struct {
		name          string
		story         *model.Story
		mockSetup     func()
		expectedError error
	}{
		{
			name:          "Missing id",
			story:         &model.Story{Title: "The Fox of Inari"},
			mockSetup:     func() {},
			expectedError: ErrInvalidArgument,
		},
		{
			name: "More unlocked chapters than exist",
			story: &model.Story{ID: "s1", Title: "The Fox of Inari",
				Chapters: model.ChapterSummary{Total: 3, Unlocked: 4}},
			mockSetup:     func() {},
			expectedError: ErrInvalidArgument,
		},
		{
			name: "Unknown related route",
			story: &model.Story{ID: "s1", Title: "The Fox of Inari", RelatedRouteID: ptr("r9"),
				Chapters: model.ChapterSummary{Total: 3, Unlocked: 1}},
			mockSetup: func() {
				mockRepo.On("GetRoute", mock.Anything, "r9").Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrRouteNotFound,
		},
		{
			name:  "Duplicate story",
			story: &model.Story{ID: "s1", Title: "The Fox of Inari", Chapters: model.ChapterSummary{Total: 3}},
			mockSetup: func() {
				mockRepo.On("CreateStory", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			expectedError: ErrAlreadyExists,
		},
		{
			name: "Created",
			story: &model.Story{ID: "s1", Title: "The Fox of Inari", RelatedRouteID: ptr("r1"),
				Chapters: model.ChapterSummary{Total: 3, Unlocked: 1}},
			mockSetup: func() {
				mockRepo.On("GetRoute", mock.Anything, "r1").Return(&model.Route{ID: "r1"}, nil)
				mockRepo.On("CreateStory", mock.Anything, mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.mockSetup()

			err := service.CreateStory(context.Background(), tt.story)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStoryService_NotFoundMapping(t *testing.T) {
	mockRepo := &mocks.MockStoryRepository{}
	service := NewStoryService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetStory", mock.Anything, "s404").Return(nil, repository.ErrNotFound)
	mockRepo.On("DeleteStory", mock.Anything, "s404").Return(repository.ErrNotFound)
	mockRepo.On("GetRoute", mock.Anything, "r404").Return(nil, repository.ErrNotFound)
	mockRepo.On("DeleteRoute", mock.Anything, "r404").Return(repository.ErrNotFound)
	mockRepo.On("UpdateRoute", mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	_, err := service.GetStory(ctx, "s404")
	assert.ErrorIs(t, err, ErrStoryNotFound)
	assert.ErrorIs(t, service.DeleteStory(ctx, "s404"), ErrStoryNotFound)

	_, err = service.GetRoute(ctx, "r404")
	assert.ErrorIs(t, err, ErrRouteNotFound)
	assert.ErrorIs(t, service.DeleteRoute(ctx, "r404"), ErrRouteNotFound)
	assert.ErrorIs(t, service.UpdateRoute(ctx, &model.Route{ID: "r404", Name: "Kumano"}), ErrRouteNotFound)
	assert.ErrorIs(t, service.CreateRoute(ctx, &model.Route{ID: "r1"}), ErrInvalidArgument)
}

func TestStoryService_ListStories(t *testing.T) {
	mockRepo := &mocks.MockStoryRepository{}
	service := NewStoryService(mockRepo)

	stories := []*model.Story{{ID: "s1", Tags: []string{"folklore"}}}
	mockRepo.On("ListStories", mock.Anything, "folklore").Return(stories, nil)

	result, err := service.ListStories(context.Background(), "folklore")
	assert.NoError(t, err)
	assert.Equal(t, stories, result)
}
