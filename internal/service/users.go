package service

import (
	"context"
	"errors"
	"fmt"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
)

const leaderboardSize = 100

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterUser creates the user or refreshes a returning one, and returns the
// stored record. Points, language and registration date of a returning user
// are kept.
func (s *UserService) RegisterUser(ctx context.Context, user *model.User) (*model.User, error) {
	if user.AuthProvider == "" {
		user.AuthProvider = model.AuthProviderTelegram
	}
	if user.Language == "" {
		user.Language = model.LanguageEnglish
	}
	if !validLanguage(user.Language) {
		return nil, ErrInvalidLanguage
	}

	err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	stored, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registered user: %w", err)
	}

	return stored, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateUserLanguage(ctx context.Context, userID int64, language string) error {
	if !validLanguage(language) {
		return ErrInvalidLanguage
	}

	err := s.repo.UpdateUserLanguage(ctx, userID, language)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update language: %w", err)
	}
	return nil
}

func (s *UserService) GetLeaderboard(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.GetTopUsers(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}

func validLanguage(language string) bool {
	return language == model.LanguageEnglish || language == model.LanguageJapanese
}
