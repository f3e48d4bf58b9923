package service

import (
	"context"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
)

// UserService handles client identity and access
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// EnsureTelegramUser registers or refreshes the user behind an incoming
// Telegram update and rejects blocked accounts.
func (s *UserService) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error) {
	user, err := s.users.EnsureTelegramUser(ctx, telegramID, username, firstName, lastName)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrUserBlocked
	}
	return user, nil
}

// GetByID fetches a user by internal id
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
