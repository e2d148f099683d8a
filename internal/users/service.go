package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/airborne/server/internal/model"
	"github.com/airborne/server/internal/repo"
)

// Service maintains user profile records keyed by the external identity
// subject.
type Service struct {
	users repo.UserRepo
}

// NewService creates a user service.
func NewService(users repo.UserRepo) *Service {
	return &Service{users: users}
}

// Bootstrap creates the caller's user record on first call and patches it on
// every later one. Safe to run on every app launch.
func (s *Service) Bootstrap(ctx context.Context, subject string, params repo.BootstrapParams) (model.User, error) {
	user, err := s.users.Bootstrap(ctx, subject, params)
	if err != nil {
		return model.User{}, fmt.Errorf("bootstrap: %w", err)
	}
	return user, nil
}

// Current returns the caller's user record, or (nil, nil) when bootstrap has
// not run yet.
func (s *Service) Current(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
