package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
}

type MeOutput struct {
	User  model.User   `json:"user"`
	Teams []model.Team `json:"teams"`
}

type UserService struct {
	repo  repository.UserRepository
	teams repository.TeamRepository
}

func NewUserService(repo repository.UserRepository, teams repository.TeamRepository) *UserService {
	return &UserService{repo: repo, teams: teams}
}

func (s *UserService) Me(ctx context.Context, principal model.Principal) (MeOutput, error) {
	user, err := s.repo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MeOutput{}, ErrNotFound
		}
		return MeOutput{}, fmt.Errorf("failed to get user: %w", err)
	}

	teams, err := s.teams.ListForUser(ctx, principal.UserID)
	if err != nil {
		return MeOutput{}, fmt.Errorf("failed to list teams: %w", err)
	}

	return MeOutput{User: user, Teams: teams}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, principal model.Principal, input UpdateProfileInput) (model.User, error) {
	user, err := s.repo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// Sync recomputes the principal's denormalized counters from the live
// collections. Normal mutations keep them consistent; this is the repair
// path.
func (s *UserService) Sync(ctx context.Context, principal model.Principal) (model.User, error) {
	user, err := s.repo.SyncCounters(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to sync counters: %w", err)
	}
	return user, nil
}
