package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

const (
	minTeamName = 3
	maxTeamName = 20
)

type TeamService struct {
	agents *AgentService
	quota  *QuotaService
	repo   repository.TeamRepository
}

func NewTeamService(agents *AgentService, quota *QuotaService, repo repository.TeamRepository) *TeamService {
	return &TeamService{agents: agents, quota: quota, repo: repo}
}

// Create makes the principal the team's owner and first member.
func (s *TeamService) Create(ctx context.Context, principal model.Principal, name, color string) (model.Team, error) {
	if err := validateTeamProfile(name, color); err != nil {
		return model.Team{}, err
	}

	if err := s.quota.CheckTeamCreate(ctx, principal.UserID); err != nil {
		return model.Team{}, err
	}

	team, err := s.repo.Create(ctx, name, color, principal.UserID)
	if err != nil {
		return model.Team{}, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *TeamService) Members(ctx context.Context, principal model.Principal, teamID string) ([]model.Member, error) {
	if _, err := s.agents.Authorize(ctx, principal, model.AgentTypeTeam, teamID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *TeamService) UpdateProfile(ctx context.Context, principal model.Principal, teamID, name, color string) (model.Team, error) {
	if _, err := s.agents.RequireTeamOwner(ctx, principal, teamID); err != nil {
		return model.Team{}, err
	}

	if err := validateTeamProfile(name, color); err != nil {
		return model.Team{}, err
	}

	team, err := s.repo.UpdateProfile(ctx, teamID, name, color)
	if err != nil {
		return model.Team{}, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func validateTeamProfile(name, color string) error {
	n := utf8.RuneCountInString(name)
	if n < minTeamName || n > maxTeamName {
		return fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidInput, minTeamName, maxTeamName)
	}
	if !model.ValidColor(color) {
		return fmt.Errorf("%w: color must be of the form #RRGGBB", ErrInvalidInput)
	}
	return nil
}
