package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

const (
	// MaxTodosPerAgent caps the open todos any single agent may own. Users
	// and teams count independently.
	MaxTodosPerAgent = 50
	// MaxTeamsPerUser caps how many teams one user may create.
	MaxTeamsPerUser = 3
)

// QuotaService checks the denormalized counters against the fixed caps before
// a create is allowed. The check reads the counter outside the create
// transaction, so two concurrent creates can both pass and overshoot a cap by
// one.
type QuotaService struct {
	users repository.UserRepository
	teams repository.TeamRepository
}

func NewQuotaService(users repository.UserRepository, teams repository.TeamRepository) *QuotaService {
	return &QuotaService{users: users, teams: teams}
}

func (s *QuotaService) CheckTodoCreate(ctx context.Context, agent model.Agent) error {
	count, err := s.todoCount(ctx, agent)
	if err != nil {
		return err
	}
	if count >= MaxTodosPerAgent {
		return fmt.Errorf("%w: todo limit of %d reached", ErrQuotaExceeded, MaxTodosPerAgent)
	}
	return nil
}

func (s *QuotaService) CheckTeamCreate(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.TeamsCreatedCount >= MaxTeamsPerUser {
		return fmt.Errorf("%w: you can only create %d teams", ErrQuotaExceeded, MaxTeamsPerUser)
	}
	return nil
}

func (s *QuotaService) todoCount(ctx context.Context, agent model.Agent) (int, error) {
	switch agent.Type {
	case model.AgentTypeUser:
		user, err := s.users.GetByID(ctx, agent.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("failed to get user: %w", err)
		}
		return user.TodosCreatedCount, nil

	case model.AgentTypeTeam:
		team, err := s.teams.GetByID(ctx, agent.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("failed to get team: %w", err)
		}
		return team.TodosCount, nil

	default:
		return 0, fmt.Errorf("%w: invalid agent type %q", ErrInvalidInput, agent.Type)
	}
}
