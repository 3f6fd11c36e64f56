package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

// AgentService resolves the identity a request claims to act as and verifies
// the principal is entitled to it. Every mutating operation goes through
// Authorize before touching a resource.
type AgentService struct {
	teams repository.TeamRepository
}

func NewAgentService(teams repository.TeamRepository) *AgentService {
	return &AgentService{teams: teams}
}

func (s *AgentService) Authorize(ctx context.Context, principal model.Principal, agentType model.AgentType, agentID string) (model.Agent, error) {
	if !agentType.IsValid() {
		return model.Agent{}, fmt.Errorf("%w: invalid agent type %q", ErrInvalidInput, agentType)
	}
	if agentID == "" {
		return model.Agent{}, fmt.Errorf("%w: agent id is required", ErrInvalidInput)
	}

	switch agentType {
	case model.AgentTypeUser:
		if agentID != principal.UserID {
			return model.Agent{}, fmt.Errorf("%w: cannot act as another user", ErrUnauthorized)
		}
		return model.UserAgent(agentID), nil

	default:
		count, err := s.teams.MembershipCount(ctx, agentID, principal.UserID)
		if err != nil {
			return model.Agent{}, fmt.Errorf("failed to check membership: %w", err)
		}
		// Exactly one membership row grants access; zero means no access and
		// more than one means the relation is corrupt.
		if count != 1 {
			return model.Agent{}, fmt.Errorf("%w: not a member of the team", ErrUnauthorized)
		}
		return model.TeamAgent(agentID), nil
	}
}

// RequireTeamOwner loads the team and verifies the principal owns it. Used by
// the owner-only operations: profile update and invitation create/revoke.
func (s *AgentService) RequireTeamOwner(ctx context.Context, principal model.Principal, teamID string) (model.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Team{}, ErrNotFound
		}
		return model.Team{}, fmt.Errorf("failed to get team: %w", err)
	}
	if team.OwnerID != principal.UserID {
		return model.Team{}, fmt.Errorf("%w: not the team owner", ErrUnauthorized)
	}
	return team, nil
}
