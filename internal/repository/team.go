package repository

import (
	"context"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type TeamRepository interface {
	// Create inserts the team, enrolls the owner as its first member and
	// increments the owner's teams_created_count in one transaction.
	Create(ctx context.Context, name, color, ownerID string) (model.Team, error)
	GetByID(ctx context.Context, id string) (model.Team, error)
	UpdateProfile(ctx context.Context, id, name, color string) (model.Team, error)
	MembershipCount(ctx context.Context, teamID, userID string) (int, error)
	MemberEmailExists(ctx context.Context, teamID, email string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]model.Member, error)
	ListForUser(ctx context.Context, userID string) ([]model.Team, error)
}
