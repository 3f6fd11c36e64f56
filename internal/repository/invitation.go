package repository

import (
	"context"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation model.Invitation) (model.Invitation, error)
	GetByID(ctx context.Context, id string) (model.Invitation, error)
	// FindOpenByTeam returns the team's pending open invitation, or
	// sql.ErrNoRows when none exists.
	FindOpenByTeam(ctx context.Context, teamID string) (model.Invitation, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.Invitation, error)
	// Accept inserts the membership row and deletes the invitation as one
	// transaction. Returns sql.ErrNoRows if the invitation is already gone.
	Accept(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
