package repository

import (
	"context"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type UserRepository interface {
	GetOrCreate(ctx context.Context, subject, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	SyncCounters(ctx context.Context, userID string) (model.User, error)
}
