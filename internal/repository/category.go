package repository

import (
	"context"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type CategoryRepository interface {
	// Create inserts the category and increments the owning agent's category
	// counter in one transaction.
	Create(ctx context.Context, category model.Category) (model.Category, error)
	GetByID(ctx context.Context, id string) (model.Category, error)
	Update(ctx context.Context, category model.Category) (model.Category, error)
	// Delete removes the category. With deleteTodos, every todo linked to the
	// category is deleted and the owner's todo counter decremented by the
	// number removed; otherwise the todos survive with the link cleared.
	// Either way the category counter drops by one. Returns the number of
	// todos deleted.
	Delete(ctx context.Context, id string, owner model.Agent, deleteTodos bool) (int, error)
	ListByOwner(ctx context.Context, owner model.Agent) ([]model.Category, error)
}
