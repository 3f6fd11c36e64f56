package repository

import (
	"context"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type TodoRepository interface {
	// Create inserts the todo with its category and assignee links and
	// increments the owning agent's todo counter in one transaction.
	Create(ctx context.Context, todo model.Todo) (model.Todo, error)
	GetByID(ctx context.Context, id string) (model.Todo, error)
	// Update rewrites the row and replaces both link sets with the ones on
	// the given todo; links absent from the input are removed.
	Update(ctx context.Context, todo model.Todo) (model.Todo, error)
	SetDone(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy *string) (model.Todo, error)
	// Delete removes the row and decrements the owner's todo counter in one
	// transaction.
	Delete(ctx context.Context, id string, owner model.Agent) error
	ListByOwner(ctx context.Context, params model.TodoListParams) ([]model.Todo, error)
}
