package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

// Counter adjustments always run inside the same transaction as the mutation
// they pair with. The owner variant is dispatched by an explicit switch; no
// table or column name is ever assembled from request input.

func adjustTodoCount(ctx context.Context, tx *sql.Tx, owner model.Agent, delta int) error {
	var query string
	switch owner.Type {
	case model.AgentTypeUser:
		query = `UPDATE users SET todos_created_count = todos_created_count + $1 WHERE id = $2`
	case model.AgentTypeTeam:
		query = `UPDATE teams SET todos_count = todos_count + $1 WHERE id = $2`
	default:
		return fmt.Errorf("unknown agent type %q", owner.Type)
	}

	if _, err := tx.ExecContext(ctx, query, delta, owner.ID); err != nil {
		return fmt.Errorf("failed to adjust todo count: %w", err)
	}
	return nil
}

func adjustCategoryCount(ctx context.Context, tx *sql.Tx, owner model.Agent, delta int) error {
	var query string
	switch owner.Type {
	case model.AgentTypeUser:
		query = `UPDATE users SET categories_created_count = categories_created_count + $1 WHERE id = $2`
	case model.AgentTypeTeam:
		query = `UPDATE teams SET categories_count = categories_count + $1 WHERE id = $2`
	default:
		return fmt.Errorf("unknown agent type %q", owner.Type)
	}

	if _, err := tx.ExecContext(ctx, query, delta, owner.ID); err != nil {
		return fmt.Errorf("failed to adjust category count: %w", err)
	}
	return nil
}
