package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

const todoColumns = `id, owner_type, owner_id, title, description, due_at,
	done, done_at, done_by, created_by, updated_by, created_at, updated_at`

func (r *PostgresTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	var created model.Todo
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO todos (owner_type, owner_id, title, description, due_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + todoColumns

		row := tx.QueryRowContext(ctx, query,
			todo.Owner.Type, todo.Owner.ID, todo.Title, todo.Description, todo.DueAt, todo.CreatedBy,
		)
		var err error
		created, err = scanTodo(row)
		if err != nil {
			return err
		}

		if err := insertTodoLinks(ctx, tx, created.ID, todo.CategoryIDs, todo.AssigneeIDs); err != nil {
			return err
		}
		created.CategoryIDs = normalizeIDs(todo.CategoryIDs)
		created.AssigneeIDs = normalizeIDs(todo.AssigneeIDs)

		return adjustTodoCount(ctx, tx, todo.Owner, 1)
	})
	if err != nil {
		return model.Todo{}, err
	}
	return created, nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	todo, err := scanTodo(row)
	if err != nil {
		return model.Todo{}, err
	}

	todo.CategoryIDs, err = r.linkedIDs(ctx, `SELECT category_id FROM todo_categories WHERE todo_id = $1`, id)
	if err != nil {
		return model.Todo{}, err
	}
	todo.AssigneeIDs, err = r.linkedIDs(ctx, `SELECT user_id FROM todo_assignees WHERE todo_id = $1`, id)
	if err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (r *PostgresTodoRepository) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	var updated model.Todo
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE todos
			SET title = $1, description = $2, due_at = $3, updated_by = $4, updated_at = now()
			WHERE id = $5
			RETURNING ` + todoColumns

		row := tx.QueryRowContext(ctx, query,
			todo.Title, todo.Description, todo.DueAt, todo.UpdatedBy, todo.ID,
		)
		var err error
		updated, err = scanTodo(row)
		if err != nil {
			return err
		}

		// Set-replace semantics: drop every existing link, then write the
		// input sets.
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_categories WHERE todo_id = $1`, todo.ID); err != nil {
			return fmt.Errorf("failed to clear category links: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_assignees WHERE todo_id = $1`, todo.ID); err != nil {
			return fmt.Errorf("failed to clear assignee links: %w", err)
		}
		if err := insertTodoLinks(ctx, tx, todo.ID, todo.CategoryIDs, todo.AssigneeIDs); err != nil {
			return err
		}
		updated.CategoryIDs = normalizeIDs(todo.CategoryIDs)
		updated.AssigneeIDs = normalizeIDs(todo.AssigneeIDs)
		return nil
	})
	if err != nil {
		return model.Todo{}, err
	}
	return updated, nil
}

func (r *PostgresTodoRepository) SetDone(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy *string) (model.Todo, error) {
	query := `
		UPDATE todos
		SET done = $1, done_at = $2, done_by = $3, updated_at = now()
		WHERE id = $4
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query, done, doneAt, doneBy, id)
	todo, err := scanTodo(row)
	if err != nil {
		return model.Todo{}, err
	}

	todo.CategoryIDs, err = r.linkedIDs(ctx, `SELECT category_id FROM todo_categories WHERE todo_id = $1`, id)
	if err != nil {
		return model.Todo{}, err
	}
	todo.AssigneeIDs, err = r.linkedIDs(ctx, `SELECT user_id FROM todo_assignees WHERE todo_id = $1`, id)
	if err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, id string, owner model.Agent) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return adjustTodoCount(ctx, tx, owner, -1)
	})
}

func (r *PostgresTodoRepository) ListByOwner(ctx context.Context, params model.TodoListParams) ([]model.Todo, error) {
	args := []any{params.Owner.Type, params.Owner.ID}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE owner_type = $1 AND owner_id = $2`
	if params.Done != nil {
		query += ` AND done = $3`
		args = append(args, *params.Done)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	ids := []string{}
	byID := map[string]int{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todo.CategoryIDs = []string{}
		todo.AssigneeIDs = []string{}
		byID[todo.ID] = len(todos)
		ids = append(ids, todo.ID)
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	if len(todos) == 0 {
		return todos, nil
	}

	if err := r.fillLinks(ctx, todos, byID, params.Owner); err != nil {
		return nil, err
	}
	return todos, nil
}

// fillLinks loads category and assignee links for all todos of the owner in
// two queries instead of two per todo.
func (r *PostgresTodoRepository) fillLinks(ctx context.Context, todos []model.Todo, byID map[string]int, owner model.Agent) error {
	catQuery := `
		SELECT tc.todo_id, tc.category_id
		FROM todo_categories tc
		JOIN todos t ON t.id = tc.todo_id
		WHERE t.owner_type = $1 AND t.owner_id = $2`
	if err := r.appendLinks(ctx, catQuery, owner, todos, byID, true); err != nil {
		return err
	}

	asgQuery := `
		SELECT ta.todo_id, ta.user_id
		FROM todo_assignees ta
		JOIN todos t ON t.id = ta.todo_id
		WHERE t.owner_type = $1 AND t.owner_id = $2`
	return r.appendLinks(ctx, asgQuery, owner, todos, byID, false)
}

func (r *PostgresTodoRepository) appendLinks(ctx context.Context, query string, owner model.Agent, todos []model.Todo, byID map[string]int, categories bool) error {
	rows, err := r.db.QueryContext(ctx, query, owner.Type, owner.ID)
	if err != nil {
		return fmt.Errorf("failed to load todo links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var todoID, linkedID string
		if err := rows.Scan(&todoID, &linkedID); err != nil {
			return fmt.Errorf("failed to scan todo link: %w", err)
		}
		idx, ok := byID[todoID]
		if !ok {
			continue
		}
		if categories {
			todos[idx].CategoryIDs = append(todos[idx].CategoryIDs, linkedID)
		} else {
			todos[idx].AssigneeIDs = append(todos[idx].AssigneeIDs, linkedID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate todo links: %w", err)
	}
	return nil
}

func (r *PostgresTodoRepository) linkedIDs(ctx context.Context, query, todoID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todo links: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan todo link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todo links: %w", err)
	}
	return ids, nil
}

func insertTodoLinks(ctx context.Context, tx *sql.Tx, todoID string, categoryIDs, assigneeIDs []string) error {
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todo_categories (todo_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			todoID, categoryID,
		); err != nil {
			return fmt.Errorf("failed to link category: %w", err)
		}
	}
	for _, userID := range assigneeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todo_assignees (todo_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			todoID, userID,
		); err != nil {
			return fmt.Errorf("failed to link assignee: %w", err)
		}
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var dueAt, doneAt sql.NullTime
	var doneBy, updatedBy sql.NullString
	err := row.Scan(
		&t.ID, &t.Owner.Type, &t.Owner.ID, &t.Title, &t.Description, &dueAt,
		&t.Done, &doneAt, &doneBy, &t.CreatedBy, &updatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	if dueAt.Valid {
		t.DueAt = &dueAt.Time
	}
	if doneAt.Valid {
		t.DoneAt = &doneAt.Time
	}
	if doneBy.Valid {
		t.DoneBy = &doneBy.String
	}
	if updatedBy.Valid {
		t.UpdatedBy = &updatedBy.String
	}
	return t, nil
}

var _ TodoRepository = (*PostgresTodoRepository)(nil)
