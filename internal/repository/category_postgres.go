package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategory(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `id, owner_type, owner_id, name, description, color,
	created_by, updated_by, created_at, updated_at`

func (r *PostgresCategoryRepository) Create(ctx context.Context, category model.Category) (model.Category, error) {
	var created model.Category
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO categories (owner_type, owner_id, name, description, color, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + categoryColumns

		row := tx.QueryRowContext(ctx, query,
			category.Owner.Type, category.Owner.ID,
			category.Name, category.Description, category.Color, category.CreatedBy,
		)
		var err error
		created, err = scanCategory(row)
		if err != nil {
			return err
		}

		return adjustCategoryCount(ctx, tx, category.Owner, 1)
	})
	if err != nil {
		return model.Category{}, err
	}
	return created, nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanCategory(row)
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, category model.Category) (model.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, description = $2, color = $3, updated_by = $4, updated_at = now()
		WHERE id = $5
		RETURNING ` + categoryColumns

	row := r.db.QueryRowContext(ctx, query,
		category.Name, category.Description, category.Color, category.UpdatedBy, category.ID,
	)
	return scanCategory(row)
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string, owner model.Agent, deleteTodos bool) (int, error) {
	deleted := 0
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if deleteTodos {
			// Remove the todos themselves; their link rows cascade.
			result, err := tx.ExecContext(ctx, `
				DELETE FROM todos
				WHERE id IN (SELECT todo_id FROM todo_categories WHERE category_id = $1)`,
				id,
			)
			if err != nil {
				return fmt.Errorf("failed to delete category todos: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			deleted = int(n)
			if deleted > 0 {
				if err := adjustTodoCount(ctx, tx, owner, -deleted); err != nil {
					return err
				}
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM todo_categories WHERE category_id = $1`, id,
			); err != nil {
				return fmt.Errorf("failed to clear category links: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}

		return adjustCategoryCount(ctx, tx, owner, -1)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *PostgresCategoryRepository) ListByOwner(ctx context.Context, owner model.Agent) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, owner.Type, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row scannable) (model.Category, error) {
	var c model.Category
	var updatedBy sql.NullString
	err := row.Scan(
		&c.ID, &c.Owner.Type, &c.Owner.ID, &c.Name, &c.Description, &c.Color,
		&c.CreatedBy, &updatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	if updatedBy.Valid {
		c.UpdatedBy = &updatedBy.String
	}
	return c, nil
}

var _ CategoryRepository = (*PostgresCategoryRepository)(nil)
